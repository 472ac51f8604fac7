package schema

import "github.com/wbrown/chronicle/fact"

// Bootstrap returns the facts that must exist in transaction 0 of any
// database: the well-known attributes describing attributes themselves,
// plus the tx-time attribute every transaction stamps itself with (spec
// §7). A store that has never seen these facts is not yet usable — nothing
// can be resolved by ident, including the bootstrap attributes' own idents.
func Bootstrap() []fact.Fact {
	const tx = 0

	return []fact.Fact{
		// First transaction marks its own wall-clock time as unknown (0);
		// the real clock stamps every later transaction via db/tx/time.
		fact.Assert(tx, TxTimeID, uint64(0), tx),

		// db/attr/ident
		fact.Assert(AttrIdentID, AttrIdentID, AttrIdentIdent, tx),
		fact.Assert(AttrIdentID, AttrDocID, "Human readable name of attribute", tx),
		fact.Assert(AttrIdentID, AttrTypeID, uint64(fact.KindStr), tx),
		fact.Assert(AttrIdentID, AttrCardinalityID, uint64(CardinalityOne), tx),
		fact.Assert(AttrIdentID, AttrUniqueID, uint64(1), tx),

		// db/attr/doc
		fact.Assert(AttrDocID, AttrIdentID, AttrDocIdent, tx),
		fact.Assert(AttrDocID, AttrDocID, "Documentation of attribute", tx),
		fact.Assert(AttrDocID, AttrTypeID, uint64(fact.KindStr), tx),
		fact.Assert(AttrDocID, AttrCardinalityID, uint64(CardinalityOne), tx),

		// db/attr/type
		fact.Assert(AttrTypeID, AttrIdentID, AttrTypeIdent, tx),
		fact.Assert(AttrTypeID, AttrDocID, "Data type of attribute", tx),
		fact.Assert(AttrTypeID, AttrTypeID, uint64(fact.KindU64), tx),
		fact.Assert(AttrTypeID, AttrCardinalityID, uint64(CardinalityOne), tx),

		// db/attr/cardinality
		fact.Assert(AttrCardinalityID, AttrIdentID, AttrCardinalityIdent, tx),
		fact.Assert(AttrCardinalityID, AttrDocID, "Cardinality of attribute", tx),
		fact.Assert(AttrCardinalityID, AttrTypeID, uint64(fact.KindU64), tx),
		fact.Assert(AttrCardinalityID, AttrCardinalityID, uint64(CardinalityOne), tx),

		// db/attr/unique
		fact.Assert(AttrUniqueID, AttrIdentID, AttrUniqueIdent, tx),
		fact.Assert(AttrUniqueID, AttrDocID, "Marks this attribute's values as unique", tx),
		fact.Assert(AttrUniqueID, AttrTypeID, uint64(fact.KindU64), tx),
		fact.Assert(AttrUniqueID, AttrCardinalityID, uint64(CardinalityOne), tx),

		// db/tx/time
		fact.Assert(TxTimeID, AttrIdentID, TxTimeIdent, tx),
		fact.Assert(TxTimeID, AttrDocID, "Transaction's wall clock time", tx),
		fact.Assert(TxTimeID, AttrTypeID, uint64(fact.KindU64), tx),
		fact.Assert(TxTimeID, AttrCardinalityID, uint64(CardinalityOne), tx),
	}
}
