// Package chronicledb is the top-level façade wiring storage, schema
// resolution, the Transactor, and the query front-end into a single handle:
// the data flow spec §2 describes ("a Transaction enters the Transactor...
// A Query enters the query front-end...") realized as one entry point.
package chronicledb

import (
	"github.com/wbrown/chronicle/clock"
	"github.com/wbrown/chronicle/query"
	"github.com/wbrown/chronicle/resolver"
	"github.com/wbrown/chronicle/schema"
	"github.com/wbrown/chronicle/storage"
	"github.com/wbrown/chronicle/tx"
)

// DB is a single open database: a Store plus the schema cache and
// Transactor built on top of it.
type DB struct {
	store      storage.Store
	attrs      *schema.Resolver
	transactor *tx.Transactor
}

// Open opens (or initializes) a BadgerDB-backed database at path, bootstrapping
// the well-known schema attributes on first open (spec §6: a store with no
// db/attr/ident definition is not yet usable).
func Open(path string) (*DB, error) {
	store, err := storage.OpenBadgerStore(path)
	if err != nil {
		return nil, err
	}
	return open(store, clock.New())
}

// OpenMem opens an in-memory database, for tests and demos.
func OpenMem() (*DB, error) {
	return open(storage.NewMemStore(), clock.New())
}

func open(store storage.Store, c clock.Clock) (*DB, error) {
	latest, err := store.LatestEntityID()
	if err != nil {
		store.Close()
		return nil, err
	}
	if latest == 0 {
		if err := store.Write(schema.Bootstrap()); err != nil {
			store.Close()
			return nil, err
		}
	}

	attrs := schema.NewResolver()
	transactor, err := tx.NewTransactor(store, attrs, c)
	if err != nil {
		store.Close()
		return nil, err
	}

	return &DB{store: store, attrs: attrs, transactor: transactor}, nil
}

// Close releases the underlying store.
func (db *DB) Close() error { return db.store.Close() }

// Transact commits transaction through the Transactor (spec §4.I).
func (db *DB) Transact(transaction tx.Transaction) (tx.Result, error) {
	return db.transactor.Transact(transaction)
}

// LatestTx returns the highest transaction (entity) id committed so far,
// usable as a basis_tx for querying the current state of the database.
func (db *DB) LatestTx() (uint64, error) {
	return db.store.LatestEntityID()
}

// Query runs q against the database's current state (spec §2's query
// front-end: resolver -> predicates -> Projector/Aggregator).
func (db *DB) Query(q query.Query) (Rows, error) {
	basisTx, err := db.LatestTx()
	if err != nil {
		return nil, err
	}
	return db.QueryAsOf(q, basisTx)
}

// QueryAsOf runs q against the database as observed at basisTx, for
// point-in-time reads (spec §2, scenario S3).
func (db *DB) QueryAsOf(q query.Query, basisTx uint64) (Rows, error) {
	r, err := resolver.New(db.store, db.attrs, q.Clauses, q.Predicates, basisTx)
	if err != nil {
		return nil, err
	}

	if q.HasAggregates() {
		agg, err := resolver.NewAggregator(q.Find, r)
		r.Close()
		if err != nil {
			return nil, err
		}
		return aggregatorRows{agg}, nil
	}

	return projectorRows{resolver.NewProjector(q.Find, r), r}, nil
}
