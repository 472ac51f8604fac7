// Package codec implements order-preserving byte serialization of values,
// keys, and facts (spec §4.B). Lexicographic comparison of the byte strings
// produced here matches the semantic ordering of integer, ref, and decimal
// values; strings carry a u16 length prefix, so they order by length first
// and then by bytes. Within a key, the fixed-width fields and the !tx suffix
// are what let a single forward scan over sorted storage observe facts in
// the order the query engine and the retraction-aware iterator expect.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/wbrown/chronicle/fact"
)

// Index tags the three covering indexes a key can belong to.
type Index byte

const (
	EAVT Index = 0x01
	AEVT Index = 0x02
	AVET Index = 0x03
)

func (i Index) String() string {
	switch i {
	case EAVT:
		return "EAVT"
	case AEVT:
		return "AEVT"
	case AVET:
		return "AVET"
	default:
		return fmt.Sprintf("Index(%#x)", byte(i))
	}
}

const (
	tagI64     byte = 0x01
	tagU64     byte = 0x02
	tagDecimal byte = 0x03
	tagStr     byte = 0x04
	tagRef     byte = 0x05
)

// ErrEndOfInput is returned when a buffer is too short to decode the next field.
var ErrEndOfInput = errors.New("codec: end of input")

// ErrInvalidInput is returned on an unrecognized tag byte.
var ErrInvalidInput = errors.New("codec: invalid input")

// ---------------------------------------------------------------------------
// Value encoding
// ---------------------------------------------------------------------------

// signFlip maps a signed int64 to a uint64 such that big-endian byte order of
// the result matches signed numeric order: MinInt64 -> 0, MaxInt64 -> max uint64.
func signFlip(v int64) uint64 {
	return uint64(v) ^ (1 << 63)
}

func signUnflip(v uint64) int64 {
	return int64(v ^ (1 << 63))
}

// EncodeValue appends the order-preserving encoding of v to buf and returns
// the extended buffer.
func EncodeValue(buf []byte, v fact.Value) []byte {
	switch v.Kind {
	case fact.KindI64:
		buf = append(buf, tagI64)
		return appendU64(buf, signFlip(v.I64))
	case fact.KindU64:
		buf = append(buf, tagU64)
		return appendU64(buf, v.U64)
	case fact.KindRef:
		buf = append(buf, tagRef)
		return appendU64(buf, v.Ref)
	case fact.KindDecimal:
		buf = append(buf, tagDecimal)
		buf = appendU64(buf, uint64(v.Decimal.Scale))
		return appendU64(buf, signFlip(v.Decimal.Unscaled))
	case fact.KindStr:
		buf = append(buf, tagStr)
		s := v.Str
		if len(s) > 0xFFFF {
			panic("codec: string value too long to encode")
		}
		buf = appendU16(buf, uint16(len(s)))
		return append(buf, s...)
	default:
		panic(fmt.Sprintf("codec: unknown value kind %v", v.Kind))
	}
}

// DecodeValue reads one encoded value from buf, returning the value and the
// number of bytes consumed.
func DecodeValue(buf []byte) (fact.Value, int, error) {
	if len(buf) < 1 {
		return fact.Value{}, 0, ErrEndOfInput
	}
	switch buf[0] {
	case tagI64:
		raw, err := readU64(buf[1:])
		if err != nil {
			return fact.Value{}, 0, err
		}
		return fact.I64(signUnflip(raw)), 9, nil
	case tagU64:
		raw, err := readU64(buf[1:])
		if err != nil {
			return fact.Value{}, 0, err
		}
		return fact.U64(raw), 9, nil
	case tagRef:
		raw, err := readU64(buf[1:])
		if err != nil {
			return fact.Value{}, 0, err
		}
		return fact.RefVal(raw), 9, nil
	case tagDecimal:
		scale, err := readU64(buf[1:])
		if err != nil {
			return fact.Value{}, 0, err
		}
		unscaled, err := readU64(buf[9:])
		if err != nil {
			return fact.Value{}, 0, err
		}
		return fact.Dec(signUnflip(unscaled), uint8(scale)), 17, nil
	case tagStr:
		length, err := readU16(buf[1:])
		if err != nil {
			return fact.Value{}, 0, err
		}
		start := 3
		end := start + int(length)
		if len(buf) < end {
			return fact.Value{}, 0, ErrEndOfInput
		}
		return fact.Str(string(buf[start:end])), end, nil
	default:
		return fact.Value{}, 0, ErrInvalidInput
	}
}

// ---------------------------------------------------------------------------
// Fact / key encoding
// ---------------------------------------------------------------------------

// EncodeKey serializes f as a key in the given index, in the exact byte
// layout documented in spec §4.B / §6.
func EncodeKey(index Index, f fact.Fact) []byte {
	buf := make([]byte, 0, 1+8+8+f.Value.Size()+8+1)
	buf = append(buf, byte(index))
	switch index {
	case EAVT:
		buf = appendU64(buf, f.Entity)
		buf = appendU64(buf, f.Attribute)
		buf = EncodeValue(buf, f.Value)
	case AEVT:
		buf = appendU64(buf, f.Attribute)
		buf = appendU64(buf, f.Entity)
		buf = EncodeValue(buf, f.Value)
	case AVET:
		buf = appendU64(buf, f.Attribute)
		buf = EncodeValue(buf, f.Value)
		buf = appendU64(buf, f.Entity)
	default:
		panic(fmt.Sprintf("codec: unknown index %v", index))
	}
	buf = appendU64(buf, ^f.Tx) // !tx: newer transactions sort first
	buf = append(buf, byte(f.Op))
	return buf
}

// ValuePrefixLen returns the length, in bytes, of the key's index tag plus
// its identifying fields through (and including) the value field — i.e. the
// byte span shared by every tx/op version of the same (E,A,V) or (A,V,E)
// triple in the given index. It is used to compute the retraction-aware
// "skip to next triple" seek key (spec §4.C).
func ValuePrefixLen(index Index, key []byte) (int, error) {
	if len(key) < 1 {
		return 0, ErrEndOfInput
	}
	switch index {
	case EAVT, AEVT:
		if len(key) < 17 {
			return 0, ErrEndOfInput
		}
		_, n, err := DecodeValue(key[17:])
		if err != nil {
			return 0, err
		}
		return 17 + n, nil
	case AVET:
		if len(key) < 9 {
			return 0, ErrEndOfInput
		}
		_, n, err := DecodeValue(key[9:])
		if err != nil {
			return 0, err
		}
		return 9 + n, nil
	default:
		return 0, ErrInvalidInput
	}
}

// DecodeKey is the strict inverse of EncodeKey: it parses a key of the given
// index back into a Fact.
func DecodeKey(index Index, key []byte) (fact.Fact, error) {
	if len(key) < 1 || Index(key[0]) != index {
		return fact.Fact{}, ErrInvalidInput
	}
	rest := key[1:]
	var entity, attribute uint64
	var value fact.Value
	var err error
	var n int

	switch index {
	case EAVT:
		if len(rest) < 16 {
			return fact.Fact{}, ErrEndOfInput
		}
		entity, err = readU64(rest[0:8])
		if err != nil {
			return fact.Fact{}, err
		}
		attribute, err = readU64(rest[8:16])
		if err != nil {
			return fact.Fact{}, err
		}
		value, n, err = DecodeValue(rest[16:])
		if err != nil {
			return fact.Fact{}, err
		}
		rest = rest[16+n:]
	case AEVT:
		if len(rest) < 16 {
			return fact.Fact{}, ErrEndOfInput
		}
		attribute, err = readU64(rest[0:8])
		if err != nil {
			return fact.Fact{}, err
		}
		entity, err = readU64(rest[8:16])
		if err != nil {
			return fact.Fact{}, err
		}
		value, n, err = DecodeValue(rest[16:])
		if err != nil {
			return fact.Fact{}, err
		}
		rest = rest[16+n:]
	case AVET:
		if len(rest) < 8 {
			return fact.Fact{}, ErrEndOfInput
		}
		attribute, err = readU64(rest[0:8])
		if err != nil {
			return fact.Fact{}, err
		}
		value, n, err = DecodeValue(rest[8:])
		if err != nil {
			return fact.Fact{}, err
		}
		rest = rest[8+n:]
		if len(rest) < 8 {
			return fact.Fact{}, ErrEndOfInput
		}
		entity, err = readU64(rest[0:8])
		if err != nil {
			return fact.Fact{}, err
		}
		rest = rest[8:]
	default:
		return fact.Fact{}, ErrInvalidInput
	}

	if len(rest) < 9 {
		return fact.Fact{}, ErrEndOfInput
	}
	notTx, err := readU64(rest[0:8])
	if err != nil {
		return fact.Fact{}, err
	}
	op := rest[8]
	if op != byte(fact.OpAssert) && op != byte(fact.OpRetract) {
		return fact.Fact{}, ErrInvalidInput
	}

	return fact.Fact{
		Entity:    entity,
		Attribute: attribute,
		Value:     value,
		Tx:        ^notTx,
		Op:        fact.Op(op),
	}, nil
}

// NextPrefix returns the lexicographic successor of prefix, treating it as
// the start of a half-open range: the smallest byte string greater than
// every string that has prefix as a prefix. It powers both upper-bound
// derivation for range scans and the retraction-aware "skip this triple"
// seek (spec §4.C, §4.D).
func NextPrefix(prefix []byte) []byte {
	out := make([]byte, len(prefix))
	copy(out, prefix)
	for i := len(out) - 1; i >= 0; i-- {
		if out[i] != 0xFF {
			out[i]++
			return out[:i+1]
		}
	}
	// prefix is all 0xFF (or empty): there is no finite successor bound;
	// the caller should treat a nil end as "unbounded".
	return nil
}

func appendU64(buf []byte, v uint64) []byte {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}

func appendU16(buf []byte, v uint16) []byte {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	return append(buf, tmp[:]...)
}

func readU64(buf []byte) (uint64, error) {
	if len(buf) < 8 {
		return 0, ErrEndOfInput
	}
	return binary.BigEndian.Uint64(buf[:8]), nil
}

func readU16(buf []byte) (uint16, error) {
	if len(buf) < 2 {
		return 0, ErrEndOfInput
	}
	return binary.BigEndian.Uint16(buf[:2]), nil
}
