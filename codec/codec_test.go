package codec

import (
	"bytes"
	"sort"
	"testing"

	"github.com/wbrown/chronicle/fact"
)

func TestValueRoundTrip(t *testing.T) {
	values := []fact.Value{
		fact.I64(-42),
		fact.I64(0),
		fact.I64(42),
		fact.U64(7),
		fact.Str(""),
		fact.Str("hello"),
		fact.RefVal(123),
		fact.Dec(-500, 2),
		fact.Dec(500, 2),
	}
	for _, v := range values {
		buf := EncodeValue(nil, v)
		got, n, err := DecodeValue(buf)
		if err != nil {
			t.Fatalf("decode %v: %v", v, err)
		}
		if n != len(buf) {
			t.Errorf("decode %v consumed %d bytes, want %d", v, n, len(buf))
		}
		if !got.Equal(v) {
			t.Errorf("round trip %v -> %v", v, got)
		}
	}
}

// TestValueByteOrderMatchesSemanticOrder is the crux of the codec: byte
// comparison of encodings must agree with Value.Compare within a kind.
func TestValueByteOrderMatchesSemanticOrder(t *testing.T) {
	ints := []int64{-1 << 62, -1000, -1, 0, 1, 1000, 1 << 62}
	var encoded [][]byte
	for _, i := range ints {
		encoded = append(encoded, EncodeValue(nil, fact.I64(i)))
	}
	for i := 1; i < len(encoded); i++ {
		if bytes.Compare(encoded[i-1], encoded[i]) >= 0 {
			t.Fatalf("encoding of %d did not sort before encoding of %d", ints[i-1], ints[i])
		}
	}

	strs := []string{"", "a", "ab", "b", "z"}
	encoded = nil
	for _, s := range strs {
		encoded = append(encoded, EncodeValue(nil, fact.Str(s)))
	}
	for i := 1; i < len(encoded); i++ {
		if bytes.Compare(encoded[i-1], encoded[i]) >= 0 {
			t.Fatalf("encoding of %q did not sort before encoding of %q", strs[i-1], strs[i])
		}
	}
}

func TestKeyRoundTrip(t *testing.T) {
	f := fact.Assert(10, 20, int64(30), 40)
	for _, idx := range []Index{EAVT, AEVT, AVET} {
		key := EncodeKey(idx, f)
		got, err := DecodeKey(idx, key)
		if err != nil {
			t.Fatalf("%v: decode: %v", idx, err)
		}
		if !got.Equal(f) {
			t.Errorf("%v: round trip %+v -> %+v", idx, f, got)
		}
	}
}

// TestEAVTKeyOrder checks that ascending byte order of EAVT keys orders
// facts by (entity, attribute, value, !tx) as spec §4.B requires, so that
// newer transactions of the same triple sort first.
func TestEAVTKeyOrder(t *testing.T) {
	f1 := fact.Assert(1, 1, int64(1), 5)
	f2 := fact.Assert(1, 1, int64(1), 10) // same EAV, later tx: must sort first
	f3 := fact.Assert(1, 2, int64(1), 1)  // different attribute: must sort after both

	keys := [][]byte{EncodeKey(EAVT, f1), EncodeKey(EAVT, f2), EncodeKey(EAVT, f3)}
	sorted := append([][]byte{}, keys...)
	sort.Slice(sorted, func(i, j int) bool { return bytes.Compare(sorted[i], sorted[j]) < 0 })

	if !bytes.Equal(sorted[0], keys[1]) {
		t.Fatalf("expected higher-tx fact to sort first")
	}
	if !bytes.Equal(sorted[2], keys[2]) {
		t.Fatalf("expected different-attribute fact to sort last")
	}
}

func TestNextPrefix(t *testing.T) {
	got := NextPrefix([]byte{0x01, 0x02})
	want := []byte{0x01, 0x03}
	if !bytes.Equal(got, want) {
		t.Errorf("NextPrefix = %v, want %v", got, want)
	}

	got = NextPrefix([]byte{0x01, 0xFF})
	want = []byte{0x02}
	if !bytes.Equal(got, want) {
		t.Errorf("NextPrefix with trailing 0xFF = %v, want %v", got, want)
	}

	if NextPrefix([]byte{0xFF, 0xFF}) != nil {
		t.Errorf("NextPrefix of all-0xFF should be nil (unbounded)")
	}
}

// TestValuePrefixLenSkipsWholeTriple verifies that seeking to NextPrefix of
// the span ValuePrefixLen identifies lands strictly after every tx/op
// variant of the same (E,A,V) triple, including one whose tx equals the
// current fact's tx (the case a naive "append !basis_tx" seek key handles
// incorrectly, since it can equal or precede the current key rather than
// strictly exceed it).
func TestValuePrefixLenSkipsWholeTriple(t *testing.T) {
	older := fact.Assert(1, 1, int64(7), 5)
	retraction := fact.Retract(1, 1, int64(7), 10) // same triple, later tx

	oldKey := EncodeKey(EAVT, older)
	retractKey := EncodeKey(EAVT, retraction)

	n, err := ValuePrefixLen(EAVT, retractKey)
	if err != nil {
		t.Fatalf("ValuePrefixLen: %v", err)
	}
	seek := NextPrefix(retractKey[:n])

	if bytes.Compare(seek, retractKey) <= 0 {
		t.Fatalf("seek key must strictly exceed the current key")
	}
	if bytes.Compare(seek, oldKey) <= 0 {
		t.Fatalf("seek key must skip past older versions of the same triple")
	}
}
