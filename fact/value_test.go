package fact

import "testing"

func TestValueMatchesType(t *testing.T) {
	v := Str("abc")
	if !v.MatchesType(KindStr) {
		t.Fatalf("expected str value to match KindStr")
	}
	if v.MatchesType(KindI64) {
		t.Fatalf("expected str value not to match KindI64")
	}
}

func TestValueCompareAcrossKinds(t *testing.T) {
	if I64(100).Compare(U64(0)) >= 0 {
		t.Fatalf("expected KindI64 to sort before KindU64 regardless of payload")
	}
}

func TestValueSizeMatchesCodecWidths(t *testing.T) {
	cases := []struct {
		v    Value
		size int
	}{
		{I64(1), 9},
		{U64(1), 9},
		{RefVal(1), 9},
		{Dec(1, 2), 17},
		{Str("hi"), 1 + 2 + 2},
		{Str(""), 1 + 2},
	}
	for _, c := range cases {
		if got := c.v.Size(); got != c.size {
			t.Errorf("Size(%v) = %d, want %d", c.v, got, c.size)
		}
	}
}
