package clock

import "testing"

func TestFixedClockReturnsSameInstant(t *testing.T) {
	c := Fixed(42)
	a := c.Now()
	b := c.Now()
	if a.Millis() != 42 || b.Millis() != 42 {
		t.Fatalf("want millis=42, got %d and %d", a.Millis(), b.Millis())
	}
}

func TestRealClockProducesDistinctTokens(t *testing.T) {
	c := New()
	a := c.Now()
	b := c.Now()
	if a.Token() == b.Token() {
		t.Fatalf("expected distinct tokens, got %q twice", a.Token())
	}
}
