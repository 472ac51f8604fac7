// Package clock abstracts the wall-clock time a transaction stamps itself
// with, so the Transactor can be tested against a fixed sequence of
// instants instead of real time (spec §4.I, §5).
package clock

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// Instant is a point in wall-clock time as the Transactor records it: the
// millisecond timestamp written into the db/tx/time fact, plus a
// collision-resistant token for logging and introspection that the fact
// store itself never sees (db/tx/time's declared type is a plain u64).
type Instant struct {
	millis uint64
	token  ulid.ULID
}

// Millis returns the epoch-millisecond value stored in the db/tx/time fact.
func (i Instant) Millis() uint64 { return i.millis }

// Token returns a sortable, globally unique string identifying this instant,
// useful for correlating a transaction with external logs without reusing
// the transaction's entity id.
func (i Instant) Token() string { return i.token.String() }

// Clock produces the Instant a transaction is stamped with.
type Clock interface {
	Now() Instant
}

// realClock reads actual wall-clock time.
type realClock struct{}

// New returns a Clock backed by the system clock.
func New() Clock { return realClock{} }

func (realClock) Now() Instant {
	now := time.Now()
	return Instant{millis: uint64(now.UnixMilli()), token: ulid.Make()}
}

// Fixed returns a Clock that always reports the same Instant, for
// deterministic Transactor tests.
func Fixed(millis uint64) Clock {
	return fixedClock{Instant{millis: millis, token: ulid.Make()}}
}

type fixedClock struct{ instant Instant }

func (f fixedClock) Now() Instant { return f.instant }
