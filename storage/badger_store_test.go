package storage

import (
	"os"
	"testing"

	"github.com/wbrown/chronicle/codec"
	"github.com/wbrown/chronicle/fact"
)

func TestBadgerStoreWriteAndScan(t *testing.T) {
	dir, err := os.MkdirTemp("", "chronicle-badger-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	store, err := OpenBadgerStore(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	facts := []fact.Fact{
		fact.Assert(1, 1, "Alice", 1),
		fact.Assert(1, 2, "alice@example.com", 1),
		fact.Assert(2, 1, "Bob", 1),
		fact.Assert(1, 3, fact.RefVal(2), 2), // Alice follows Bob
	}
	if err := store.Write(facts); err != nil {
		t.Fatalf("write: %v", err)
	}

	lower := []byte{byte(codec.EAVT)}
	upper := codec.NextPrefix(lower)
	it, err := store.Scan(codec.EAVT, lower, upper, NewRestricts(10))
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	defer it.Close()

	var got []fact.Fact
	for it.Next() {
		got = append(got, it.Fact())
	}
	if err := it.Err(); err != nil {
		t.Fatalf("iterate: %v", err)
	}
	if len(got) != len(facts) {
		t.Fatalf("expected %d facts, got %d: %v", len(facts), len(got), got)
	}
}

func TestBadgerStoreRetractionAndLatestEntityID(t *testing.T) {
	dir, err := os.MkdirTemp("", "chronicle-badger-test-*")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	store, err := OpenBadgerStore(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	if err := store.Write([]fact.Fact{
		fact.Assert(5, 1, int64(10), 1),
		fact.Retract(5, 1, int64(10), 2),
		fact.Assert(9, 1, int64(1), 3),
	}); err != nil {
		t.Fatalf("write: %v", err)
	}

	lower := []byte{byte(codec.EAVT)}
	upper := codec.NextPrefix(lower)
	it, err := store.Scan(codec.EAVT, lower, upper, NewRestricts(10))
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	defer it.Close()

	var got []fact.Fact
	for it.Next() {
		got = append(got, it.Fact())
	}
	if len(got) != 1 || got[0].Entity != 9 {
		t.Fatalf("expected only entity 9's fact to survive retraction, got %v", got)
	}

	id, err := store.LatestEntityID()
	if err != nil {
		t.Fatalf("LatestEntityID: %v", err)
	}
	if id != 9 {
		t.Fatalf("expected latest entity id 9, got %d", id)
	}
}
