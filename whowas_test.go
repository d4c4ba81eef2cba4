package main

import "testing"

func TestWhoWasLookup(t *testing.T) {
	w := NewWhoWasHistory()
	w.Record("alice", "alice", "1.2.3.4", "Alice A")

	found := w.Lookup(canonicalizeNick("alice"))
	if len(found) != 1 {
		t.Fatalf("got %d entries, want 1", len(found))
	}
	if found[0].RealName != "Alice A" {
		t.Fatalf("got realname %q, want Alice A", found[0].RealName)
	}
}

func TestWhoWasEvictsOldestPerNick(t *testing.T) {
	w := NewWhoWasHistory()
	for i := 0; i < whoWasCapacityPerNick+10; i++ {
		w.Record("flood", "flood", "1.2.3.4", "")
	}

	found := w.Lookup(canonicalizeNick("flood"))
	if len(found) != whoWasCapacityPerNick {
		t.Fatalf("got %d entries, want %d", len(found), whoWasCapacityPerNick)
	}
}

func TestWhoWasNicksDoNotShareAQueue(t *testing.T) {
	w := NewWhoWasHistory()
	w.Record("alice", "alice", "1.2.3.4", "Alice A")
	for i := 0; i < whoWasCapacityPerNick+10; i++ {
		w.Record("flood", "flood", "1.2.3.4", "")
	}

	found := w.Lookup(canonicalizeNick("alice"))
	if len(found) != 1 {
		t.Fatalf("flooding another nick evicted alice's history: got %d entries, want 1", len(found))
	}
}

func TestWhoWasUnknownNick(t *testing.T) {
	w := NewWhoWasHistory()
	if found := w.Lookup(canonicalizeNick("ghost")); found != nil {
		t.Fatalf("expected no entries, got %d", len(found))
	}
}
