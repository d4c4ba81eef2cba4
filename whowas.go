package main

import "time"

// whoWasCapacityPerNick bounds how many historical records we retain for any
// single nickname. The queue is per-nick, not shared: a flood of quits under
// one nick must not push another nick's history out.
const whoWasCapacityPerNick = 10

// WhoWasEntry is a single historical record of a client that has quit or
// changed nick away from the recorded one.
type WhoWasEntry struct {
	Nick     string
	User     string
	Host     string
	RealName string
	Time     time.Time
}

// WhoWasHistory maps a canonicalized nick to its own bounded queue of
// historical records, oldest evicted first. It's only ever touched from the
// server's single event loop goroutine, so it needs no locking of its own.
type WhoWasHistory struct {
	entries map[string][]WhoWasEntry
}

// NewWhoWasHistory creates an empty history.
func NewWhoWasHistory() *WhoWasHistory {
	return &WhoWasHistory{entries: map[string][]WhoWasEntry{}}
}

// Record appends a new entry under the nick's own queue, evicting that
// queue's oldest entry if it's already at capacity.
func (w *WhoWasHistory) Record(nick, user, host, realName string) {
	canon := canonicalizeNick(nick)

	entry := WhoWasEntry{
		Nick:     nick,
		User:     user,
		Host:     host,
		RealName: realName,
		Time:     time.Now(),
	}

	queue := w.entries[canon]
	if len(queue) >= whoWasCapacityPerNick {
		queue = queue[1:]
	}
	w.entries[canon] = append(queue, entry)
}

// Lookup returns every entry recorded for the given canonicalized nick, most
// recent first.
func (w *WhoWasHistory) Lookup(canonicalNick string) []WhoWasEntry {
	queue := w.entries[canonicalNick]
	if len(queue) == 0 {
		return nil
	}

	found := make([]WhoWasEntry, len(queue))
	for i, entry := range queue {
		found[len(queue)-1-i] = entry
	}
	return found
}
