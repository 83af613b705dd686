package domain

import "sort"

// Ledger records which entry ids have already been delivered per feed kind.
// Ids are only ever added; removing one would re-deliver an old entry.
type Ledger struct {
	posted map[FeedKind]map[int]struct{}
}

// NewLedger returns an empty ledger ("nothing delivered yet").
func NewLedger() *Ledger {
	return &Ledger{posted: map[FeedKind]map[int]struct{}{}}
}

// RestoreLedger rebuilds a ledger from its persisted snapshot form.
func RestoreLedger(snapshot map[string][]int) *Ledger {
	ledger := NewLedger()
	for feed, ids := range snapshot {
		for _, id := range ids {
			ledger.Add(FeedKind(feed), id)
		}
	}
	return ledger
}

// Contains reports whether the id was already delivered for the feed kind.
func (l *Ledger) Contains(kind FeedKind, id int) bool {
	_, ok := l.posted[kind][id]
	return ok
}

// Add marks an id as delivered. Adding an existing id is a no-op.
func (l *Ledger) Add(kind FeedKind, id int) {
	set, ok := l.posted[kind]
	if !ok {
		set = map[int]struct{}{}
		l.posted[kind] = set
	}
	set[id] = struct{}{}
}

// Count returns how many ids are recorded for the feed kind.
func (l *Ledger) Count(kind FeedKind) int {
	return len(l.posted[kind])
}

// Snapshot returns the persistable form: feed name to sorted id list.
func (l *Ledger) Snapshot() map[string][]int {
	snapshot := make(map[string][]int, len(l.posted))
	for kind, set := range l.posted {
		ids := make([]int, 0, len(set))
		for id := range set {
			ids = append(ids, id)
		}
		sort.Ints(ids)
		snapshot[string(kind)] = ids
	}
	return snapshot
}
