package ledger

import (
	"strings"
	"sync"
)

// Ledger is the in-memory view of a Store. Every Append is written through to
// the store before it becomes visible here.
type Ledger struct {
	mu      sync.Mutex
	store   Store
	entries []Entry
	byHash  map[string]int
}

// Load reads all entries from store. Later rows with a repeated hash replace
// earlier ones in the lookup index; the ordered list keeps both.
func Load(store Store) (*Ledger, error) {
	entries, err := store.Load()
	if err != nil {
		return nil, err
	}

	l := &Ledger{
		store:   store,
		entries: make([]Entry, 0, len(entries)),
		byHash:  make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		l.add(e)
	}
	return l, nil
}

// Contains reports whether an entry with hash exists.
func (l *Ledger) Contains(hash string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, ok := l.byHash[key(hash)]
	return ok
}

// Lookup returns the latest entry recorded for hash.
func (l *Ledger) Lookup(hash string) (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i, ok := l.byHash[key(hash)]
	if !ok {
		return Entry{}, false
	}
	return l.entries[i], true
}

// Append persists e and then adds it to the in-memory view. On a store error
// the in-memory view is left unchanged.
func (l *Ledger) Append(e Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.Append(e); err != nil {
		return err
	}
	l.add(e)
	return nil
}

// Len returns the number of entries, including duplicates.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.entries)
}

// Entries returns a copy of all entries in append order.
func (l *Ledger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Since returns a copy of the entries appended after the first n.
func (l *Ledger) Since(n int) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n < 0 {
		n = 0
	}
	if n >= len(l.entries) {
		return []Entry{}
	}
	out := make([]Entry, len(l.entries)-n)
	copy(out, l.entries[n:])
	return out
}

func (l *Ledger) add(e Entry) {
	l.entries = append(l.entries, e)
	l.byHash[key(e.Hash)] = len(l.entries) - 1
}

func key(hash string) string {
	return strings.ToLower(strings.TrimSpace(hash))
}
