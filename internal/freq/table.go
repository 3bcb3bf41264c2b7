// Package freq implements the frequency table and the frequency
// merger: the trainer accumulates one Table per input chunk during
// pre-tokenization, then sums them into a single global Table before
// the merge engine runs.
package freq

import "github.com/zhubert/gobpe/internal/token"

// Entry is one key of a Table: a pre-token's current segmentation and the
// number of times it occurs in the corpus. The BPE merge engine holds
// pointers to Entry values directly, so mutating Count or Tokens in place
// is visible to every index referencing this Entry.
type Entry struct {
	Tokens token.Token
	Count  int
}

// Table maps a pre-token (identified by its exact segmentation) to its
// occurrence count. Invariants: every Count is strictly positive (an
// Entry whose count reaches zero is removed), and the sum of all counts
// equals the total number of pre-token occurrences extracted from the
// corpus, preserved across merges.
type Table struct {
	entries map[string]*Entry
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{entries: make(map[string]*Entry)}
}

// Add increments the count for tok by n, creating the entry if it does
// not already exist, and returns the (possibly new) Entry.
func (t *Table) Add(tok token.Token, n int) *Entry {
	key := tok.Key()
	if ent, ok := t.entries[key]; ok {
		ent.Count += n
		return ent
	}
	ent := &Entry{Tokens: tok, Count: n}
	t.entries[key] = ent
	return ent
}

// Get looks up an entry by its Token's Key.
func (t *Table) Get(key string) (*Entry, bool) {
	ent, ok := t.entries[key]
	return ent, ok
}

// Remove deletes the entry with the given key, if present.
func (t *Table) Remove(key string) {
	delete(t.entries, key)
}

// Len returns the number of distinct pre-tokens currently tracked.
func (t *Table) Len() int {
	return len(t.entries)
}

// Total returns the sum of all entry counts: the invariant quantity that
// must stay constant across every merge iteration.
func (t *Table) Total() int {
	sum := 0
	for _, e := range t.entries {
		sum += e.Count
	}
	return sum
}

// Range calls fn for every entry in the table, stopping early if fn
// returns false. Iteration order is unspecified.
func (t *Table) Range(fn func(*Entry) bool) {
	for _, e := range t.entries {
		if !fn(e) {
			return
		}
	}
}

// Merge combines per-chunk frequency tables into one global table whose
// count for each pre-token is the sum across inputs. Summation is
// associative and commutative, so the order of tables does not matter.
func Merge(tables ...*Table) *Table {
	out := NewTable()
	for _, t := range tables {
		if t == nil {
			continue
		}
		t.Range(func(e *Entry) bool {
			out.Add(e.Tokens, e.Count)
			return true
		})
	}
	return out
}
