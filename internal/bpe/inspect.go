package bpe

import "github.com/zhubert/gobpe/internal/freq"

// RecomputeCounts rebuilds the pair-count index from scratch by
// scanning every entry in f. Tests use it to verify that an Engine's
// incrementally maintained C matches a full recomputation after every
// merge iteration.
func RecomputeCounts(f *freq.Table) map[Pair]int {
	counts := make(map[Pair]int)
	f.Range(func(ent *freq.Entry) bool {
		toks := ent.Tokens
		for i := 0; i+1 < len(toks); i++ {
			counts[Pair{toks[i], toks[i+1]}] += ent.Count
		}
		return true
	})
	return counts
}

// Counts returns a snapshot copy of the engine's maintained pair-count
// index C, for comparison against RecomputeCounts in tests.
func (e *Engine) Counts() map[Pair]int {
	out := make(map[Pair]int, len(e.c))
	for p, c := range e.c {
		out[p] = c
	}
	return out
}

// Frequencies exposes the engine's underlying frequency table F.
func (e *Engine) Frequencies() *freq.Table {
	return e.f
}
