// Package bpe implements the BPE merge engine: the pair-count index C,
// the pair-occurrence index O, the priority structure used to pick the
// next merge, and the incremental rewrite rule that keeps all three in
// sync without ever rescanning the whole frequency table.
package bpe

import (
	"container/heap"
	"context"

	"github.com/zhubert/gobpe/internal/freq"
	"github.com/zhubert/gobpe/internal/token"
)

// Engine owns the self-contained (F, C, O) triple: F is the frequency
// table passed in by the caller, C and O are built and maintained here.
type Engine struct {
	f *freq.Table
	c map[Pair]int
	o map[Pair]map[*freq.Entry]struct{}
	h *pairHeap
}

// NewEngine builds the initial C and O indexes from f in a single pass.
func NewEngine(f *freq.Table) *Engine {
	e := &Engine{
		f: f,
		c: make(map[Pair]int),
		o: make(map[Pair]map[*freq.Entry]struct{}),
		h: &pairHeap{},
	}
	heap.Init(e.h)

	f.Range(func(ent *freq.Entry) bool {
		toks := ent.Tokens
		for i := 0; i+1 < len(toks); i++ {
			p := Pair{toks[i], toks[i+1]}
			e.addCount(p, ent.Count)
			e.addOcc(p, ent)
		}
		return true
	})

	return e
}

// Run executes merge iterations until k merges have been produced or no
// pair remains to merge, returning the ordered list of learned pairs. If
// ctx is cancelled mid-loop, Run stops after the last fully-completed
// iteration and returns the merges produced so far, which form a valid
// prefix of what uninterrupted training would have produced.
func (e *Engine) Run(ctx context.Context, k int) []Pair {
	merges := make([]Pair, 0, k)

	for len(merges) < k {
		select {
		case <-ctx.Done():
			return merges
		default:
		}

		p, ok := e.selectBest()
		if !ok {
			break
		}
		e.rewrite(p)
		merges = append(merges, p)
	}

	return merges
}

// selectBest pops the highest-priority valid pair from the heap,
// discarding stale entries along the way, and reports whether any pair
// remains.
func (e *Engine) selectBest() (Pair, bool) {
	for e.h.Len() > 0 {
		item := heap.Pop(e.h).(pairHeapItem)
		if cur, ok := e.c[item.pair]; ok && cur == item.count {
			return item.pair, true
		}
	}
	return Pair{}, false
}

// rewrite applies the merge rule for p: every pre-token that contains p
// is pulled out of F, rewritten with every adjacent occurrence of p
// merged left-to-right and non-overlapping, and put back, with C and O
// updated incrementally at every step.
func (e *Engine) rewrite(p Pair) {
	set := e.o[p]
	affected := make([]*freq.Entry, 0, len(set))
	for ent := range set {
		affected = append(affected, ent)
	}

	for _, ent := range affected {
		c := ent.Count
		oldToks := ent.Tokens

		for i := 0; i+1 < len(oldToks); i++ {
			q := Pair{oldToks[i], oldToks[i+1]}
			e.addCount(q, -c)
			e.removeOcc(q, ent)
		}
		e.f.Remove(oldToks.Key())

		newToks := rewriteToken(oldToks, p)
		newEnt := e.f.Add(newToks, c)

		for i := 0; i+1 < len(newToks); i++ {
			q := Pair{newToks[i], newToks[i+1]}
			e.addCount(q, c)
			e.addOcc(q, newEnt)
		}
	}
}

// addCount applies delta to the live count for p, pushing a fresh heap
// entry whenever the result is still positive so that the pair's true
// current count always has a valid (non-stale) representative in the
// heap. This matters because a pair's count can decrease without any
// other pair being incremented in the same rewrite, so pushing only on
// increments would leave a purely-decreasing pair with nothing but
// stale (too-high) entries in the heap. If the count reaches zero or
// below, p is dropped from C entirely.
func (e *Engine) addCount(p Pair, delta int) {
	if delta == 0 {
		return
	}
	next := e.c[p] + delta
	if next <= 0 {
		delete(e.c, p)
		return
	}
	e.c[p] = next
	heap.Push(e.h, pairHeapItem{pair: p, count: next})
}

func (e *Engine) addOcc(p Pair, ent *freq.Entry) {
	set, ok := e.o[p]
	if !ok {
		set = make(map[*freq.Entry]struct{})
		e.o[p] = set
	}
	set[ent] = struct{}{}
}

func (e *Engine) removeOcc(p Pair, ent *freq.Entry) {
	set, ok := e.o[p]
	if !ok {
		return
	}
	delete(set, ent)
	if len(set) == 0 {
		delete(e.o, p)
	}
}

// rewriteToken replaces every adjacent occurrence of p in tok with its
// merged segment, scanning left-to-right and resuming immediately after
// each replacement so that overlapping occurrences never double-merge.
func rewriteToken(tok token.Token, p Pair) token.Token {
	out := make(token.Token, 0, len(tok))

	i := 0
	for i < len(tok) {
		if i+1 < len(tok) && tok[i] == p.A && tok[i+1] == p.B {
			out = append(out, p.merged())
			i += 2
			continue
		}
		out = append(out, tok[i])
		i++
	}

	return out
}
