package bpe

import "github.com/zhubert/gobpe/internal/token"

// Pair is an ordered pair of adjacent byte-segments.
type Pair struct {
	A, B token.Segment
}

// greaterThan reports whether p outranks o when breaking a count tie.
// A pair's byte content is its A segment's bytes followed by its B
// segment's bytes, compared as one continuous sequence — not as two
// independently-ranked slots — so (a,b) outranks (aa,a): flattened,
// "ab" sorts after "aaa". Pairs whose flattened bytes are equal, such as
// (ab,c) and (a,bc), are ordered by their A segment alone, so the pair
// with the longer A outranks the other and no two distinct pairs tie.
func (p Pair) greaterThan(o Pair) bool {
	if pf, of := p.A+p.B, o.A+o.B; pf != of {
		return pf > of
	}
	return p.A > o.A
}

// merged returns the concatenated segment a∥b that replaces an
// occurrence of the pair during a rewrite.
func (p Pair) merged() token.Segment {
	return p.A + p.B
}
