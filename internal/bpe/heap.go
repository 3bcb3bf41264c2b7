package bpe

// pairHeapItem is one entry in the priority structure: a pair together
// with the count it was pushed with. Entries go stale whenever the
// pair's live count changes after the push; stale entries are
// discarded lazily when popped.
type pairHeapItem struct {
	pair  Pair
	count int
}

// pairHeap is a container/heap.Interface ordered so that heap.Pop always
// returns the highest-priority item: highest count first, ties broken by
// the larger pair. container/heap's Pop returns the element for which
// Less reports true against every other element, so Less here is
// inverted relative to a plain "smallest first" heap to make Pop
// surface the best pair instead of the worst.
type pairHeap []pairHeapItem

func (h pairHeap) Len() int { return len(h) }

func (h pairHeap) Less(i, j int) bool {
	if h[i].count != h[j].count {
		return h[i].count > h[j].count
	}
	return h[i].pair.greaterThan(h[j].pair)
}

func (h pairHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *pairHeap) Push(x any) {
	*h = append(*h, x.(pairHeapItem))
}

func (h *pairHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
