package bookv1

import "container/heap"

// BidTracker keeps bid prices ordered so the best (highest) bid is available
// in near constant time. It may hold prices whose level has already been
// drained; callers discard those lazily on pop rather than eagerly.
type BidTracker struct {
	prices maxPriceHeap
}

// NewBidTracker creates an empty BidTracker.
func NewBidTracker() *BidTracker {
	return &BidTracker{}
}

// Push adds a price to the tracker.
func (t *BidTracker) Push(price uint64) {
	heap.Push(&t.prices, price)
}

// Peek returns the best bid price without removing it.
func (t *BidTracker) Peek() (uint64, bool) {
	if len(t.prices) == 0 {
		return 0, false
	}
	return t.prices[0], true
}

// Pop removes and returns the best bid price.
func (t *BidTracker) Pop() (uint64, bool) {
	if len(t.prices) == 0 {
		return 0, false
	}
	return heap.Pop(&t.prices).(uint64), true
}

// Len returns the number of tracked prices, stale entries included.
func (t *BidTracker) Len() int {
	return len(t.prices)
}

// AskTracker keeps ask prices ordered so the best (lowest) ask is available
// in near constant time, with the same lazy-cleanup contract as BidTracker.
type AskTracker struct {
	prices minPriceHeap
}

// NewAskTracker creates an empty AskTracker.
func NewAskTracker() *AskTracker {
	return &AskTracker{}
}

// Push adds a price to the tracker.
func (t *AskTracker) Push(price uint64) {
	heap.Push(&t.prices, price)
}

// Peek returns the best ask price without removing it.
func (t *AskTracker) Peek() (uint64, bool) {
	if len(t.prices) == 0 {
		return 0, false
	}
	return t.prices[0], true
}

// Pop removes and returns the best ask price.
func (t *AskTracker) Pop() (uint64, bool) {
	if len(t.prices) == 0 {
		return 0, false
	}
	return heap.Pop(&t.prices).(uint64), true
}

// Len returns the number of tracked prices, stale entries included.
func (t *AskTracker) Len() int {
	return len(t.prices)
}

type maxPriceHeap []uint64

func (h maxPriceHeap) Len() int           { return len(h) }
func (h maxPriceHeap) Less(i, j int) bool { return h[i] > h[j] }
func (h maxPriceHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *maxPriceHeap) Push(x any) {
	*h = append(*h, x.(uint64))
}

func (h *maxPriceHeap) Pop() any {
	old := *h
	n := len(old)
	price := old[n-1]
	*h = old[:n-1]
	return price
}

type minPriceHeap []uint64

func (h minPriceHeap) Len() int           { return len(h) }
func (h minPriceHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h minPriceHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *minPriceHeap) Push(x any) {
	*h = append(*h, x.(uint64))
}

func (h *minPriceHeap) Pop() any {
	old := *h
	n := len(old)
	price := old[n-1]
	*h = old[:n-1]
	return price
}
