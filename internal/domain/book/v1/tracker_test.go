package bookv1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBidTracker_BestIsHighest(t *testing.T) {
	tracker := NewBidTracker()

	_, ok := tracker.Peek()
	assert.False(t, ok)

	tracker.Push(100)
	tracker.Push(105)
	tracker.Push(95)

	best, ok := tracker.Peek()
	require.True(t, ok)
	assert.Equal(t, uint64(105), best)
	assert.Equal(t, 3, tracker.Len())

	popped, ok := tracker.Pop()
	require.True(t, ok)
	assert.Equal(t, uint64(105), popped)

	best, _ = tracker.Peek()
	assert.Equal(t, uint64(100), best)
}

func TestAskTracker_BestIsLowest(t *testing.T) {
	tracker := NewAskTracker()

	tracker.Push(100)
	tracker.Push(105)
	tracker.Push(95)

	best, ok := tracker.Peek()
	require.True(t, ok)
	assert.Equal(t, uint64(95), best)

	popped, ok := tracker.Pop()
	require.True(t, ok)
	assert.Equal(t, uint64(95), popped)

	popped, ok = tracker.Pop()
	require.True(t, ok)
	assert.Equal(t, uint64(100), popped)

	popped, ok = tracker.Pop()
	require.True(t, ok)
	assert.Equal(t, uint64(105), popped)

	_, ok = tracker.Pop()
	assert.False(t, ok)
}

func TestTrackers_ToleratesStalePrices(t *testing.T) {
	// A price may be pushed again after its level was drained; consumers
	// validate on pop, so duplicates are harmless.
	tracker := NewAskTracker()
	tracker.Push(100)
	tracker.Push(100)

	first, ok := tracker.Pop()
	require.True(t, ok)
	second, ok := tracker.Pop()
	require.True(t, ok)
	assert.Equal(t, first, second)
	assert.Equal(t, 0, tracker.Len())
}
