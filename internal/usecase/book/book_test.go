package book

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderv1 "github.com/ajainuary/rusty-orderbook/internal/domain/order/v1"
	"github.com/ajainuary/rusty-orderbook/pkg/errors"
)

func limitBuy(price, quantity uint64) orderv1.OrderContent {
	return orderv1.OrderContent{Side: orderv1.SideBuy, Price: price, Quantity: quantity}
}

func limitSell(price, quantity uint64) orderv1.OrderContent {
	return orderv1.OrderContent{Side: orderv1.SideSell, Price: price, Quantity: quantity}
}

func TestNewBook(t *testing.T) {
	b := NewBook()

	assert.NotNil(t, b)
	assert.Equal(t, 0, b.LiveOrders())

	snapshot := b.Snapshot()
	assert.Empty(t, snapshot.Levels)
	assert.Nil(t, snapshot.BestBid)
	assert.Nil(t, snapshot.BestAsk)
}

// Test 1: a sell with no opposing bids rests untouched.
func TestBook_CreateRestsWithoutCrossing(t *testing.T) {
	b := NewBook()

	trades, err := b.Create(1, limitSell(100, 10))
	require.NoError(t, err)
	assert.Empty(t, trades)

	content, ok := b.Order(1)
	require.True(t, ok)
	assert.Equal(t, uint64(10), content.Quantity)

	snapshot := b.Snapshot()
	require.NotNil(t, snapshot.BestAsk)
	assert.Equal(t, uint64(100), *snapshot.BestAsk)
	assert.Nil(t, snapshot.BestBid)

	require.Len(t, snapshot.Levels, 1)
	level := snapshot.Levels[0]
	assert.Equal(t, orderv1.SideSell, level.Side)
	assert.Equal(t, uint64(100), level.Price)
	require.Len(t, level.Orders, 1)
	assert.Equal(t, uint64(1), level.Orders[0].OrderID)
}

// Test 2: a small buy partially fills the resting sell and never rests.
func TestBook_CreatePartialFillOfMaker(t *testing.T) {
	b := NewBook()

	_, err := b.Create(1, limitSell(100, 10))
	require.NoError(t, err)

	trades, err := b.Create(2, limitBuy(100, 4))
	require.NoError(t, err)
	require.Len(t, trades, 1)

	trade := trades[0]
	assert.Equal(t, uint64(2), trade.TakerOrderID)
	assert.Equal(t, uint64(1), trade.MakerOrderID)
	assert.Equal(t, orderv1.SideBuy, trade.TakerSide)
	assert.Equal(t, uint64(100), trade.Price)
	assert.Equal(t, uint64(4), trade.Quantity)
	assert.False(t, trade.MakerFilled)

	// Maker keeps its slot with the reduced quantity, taker never rests.
	maker, ok := b.Order(1)
	require.True(t, ok)
	assert.Equal(t, uint64(6), maker.Quantity)

	_, ok = b.Order(2)
	assert.False(t, ok)

	snapshot := b.Snapshot()
	require.NotNil(t, snapshot.BestAsk)
	assert.Equal(t, uint64(100), *snapshot.BestAsk)
	assert.Nil(t, snapshot.BestBid)
}

// Test 3: a large buy consumes the maker fully and rests the remainder.
func TestBook_CreateFullFillAndRestRemainder(t *testing.T) {
	b := NewBook()

	_, err := b.Create(1, limitSell(100, 10))
	require.NoError(t, err)
	_, err = b.Create(2, limitBuy(100, 4))
	require.NoError(t, err)

	trades, err := b.Create(3, limitBuy(100, 10))
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, uint64(6), trades[0].Quantity)
	assert.True(t, trades[0].MakerFilled)

	// Maker is gone, taker remainder rests as the new best bid.
	_, ok := b.Order(1)
	assert.False(t, ok)

	rest, ok := b.Order(3)
	require.True(t, ok)
	assert.Equal(t, uint64(4), rest.Quantity)
	assert.Equal(t, orderv1.SideBuy, rest.Side)

	snapshot := b.Snapshot()
	assert.Nil(t, snapshot.BestAsk)
	require.NotNil(t, snapshot.BestBid)
	assert.Equal(t, uint64(100), *snapshot.BestBid)

	require.Len(t, snapshot.Levels, 1)
	require.Len(t, snapshot.Levels[0].Orders, 1)
	assert.Equal(t, uint64(3), snapshot.Levels[0].Orders[0].OrderID)
}

// Test 4 and 5: a quantity-only replace succeeds, a price move is rejected.
func TestBook_Replace(t *testing.T) {
	b := NewBook()

	_, err := b.Create(3, limitBuy(100, 4))
	require.NoError(t, err)

	err = b.Replace(3, limitBuy(100, 2))
	require.NoError(t, err)

	content, ok := b.Order(3)
	require.True(t, ok)
	assert.Equal(t, uint64(2), content.Quantity)

	// Price moves are rejected and leave the resting order untouched.
	err = b.Replace(3, limitBuy(90, 2))
	require.Error(t, err)
	assert.True(t, errors.InvalidReplaceError.Is(err))

	content, ok = b.Order(3)
	require.True(t, ok)
	assert.Equal(t, uint64(2), content.Quantity)
	assert.Equal(t, uint64(100), content.Price)
}

func TestBook_ReplaceRejectsSideChange(t *testing.T) {
	b := NewBook()

	_, err := b.Create(1, limitBuy(100, 5))
	require.NoError(t, err)

	err = b.Replace(1, limitSell(100, 5))
	require.Error(t, err)
	assert.True(t, errors.InvalidReplaceError.Is(err))
}

func TestBook_ReplaceRejectsZeroQuantity(t *testing.T) {
	b := NewBook()

	_, err := b.Create(1, limitBuy(100, 5))
	require.NoError(t, err)

	err = b.Replace(1, limitBuy(100, 0))
	require.Error(t, err)
	assert.True(t, errors.InvalidReplaceError.Is(err))

	content, ok := b.Order(1)
	require.True(t, ok)
	assert.Equal(t, uint64(5), content.Quantity)
}

func TestBook_ReplaceUnknownID(t *testing.T) {
	b := NewBook()

	err := b.Replace(42, limitBuy(100, 2))
	require.Error(t, err)
	assert.True(t, errors.OrderNotFoundError.Is(err))
}

// Test 6: a cancelled id left in its queue is skipped by a later cross.
func TestBook_CancelLeavesStaleIDThatCrossSkips(t *testing.T) {
	b := NewBook()

	_, err := b.Create(3, limitBuy(100, 2))
	require.NoError(t, err)

	err = b.Cancel(3)
	require.NoError(t, err)

	_, ok := b.Order(3)
	assert.False(t, ok)

	// A sell crossing price 100 finds only the stale id and rests in full.
	trades, err := b.Create(4, limitSell(100, 5))
	require.NoError(t, err)
	assert.Empty(t, trades)

	content, ok := b.Order(4)
	require.True(t, ok)
	assert.Equal(t, uint64(5), content.Quantity)

	snapshot := b.Snapshot()
	require.NotNil(t, snapshot.BestAsk)
	assert.Equal(t, uint64(100), *snapshot.BestAsk)
	assert.Nil(t, snapshot.BestBid)
}

func TestBook_CancelUnknownID(t *testing.T) {
	b := NewBook()

	err := b.Cancel(7)
	require.Error(t, err)
	assert.True(t, errors.OrderNotFoundError.Is(err))
}

func TestBook_DuplicateCreateIsIdempotent(t *testing.T) {
	b := NewBook()

	_, err := b.Create(1, limitSell(100, 10))
	require.NoError(t, err)

	trades, err := b.Create(1, limitSell(100, 10))
	require.Error(t, err)
	assert.True(t, errors.DuplicateOrderError.Is(err))
	assert.Empty(t, trades)

	// Exactly one resting order, with the original quantity.
	assert.Equal(t, 1, b.LiveOrders())
	content, ok := b.Order(1)
	require.True(t, ok)
	assert.Equal(t, uint64(10), content.Quantity)
}

func TestBook_IDReusableAfterTermination(t *testing.T) {
	b := NewBook()

	_, err := b.Create(1, limitSell(100, 10))
	require.NoError(t, err)
	err = b.Cancel(1)
	require.NoError(t, err)

	// The duplicate check is "is currently live", so a terminated id can
	// be created again.
	trades, err := b.Create(1, limitBuy(90, 3))
	require.NoError(t, err)
	assert.Empty(t, trades)

	content, ok := b.Order(1)
	require.True(t, ok)
	assert.Equal(t, orderv1.SideBuy, content.Side)
	assert.Equal(t, uint64(90), content.Price)
}

func TestBook_CreateRejectsInvalidContent(t *testing.T) {
	b := NewBook()

	_, err := b.Create(1, limitBuy(100, 0))
	require.Error(t, err)
	assert.True(t, errors.InvariantViolationError.Is(err))

	_, err = b.Create(2, orderv1.OrderContent{Side: "hold", Price: 100, Quantity: 1})
	require.Error(t, err)
	assert.True(t, errors.InvariantViolationError.Is(err))

	assert.Equal(t, 0, b.LiveOrders())
}

func TestBook_PriceTimePriority(t *testing.T) {
	b := NewBook()

	// Two sells at the same price; the earlier one must fill first.
	_, err := b.Create(1, limitSell(100, 5))
	require.NoError(t, err)
	_, err = b.Create(2, limitSell(100, 5))
	require.NoError(t, err)

	trades, err := b.Create(3, limitBuy(100, 5))
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, uint64(1), trades[0].MakerOrderID)

	_, ok := b.Order(1)
	assert.False(t, ok)
	remaining, ok := b.Order(2)
	require.True(t, ok)
	assert.Equal(t, uint64(5), remaining.Quantity)
}

func TestBook_PricePriorityAcrossLevels(t *testing.T) {
	b := NewBook()

	_, err := b.Create(1, limitSell(105, 5))
	require.NoError(t, err)
	_, err = b.Create(2, limitSell(100, 5))
	require.NoError(t, err)
	_, err = b.Create(3, limitSell(110, 5))
	require.NoError(t, err)

	// A buy crossing two levels must exhaust the best ask before moving
	// to the next one, and never reach the level above its limit.
	trades, err := b.Create(4, limitBuy(105, 8))
	require.NoError(t, err)
	require.Len(t, trades, 2)

	assert.Equal(t, uint64(2), trades[0].MakerOrderID)
	assert.Equal(t, uint64(100), trades[0].Price)
	assert.Equal(t, uint64(5), trades[0].Quantity)

	assert.Equal(t, uint64(1), trades[1].MakerOrderID)
	assert.Equal(t, uint64(105), trades[1].Price)
	assert.Equal(t, uint64(3), trades[1].Quantity)

	// The 110 ask is untouched and the taker never rests.
	untouched, ok := b.Order(3)
	require.True(t, ok)
	assert.Equal(t, uint64(5), untouched.Quantity)
	_, ok = b.Order(4)
	assert.False(t, ok)
}

func TestBook_NoPriceViolation(t *testing.T) {
	b := NewBook()

	_, err := b.Create(1, limitSell(105, 5))
	require.NoError(t, err)

	// A buy below the best ask must not trade at all.
	trades, err := b.Create(2, limitBuy(100, 5))
	require.NoError(t, err)
	assert.Empty(t, trades)

	// Both rest on their own sides at the same numeric distance.
	snapshot := b.Snapshot()
	require.NotNil(t, snapshot.BestBid)
	require.NotNil(t, snapshot.BestAsk)
	assert.Equal(t, uint64(100), *snapshot.BestBid)
	assert.Equal(t, uint64(105), *snapshot.BestAsk)
}

func TestBook_StaleBidLevelCoexistsWithAsks(t *testing.T) {
	b := NewBook()

	// Bid and ask levels live in separate indices, so a cancelled bid
	// level can linger while asks rest, even at nearby prices.
	_, err := b.Create(1, limitBuy(100, 5))
	require.NoError(t, err)
	err = b.Cancel(1)
	require.NoError(t, err)

	// A sell at 105 does not cross the stale bid at 100, so nothing
	// reconciles it.
	_, err = b.Create(2, limitSell(105, 5))
	require.NoError(t, err)

	snapshot := b.Snapshot()
	require.NotNil(t, snapshot.BestAsk)
	assert.Equal(t, uint64(105), *snapshot.BestAsk)
	require.NotNil(t, snapshot.BestBid)
	assert.Equal(t, uint64(100), *snapshot.BestBid)

	require.Len(t, snapshot.Levels, 2)
	assert.Equal(t, orderv1.SideBuy, snapshot.Levels[0].Side)
	assert.True(t, snapshot.Levels[0].Orders[0].Cancelled)
	assert.Equal(t, orderv1.SideSell, snapshot.Levels[1].Side)
	assert.False(t, snapshot.Levels[1].Orders[0].Cancelled)
}

func TestBook_QuantityConservation(t *testing.T) {
	b := NewBook()

	_, err := b.Create(1, limitSell(100, 7))
	require.NoError(t, err)
	_, err = b.Create(2, limitSell(101, 5))
	require.NoError(t, err)

	restingBefore := uint64(7 + 5)
	incoming := uint64(9)

	trades, err := b.Create(3, limitBuy(101, incoming))
	require.NoError(t, err)

	var traded uint64
	for _, trade := range trades {
		traded += trade.Quantity
	}

	var restingAfter uint64
	for _, id := range []uint64{1, 2, 3} {
		if content, ok := b.Order(id); ok && content.IsSell() {
			restingAfter += content.Quantity
		}
	}

	// Whatever the taker consumed is exactly what the makers lost.
	assert.Equal(t, incoming, traded)
	assert.Equal(t, restingBefore-traded, restingAfter)
}

func TestBook_CrossConsumesMultipleOrdersInLevel(t *testing.T) {
	b := NewBook()

	_, err := b.Create(1, limitSell(100, 3))
	require.NoError(t, err)
	_, err = b.Create(2, limitSell(100, 3))
	require.NoError(t, err)
	_, err = b.Create(3, limitSell(100, 3))
	require.NoError(t, err)

	trades, err := b.Create(4, limitBuy(100, 7))
	require.NoError(t, err)
	require.Len(t, trades, 3)

	assert.Equal(t, uint64(1), trades[0].MakerOrderID)
	assert.True(t, trades[0].MakerFilled)
	assert.Equal(t, uint64(2), trades[1].MakerOrderID)
	assert.True(t, trades[1].MakerFilled)
	assert.Equal(t, uint64(3), trades[2].MakerOrderID)
	assert.Equal(t, uint64(1), trades[2].Quantity)
	assert.False(t, trades[2].MakerFilled)

	last, ok := b.Order(3)
	require.True(t, ok)
	assert.Equal(t, uint64(2), last.Quantity)
}

func TestBook_SellTakerCrossesBids(t *testing.T) {
	b := NewBook()

	_, err := b.Create(1, limitBuy(100, 4))
	require.NoError(t, err)
	_, err = b.Create(2, limitBuy(99, 4))
	require.NoError(t, err)

	trades, err := b.Create(3, limitSell(99, 6))
	require.NoError(t, err)
	require.Len(t, trades, 2)

	assert.Equal(t, orderv1.SideSell, trades[0].TakerSide)
	assert.Equal(t, uint64(1), trades[0].MakerOrderID)
	assert.Equal(t, uint64(100), trades[0].Price)
	assert.Equal(t, uint64(4), trades[0].Quantity)

	assert.Equal(t, uint64(2), trades[1].MakerOrderID)
	assert.Equal(t, uint64(99), trades[1].Price)
	assert.Equal(t, uint64(2), trades[1].Quantity)

	assert.Equal(t, uint64(3), trades[0].SellOrderID())
	assert.Equal(t, uint64(1), trades[0].BuyOrderID())
}

func TestBook_SnapshotMarksStaleIDs(t *testing.T) {
	b := NewBook()

	_, err := b.Create(1, limitBuy(100, 5))
	require.NoError(t, err)
	_, err = b.Create(2, limitBuy(100, 5))
	require.NoError(t, err)

	err = b.Cancel(1)
	require.NoError(t, err)

	snapshot := b.Snapshot()
	require.Len(t, snapshot.Levels, 1)
	require.Len(t, snapshot.Levels[0].Orders, 2)

	assert.True(t, snapshot.Levels[0].Orders[0].Cancelled)
	assert.Equal(t, uint64(1), snapshot.Levels[0].Orders[0].OrderID)
	assert.False(t, snapshot.Levels[0].Orders[1].Cancelled)
	assert.Equal(t, uint64(5), snapshot.Levels[0].Orders[1].Quantity)
}

func TestBook_SnapshotLevelOrdering(t *testing.T) {
	b := NewBook()

	_, err := b.Create(1, limitBuy(98, 1))
	require.NoError(t, err)
	_, err = b.Create(2, limitBuy(99, 1))
	require.NoError(t, err)
	_, err = b.Create(3, limitSell(101, 1))
	require.NoError(t, err)
	_, err = b.Create(4, limitSell(102, 1))
	require.NoError(t, err)

	snapshot := b.Snapshot()
	require.Len(t, snapshot.Levels, 4)

	// Bids descending, then asks ascending.
	assert.Equal(t, orderv1.SideBuy, snapshot.Levels[0].Side)
	assert.Equal(t, uint64(99), snapshot.Levels[0].Price)
	assert.Equal(t, uint64(98), snapshot.Levels[1].Price)
	assert.Equal(t, orderv1.SideSell, snapshot.Levels[2].Side)
	assert.Equal(t, uint64(101), snapshot.Levels[2].Price)
	assert.Equal(t, uint64(102), snapshot.Levels[3].Price)
}

func TestBook_ConcurrentSnapshotDuringMatching(t *testing.T) {
	b := NewBook()

	for i := uint64(1); i <= 50; i++ {
		_, err := b.Create(i, limitSell(100+i, 10))
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	done := make(chan struct{})

	// Readers take snapshots while the single writer keeps matching.
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				snapshot := b.Snapshot()
				for _, level := range snapshot.Levels {
					for _, o := range level.Orders {
						if !o.Cancelled {
							assert.Greater(t, o.Quantity, uint64(0))
						}
					}
				}
			}
		}()
	}

	for i := uint64(51); i <= 110; i++ {
		_, err := b.Create(i, limitBuy(200, 10))
		require.NoError(t, err)
	}
	close(done)
	wg.Wait()

	snapshot := b.Snapshot()
	assert.Nil(t, snapshot.BestAsk)
	require.NotNil(t, snapshot.BestBid)
	assert.Equal(t, uint64(200), *snapshot.BestBid)
}
