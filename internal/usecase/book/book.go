package book

import (
	"fmt"
	"sort"
	"sync"
	"time"

	bookv1 "github.com/ajainuary/rusty-orderbook/internal/domain/book/v1"
	orderv1 "github.com/ajainuary/rusty-orderbook/internal/domain/order/v1"
	snapshotv1 "github.com/ajainuary/rusty-orderbook/internal/domain/snapshot/v1"
	"github.com/ajainuary/rusty-orderbook/internal/usecase/ordertable"
	"github.com/ajainuary/rusty-orderbook/pkg/errors"
)

// Book is a single-asset limit order book matching engine. It owns the
// per-side price level indices and best-price trackers, and delegates live
// order state to the order table.
//
// All mutating operations are applied by a single logical writer, one request
// at a time. Snapshot may be called concurrently with the writer.
type Book struct {
	mu    sync.RWMutex
	table *ordertable.Table

	bidLevels map[uint64]*bookv1.PriceLevel
	askLevels map[uint64]*bookv1.PriceLevel
	bids      *bookv1.BidTracker
	asks      *bookv1.AskTracker
}

// NewBook creates an empty order book.
func NewBook() *Book {
	return &Book{
		table:     ordertable.NewTable(),
		bidLevels: make(map[uint64]*bookv1.PriceLevel),
		askLevels: make(map[uint64]*bookv1.PriceLevel),
		bids:      bookv1.NewBidTracker(),
		asks:      bookv1.NewAskTracker(),
	}
}

// Create processes a CREATE request: the incoming order first crosses against
// the opposite side of the book, and any unfilled remainder rests at its
// limit price. A create for an id that is still live is an idempotent no-op
// reported as a duplicate_order error.
func (b *Book) Create(id uint64, content orderv1.OrderContent) ([]bookv1.Trade, error) {
	if err := validateContent(content); err != nil {
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, live := b.table.Get(id); live {
		return nil, errors.NewErrorDetails(
			fmt.Sprintf("create for live order %d ignored", id),
			string(errors.DuplicateOrderError),
			"orderID",
		)
	}

	trades, err := b.cross(id, &content)
	if err != nil {
		return trades, err
	}

	if content.Quantity == 0 {
		// fully filled, nothing rests
		return trades, nil
	}

	b.table.Insert(id, content)

	levels := b.sideLevels(content.Side)
	level, ok := levels[content.Price]
	if !ok {
		level = bookv1.NewPriceLevel(content.Price, content.Side)
		levels[content.Price] = level
		b.pushBest(content.Side, content.Price)
	}
	level.Append(id)

	return trades, nil
}

// Replace overwrites the quantity of a live order in place, keeping its
// position in the level queue. Replaces that would change the order's side
// or price are rejected with invalid_replace and leave the order untouched.
func (b *Book) Replace(id uint64, content orderv1.OrderContent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	current, live := b.table.Get(id)
	if !live {
		return errors.NewErrorDetails(
			fmt.Sprintf("replace for order %d: order is not live", id),
			string(errors.OrderNotFoundError),
			"orderID",
		)
	}

	if content.Side != current.Side {
		return errors.NewErrorDetails(
			fmt.Sprintf("replace for order %d: side change from %s to %s is unsupported", id, current.Side, content.Side),
			string(errors.InvalidReplaceError),
			"side",
		)
	}

	if content.Price != current.Price {
		return errors.NewErrorDetails(
			fmt.Sprintf("replace for order %d: price change from %d to %d is unsupported", id, current.Price, content.Price),
			string(errors.InvalidReplaceError),
			"price",
		)
	}

	if content.Quantity == 0 {
		return errors.NewErrorDetails(
			fmt.Sprintf("replace for order %d: quantity must be positive", id),
			string(errors.InvalidReplaceError),
			"quantity",
		)
	}

	return b.table.MutateQuantity(id, content.Quantity)
}

// Cancel removes a live order from the order table. Its id stays queued in
// its price level and its price may stay in the tracker; both are reconciled
// lazily the next time a crossing visits that level.
func (b *Book) Cancel(id uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.table.Remove(id); !ok {
		return errors.NewErrorDetails(
			fmt.Sprintf("cancel for order %d: order is not live", id),
			string(errors.OrderNotFoundError),
			"orderID",
		)
	}

	return nil
}

// cross runs the incoming order against the opposite side of the book under
// strict price-time priority and returns the executed trades. The incoming
// content's quantity is reduced in place, reaching zero when fully filled.
func (b *Book) cross(takerID uint64, content *orderv1.OrderContent) ([]bookv1.Trade, error) {
	var trades []bookv1.Trade

	levels := b.oppositeLevels(content.Side)

	for content.Quantity > 0 {
		best, ok := b.peekOppositeBest(content.Side)
		if !ok || !content.Crosses(best) {
			break
		}

		level, ok := levels[best]
		if !ok {
			// tracker entry outlived its level, discard and retry
			b.popOppositeBest(content.Side)
			continue
		}

		for content.Quantity > 0 && !level.IsEmpty() {
			makerID, _ := level.Front()

			makerContent, live := b.table.Get(makerID)
			if !live {
				// cancelled earlier, clean up and move on
				level.PopFront()
				continue
			}

			removed, ok := b.table.CompareAndRemove(makerID, func(c orderv1.OrderContent) bool {
				return c.Quantity <= content.Quantity
			})
			if ok {
				// resting order fully consumed
				content.Quantity -= removed.Quantity
				level.PopFront()
				trades = append(trades, newTrade(takerID, makerID, content.Side, best, removed.Quantity, true))
				continue
			}

			// resting order outsizes the incoming remainder: partial fill,
			// the maker keeps its queue position and the taker is done
			filled := content.Quantity
			if err := b.table.MutateQuantity(makerID, makerContent.Quantity-filled); err != nil {
				return trades, errors.NewTracer("failed to apply partial fill").Wrap(err)
			}
			trades = append(trades, newTrade(takerID, makerID, content.Side, best, filled, false))
			content.Quantity = 0
		}

		if level.IsEmpty() {
			delete(levels, best)
			b.popOppositeBest(content.Side)
		}
	}

	return trades, nil
}

// Snapshot returns the current book state: every live price level with its
// queued orders in time priority (stale ids flagged cancelled), and the best
// price on each side. Bid levels come first, best price outward.
func (b *Book) Snapshot() *snapshotv1.Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	snap := &snapshotv1.Snapshot{}

	bidPrices := sortedPrices(b.bidLevels, true)
	for _, price := range bidPrices {
		snap.Levels = append(snap.Levels, b.levelSnapshot(b.bidLevels[price]))
	}

	askPrices := sortedPrices(b.askLevels, false)
	for _, price := range askPrices {
		snap.Levels = append(snap.Levels, b.levelSnapshot(b.askLevels[price]))
	}

	if best, ok := b.bids.Peek(); ok {
		snap.BestBid = &best
	}
	if best, ok := b.asks.Peek(); ok {
		snap.BestAsk = &best
	}

	return snap
}

// LiveOrders returns the number of currently live orders.
func (b *Book) LiveOrders() int {
	return b.table.Len()
}

// Order returns a snapshot of a live order's content. It is safe to call
// concurrently with the writer.
func (b *Book) Order(id uint64) (orderv1.OrderContent, bool) {
	return b.table.Get(id)
}

func (b *Book) levelSnapshot(level *bookv1.PriceLevel) snapshotv1.LevelSnapshot {
	levelSnap := snapshotv1.LevelSnapshot{
		Side:  level.Side,
		Price: level.Price,
	}

	for _, id := range level.IDs() {
		content, live := b.table.Get(id)
		levelSnap.Orders = append(levelSnap.Orders, snapshotv1.LevelOrder{
			OrderID:   id,
			Quantity:  content.Quantity,
			Cancelled: !live,
		})
	}

	return levelSnap
}

func (b *Book) sideLevels(side orderv1.Side) map[uint64]*bookv1.PriceLevel {
	if side == orderv1.SideBuy {
		return b.bidLevels
	}
	return b.askLevels
}

func (b *Book) oppositeLevels(side orderv1.Side) map[uint64]*bookv1.PriceLevel {
	return b.sideLevels(side.Opposite())
}

func (b *Book) pushBest(side orderv1.Side, price uint64) {
	if side == orderv1.SideBuy {
		b.bids.Push(price)
		return
	}
	b.asks.Push(price)
}

func (b *Book) peekOppositeBest(side orderv1.Side) (uint64, bool) {
	if side == orderv1.SideBuy {
		return b.asks.Peek()
	}
	return b.bids.Peek()
}

func (b *Book) popOppositeBest(side orderv1.Side) (uint64, bool) {
	if side == orderv1.SideBuy {
		return b.asks.Pop()
	}
	return b.bids.Pop()
}

// validateContent rejects content that must never reach the matching path.
// Hitting this means an upstream validation bug, so the error carries the
// invariant_violation code and is fatal to the caller.
func validateContent(content orderv1.OrderContent) error {
	if content.Side != orderv1.SideBuy && content.Side != orderv1.SideSell {
		return errors.NewErrorDetails(
			fmt.Sprintf("order content with side %q reached the matching path", content.Side),
			string(errors.InvariantViolationError),
			"side",
		)
	}
	if content.Quantity == 0 {
		return errors.NewErrorDetails(
			"order content with zero quantity reached the matching path",
			string(errors.InvariantViolationError),
			"quantity",
		)
	}
	return nil
}

func newTrade(takerID, makerID uint64, takerSide orderv1.Side, price, quantity uint64, makerFilled bool) bookv1.Trade {
	return bookv1.Trade{
		TakerOrderID: takerID,
		MakerOrderID: makerID,
		TakerSide:    takerSide,
		Price:        price,
		Quantity:     quantity,
		MakerFilled:  makerFilled,
		Timestamp:    time.Now().UnixNano(),
	}
}

func sortedPrices(levels map[uint64]*bookv1.PriceLevel, descending bool) []uint64 {
	prices := make([]uint64, 0, len(levels))
	for price := range levels {
		prices = append(prices, price)
	}
	sort.Slice(prices, func(i, j int) bool {
		if descending {
			return prices[i] > prices[j]
		}
		return prices[i] < prices[j]
	})
	return prices
}
