package ordertable

import (
	"fmt"
	"sync"

	orderv1 "github.com/ajainuary/rusty-orderbook/internal/domain/order/v1"
	"github.com/ajainuary/rusty-orderbook/pkg/errors"
)

// Table is the concurrent-safe mapping from order id to its current content,
// and the single source of truth for live quantity. An entry exists iff the
// order is currently resting with quantity > 0: reaching quantity zero always
// removes the entry, never retains it.
//
// Every compound operation is atomic per id, so a cancel racing a fill on the
// same order cannot double-consume quantity. All other book structures are
// owned by the single writer; this table alone supports concurrent readers.
type Table struct {
	mu     sync.RWMutex
	orders map[uint64]orderv1.OrderContent
}

// NewTable creates an empty order table.
func NewTable() *Table {
	return &Table{
		orders: make(map[uint64]orderv1.OrderContent),
	}
}

// Get returns a snapshot of the order's current content.
func (t *Table) Get(id uint64) (orderv1.OrderContent, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	content, ok := t.orders[id]
	return content, ok
}

// Insert inserts or overwrites the content for an order id. It is used only
// when a new order rests.
func (t *Table) Insert(id uint64, content orderv1.OrderContent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.orders[id] = content
}

// Remove removes the order and returns its last content.
func (t *Table) Remove(id uint64) (orderv1.OrderContent, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	content, ok := t.orders[id]
	if !ok {
		return orderv1.OrderContent{}, false
	}
	delete(t.orders, id)
	return content, true
}

// CompareAndRemove atomically removes the order if predicate holds for its
// current content, returning the removed content. If the order is not live
// or the predicate rejects it, the entry is left untouched.
func (t *Table) CompareAndRemove(id uint64, predicate func(orderv1.OrderContent) bool) (orderv1.OrderContent, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	content, ok := t.orders[id]
	if !ok || !predicate(content) {
		return orderv1.OrderContent{}, false
	}
	delete(t.orders, id)
	return content, true
}

// MutateQuantity overwrites the quantity of a live order in place. The new
// quantity must be positive; zero quantity means removal and must go through
// Remove or CompareAndRemove instead.
func (t *Table) MutateQuantity(id uint64, quantity uint64) error {
	if quantity == 0 {
		return errors.NewErrorDetails(
			fmt.Sprintf("refusing to retain order %d with zero quantity", id),
			string(errors.InvariantViolationError),
			"quantity",
		)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	content, ok := t.orders[id]
	if !ok {
		return errors.NewErrorDetails(
			fmt.Sprintf("order %d is not live", id),
			string(errors.OrderNotFoundError),
			"orderID",
		)
	}

	content.Quantity = quantity
	t.orders[id] = content
	return nil
}

// Len returns the number of live orders.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return len(t.orders)
}
