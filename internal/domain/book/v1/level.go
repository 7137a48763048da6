package bookv1

import (
	orderv1 "github.com/ajainuary/rusty-orderbook/internal/domain/order/v1"
)

// PriceLevel represents all resting liquidity at one exact price on one side
// of the book. Order ids are kept in arrival order, which is their time
// priority. An id may transiently remain queued after the order itself has
// been removed from the order table; such stale ids are discarded the next
// time the level is visited.
type PriceLevel struct {
	Price uint64
	Side  orderv1.Side

	ids []uint64
}

// NewPriceLevel creates an empty PriceLevel for the given price and side.
func NewPriceLevel(price uint64, side orderv1.Side) *PriceLevel {
	return &PriceLevel{
		Price: price,
		Side:  side,
		ids:   make([]uint64, 0, 4),
	}
}

// Append adds an order id at the back of the queue.
func (l *PriceLevel) Append(id uint64) {
	l.ids = append(l.ids, id)
}

// Front returns the order id with the highest time priority.
func (l *PriceLevel) Front() (uint64, bool) {
	if len(l.ids) == 0 {
		return 0, false
	}
	return l.ids[0], true
}

// PopFront removes and returns the order id with the highest time priority.
func (l *PriceLevel) PopFront() (uint64, bool) {
	if len(l.ids) == 0 {
		return 0, false
	}
	id := l.ids[0]
	l.ids = l.ids[1:]
	return id, true
}

// Len returns the number of queued order ids, stale ids included.
func (l *PriceLevel) Len() int {
	return len(l.ids)
}

// IsEmpty checks if the level has no queued order ids.
func (l *PriceLevel) IsEmpty() bool {
	return len(l.ids) == 0
}

// IDs returns a copy of the queued order ids in arrival order.
func (l *PriceLevel) IDs() []uint64 {
	ids := make([]uint64, len(l.ids))
	copy(ids, l.ids)
	return ids
}
