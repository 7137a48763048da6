package snapshotv1

import (
	orderv1 "github.com/ajainuary/rusty-orderbook/internal/domain/order/v1"
)

// Snapshot represents the state of the order book at a specific point in time.
type Snapshot struct {
	Asset    string          `json:"asset"`
	Sequence int64           `json:"sequence"` // Number of requests processed so far
	Levels   []LevelSnapshot `json:"levels"`
	BestBid  *uint64         `json:"bestBid,omitempty"`
	BestAsk  *uint64         `json:"bestAsk,omitempty"`
}

// LevelSnapshot represents one price level and its queued orders in time
// priority order.
type LevelSnapshot struct {
	Side   orderv1.Side `json:"side"`
	Price  uint64       `json:"price"`
	Orders []LevelOrder `json:"orders"`
}

// LevelOrder represents a single queued order inside a level. Cancelled is
// set for ids still queued whose order is no longer live.
type LevelOrder struct {
	OrderID   uint64 `json:"orderID"`
	Quantity  uint64 `json:"quantity"`
	Cancelled bool   `json:"cancelled"`
}
