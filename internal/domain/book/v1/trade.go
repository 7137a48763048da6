package bookv1

import (
	orderv1 "github.com/ajainuary/rusty-orderbook/internal/domain/order/v1"
)

// Trade represents a single fill between an incoming (taker) order and a
// resting (maker) order.
type Trade struct {
	TakerOrderID uint64       `json:"takerOrderID"`
	MakerOrderID uint64       `json:"makerOrderID"`
	TakerSide    orderv1.Side `json:"takerSide"`
	Price        uint64       `json:"price"`
	Quantity     uint64       `json:"quantity"`
	MakerFilled  bool         `json:"makerFilled"`
	Timestamp    int64        `json:"timestamp"`
}

// BuyOrderID returns the order id on the buy side of the trade.
func (t *Trade) BuyOrderID() uint64 {
	if t.TakerSide == orderv1.SideBuy {
		return t.TakerOrderID
	}
	return t.MakerOrderID
}

// SellOrderID returns the order id on the sell side of the trade.
func (t *Trade) SellOrderID() uint64 {
	if t.TakerSide == orderv1.SideSell {
		return t.TakerOrderID
	}
	return t.MakerOrderID
}
