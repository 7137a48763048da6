package tradepublisherv1

import (
	"encoding/json"
	"time"

	bookv1 "github.com/ajainuary/rusty-orderbook/internal/domain/book/v1"
)

// TradeEvent is the wire payload published for every executed fill.
type TradeEvent struct {
	Asset       string `json:"asset"`
	BuyOrderID  uint64 `json:"buyOrderID"`
	SellOrderID uint64 `json:"sellOrderID"`
	TakerSide   string `json:"takerSide"`
	Price       uint64 `json:"price"`
	Quantity    uint64 `json:"quantity"`
	Timestamp   int64  `json:"timestamp"`
}

// CreateFromTrade creates a trade event from an executed trade.
func CreateFromTrade(trade *bookv1.Trade, asset string) *TradeEvent {
	timestamp := trade.Timestamp
	if timestamp == 0 {
		timestamp = time.Now().UnixNano()
	}

	return &TradeEvent{
		Asset:       asset,
		BuyOrderID:  trade.BuyOrderID(),
		SellOrderID: trade.SellOrderID(),
		TakerSide:   string(trade.TakerSide),
		Price:       trade.Price,
		Quantity:    trade.Quantity,
		Timestamp:   timestamp,
	}
}

// ToBytes converts the trade event to a byte array.
func ToBytes(event *TradeEvent) []byte {
	data, err := json.Marshal(event)
	if err != nil {
		return nil
	}

	return data
}

// FromBytes converts a byte array to a trade event.
func FromBytes(data []byte) *TradeEvent {
	var event TradeEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil
	}
	return &event
}
