package orderv1

// Side represents which side of the book an order belongs to.
type Side string

const (
	// SideBuy represents a buy (bid) order.
	SideBuy Side = "buy"
	// SideSell represents a sell (ask) order.
	SideSell Side = "sell"
)

// Opposite returns the other side of the book.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

// OrderContent represents the economic terms of a limit order.
type OrderContent struct {
	Side     Side   `json:"side"`
	Price    uint64 `json:"price"`
	Quantity uint64 `json:"quantity"`
}

// IsBuy checks if the content is a buy (bid) order.
func (c OrderContent) IsBuy() bool {
	return c.Side == SideBuy
}

// IsSell checks if the content is a sell (ask) order.
func (c OrderContent) IsSell() bool {
	return c.Side == SideSell
}

// Crosses reports whether an incoming order at this content's limit price
// trades against the given best opposite price.
func (c OrderContent) Crosses(oppositeBest uint64) bool {
	if c.IsBuy() {
		return oppositeBest <= c.Price
	}
	return oppositeBest >= c.Price
}
