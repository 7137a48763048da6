package requestsourcev1

import (
	"context"

	orderv1 "github.com/ajainuary/rusty-orderbook/internal/domain/order/v1"
)

// RequestSource defines the interface for reading validated requests from a
// stream. Next returns io.EOF when the source is exhausted; finite sources
// (request log files) do, Kafka sources do not.
type RequestSource interface {
	// Next reads the next request from the source.
	Next(ctx context.Context) (*orderv1.Request, error)
	// Close closes the source.
	Close() error
}
