package router

import (
	"context"
	"sync"

	bookv1 "github.com/ajainuary/rusty-orderbook/internal/domain/book/v1"
	orderv1 "github.com/ajainuary/rusty-orderbook/internal/domain/order/v1"
	"github.com/ajainuary/rusty-orderbook/internal/usecase/book"
	"github.com/ajainuary/rusty-orderbook/pkg/errors"
	"github.com/ajainuary/rusty-orderbook/pkg/logger"
)

// Stats holds counters for processed requests.
type Stats struct {
	Processed  int64
	Trades     int64
	Duplicates int64
	Rejected   int64
}

// Router dispatches validated requests to the matching engine, strictly one
// at a time. Request-scoped rejections (duplicate create, unknown order,
// invalid replace) are logged and counted, and processing continues with the
// next request. Only invariant violations propagate to the caller; those are
// fatal, since they indicate corrupted state rather than a bad request.
type Router struct {
	book   *book.Book
	logger *logger.Logger

	mu    sync.RWMutex
	stats Stats
}

// NewRouter creates a router dispatching into the given book.
func NewRouter(book *book.Book, logger *logger.Logger) *Router {
	return &Router{
		book:   book,
		logger: logger,
	}
}

// Dispatch applies a single request to the book and returns the trades it
// produced. The returned error is non-nil only for invariant violations.
func (r *Router) Dispatch(ctx context.Context, request *orderv1.Request) ([]bookv1.Trade, error) {
	var (
		trades []bookv1.Trade
		err    error
	)

	switch request.Type {
	case orderv1.RequestTypeCreate:
		trades, err = r.book.Create(request.OrderID, request.Content)
	case orderv1.RequestTypeReplace:
		err = r.book.Replace(request.OrderID, request.Content)
	case orderv1.RequestTypeCancel:
		err = r.book.Cancel(request.OrderID)
	default:
		err = errors.NewErrorDetails(
			"unknown request type reached the router",
			string(errors.InvariantViolationError),
			"type",
		)
	}

	r.mu.Lock()
	r.stats.Processed++
	r.stats.Trades += int64(len(trades))
	r.mu.Unlock()

	if err == nil {
		return trades, nil
	}

	if errors.InvariantViolationError.Is(err) {
		return trades, err
	}

	r.recordRejection(ctx, request, err)
	return trades, nil
}

// Stats returns a copy of the current counters.
func (r *Router) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stats
}

func (r *Router) recordRejection(ctx context.Context, request *orderv1.Request, err error) {
	r.mu.Lock()
	if errors.DuplicateOrderError.Is(err) {
		r.stats.Duplicates++
	} else {
		r.stats.Rejected++
	}
	r.mu.Unlock()

	r.logger.WarnContext(ctx, "Request rejected",
		logger.Field{Key: "orderID", Value: request.OrderID},
		logger.Field{Key: "type", Value: request.Type},
		logger.Field{Key: "reason", Value: err.Error()},
	)
}
