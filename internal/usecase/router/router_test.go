package router

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	orderv1 "github.com/ajainuary/rusty-orderbook/internal/domain/order/v1"
	"github.com/ajainuary/rusty-orderbook/internal/usecase/book"
	"github.com/ajainuary/rusty-orderbook/pkg/errors"
	"github.com/ajainuary/rusty-orderbook/pkg/logger"
)

func newTestRouter(t *testing.T) *Router {
	t.Helper()
	log, err := logger.NewLogger(logger.WithLoggingLevel(logger.ErrorLevel))
	require.NoError(t, err)
	return NewRouter(book.NewBook(), log)
}

func createRequest(id uint64, side orderv1.Side, price, quantity uint64) *orderv1.Request {
	return &orderv1.Request{
		OrderID: id,
		Type:    orderv1.RequestTypeCreate,
		Content: orderv1.OrderContent{Side: side, Price: price, Quantity: quantity},
	}
}

func TestRouter_DispatchCreateAndMatch(t *testing.T) {
	r := newTestRouter(t)
	ctx := context.Background()

	trades, err := r.Dispatch(ctx, createRequest(1, orderv1.SideSell, 100, 10))
	require.NoError(t, err)
	assert.Empty(t, trades)

	trades, err = r.Dispatch(ctx, createRequest(2, orderv1.SideBuy, 100, 4))
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, uint64(4), trades[0].Quantity)

	stats := r.Stats()
	assert.Equal(t, int64(2), stats.Processed)
	assert.Equal(t, int64(1), stats.Trades)
	assert.Equal(t, int64(0), stats.Rejected)
}

func TestRouter_RejectionsDoNotStopProcessing(t *testing.T) {
	r := newTestRouter(t)
	ctx := context.Background()

	// Cancel of an unknown id is rejected but must not surface an error.
	_, err := r.Dispatch(ctx, &orderv1.Request{OrderID: 9, Type: orderv1.RequestTypeCancel})
	require.NoError(t, err)

	// Replace of an unknown id likewise.
	_, err = r.Dispatch(ctx, &orderv1.Request{
		OrderID: 9,
		Type:    orderv1.RequestTypeReplace,
		Content: orderv1.OrderContent{Side: orderv1.SideBuy, Price: 100, Quantity: 1},
	})
	require.NoError(t, err)

	// The book still accepts the next request.
	trades, err := r.Dispatch(ctx, createRequest(1, orderv1.SideBuy, 100, 5))
	require.NoError(t, err)
	assert.Empty(t, trades)

	stats := r.Stats()
	assert.Equal(t, int64(3), stats.Processed)
	assert.Equal(t, int64(2), stats.Rejected)
	assert.Equal(t, int64(0), stats.Duplicates)
}

func TestRouter_DuplicateCreateCounted(t *testing.T) {
	r := newTestRouter(t)
	ctx := context.Background()

	_, err := r.Dispatch(ctx, createRequest(1, orderv1.SideSell, 100, 10))
	require.NoError(t, err)
	_, err = r.Dispatch(ctx, createRequest(1, orderv1.SideSell, 100, 10))
	require.NoError(t, err)

	stats := r.Stats()
	assert.Equal(t, int64(1), stats.Duplicates)
	assert.Equal(t, int64(0), stats.Rejected)
}

func TestRouter_InvariantViolationPropagates(t *testing.T) {
	r := newTestRouter(t)
	ctx := context.Background()

	// Zero quantity should never survive parsing; the engine treats it as
	// corrupted input and the router must surface it.
	_, err := r.Dispatch(ctx, createRequest(1, orderv1.SideBuy, 100, 0))
	require.Error(t, err)
	assert.True(t, errors.InvariantViolationError.Is(err))

	_, err = r.Dispatch(ctx, &orderv1.Request{OrderID: 2, Type: "MODIFY"})
	require.Error(t, err)
	assert.True(t, errors.InvariantViolationError.Is(err))
}
