package engine

import (
	"context"
	"io"
	"sync"
	"time"

	bookv1 "github.com/ajainuary/rusty-orderbook/internal/domain/book/v1"
	orderv1 "github.com/ajainuary/rusty-orderbook/internal/domain/order/v1"
	requestsourcev1 "github.com/ajainuary/rusty-orderbook/internal/domain/request-source/v1"
	snapshotv1 "github.com/ajainuary/rusty-orderbook/internal/domain/snapshot/v1"
	tradepublisherv1 "github.com/ajainuary/rusty-orderbook/internal/domain/trade-publisher/v1"
	"github.com/ajainuary/rusty-orderbook/internal/usecase/book"
	"github.com/ajainuary/rusty-orderbook/internal/usecase/render"
	"github.com/ajainuary/rusty-orderbook/internal/usecase/router"
	"github.com/ajainuary/rusty-orderbook/pkg/config"
	"github.com/ajainuary/rusty-orderbook/pkg/errors"
	"github.com/ajainuary/rusty-orderbook/pkg/logger"
	"github.com/ajainuary/rusty-orderbook/pkg/util"
	"go.uber.org/zap/zapcore"
)

// Engine drives the matching engine: it pulls requests from the configured
// source one at a time, dispatches them through the router, renders the book,
// and fans executed trades and periodic snapshots out to the optional
// publishers.
type Engine struct {
	book              *book.Book
	router            *router.Router
	source            requestsourcev1.RequestSource
	tradePublisher    tradepublisherv1.TradePublisher
	snapshotPublisher snapshotv1.Publisher
	logger            *logger.Logger
	config            *config.Config

	renderWriter     io.Writer
	snapshotInterval time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	done   chan struct{}
}

// NewEngine creates a new Engine with the provided dependencies. The trade
// and snapshot publishers may be nil when the corresponding fan-out is
// disabled.
func NewEngine(
	book *book.Book,
	router *router.Router,
	source requestsourcev1.RequestSource,
	tradePublisher tradepublisherv1.TradePublisher,
	snapshotPublisher snapshotv1.Publisher,
	logger *logger.Logger,
	config *config.Config,
) *Engine {
	return NewEngineWithOptions(book, router, source, tradePublisher, snapshotPublisher, logger, config, DefaultEngineOptions())
}

// NewEngineWithOptions creates a new engine with custom options.
func NewEngineWithOptions(
	book *book.Book,
	router *router.Router,
	source requestsourcev1.RequestSource,
	tradePublisher tradepublisherv1.TradePublisher,
	snapshotPublisher snapshotv1.Publisher,
	logger *logger.Logger,
	config *config.Config,
	options *Options,
) *Engine {
	return &Engine{
		book:              book,
		router:            router,
		source:            source,
		tradePublisher:    tradePublisher,
		snapshotPublisher: snapshotPublisher,
		logger:            logger,
		config:            config,

		renderWriter:     options.RenderWriter,
		snapshotInterval: options.SnapshotInterval,
		done:             make(chan struct{}),
	}
}

// Start launches the request processor and, when a snapshot publisher is
// configured, the snapshot manager.
func (e *Engine) Start(ctx context.Context) error {
	e.ctx, e.cancel = context.WithCancel(ctx)

	e.wg.Add(1)
	go e.runRequestProcessor()

	if e.snapshotPublisher != nil {
		e.wg.Add(1)
		go e.runSnapshotManager()
	}

	e.logger.Info("Engine started", logger.Field{
		Key:   "asset",
		Value: e.config.Asset,
	}, logger.Field{
		Key:   "mode",
		Value: e.config.Mode,
	})

	return nil
}

// Stop gracefully shuts down the engine.
func (e *Engine) Stop(ctx context.Context) error {
	if e.cancel != nil {
		e.cancel()
	}

	stopped := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(stopped)
	}()

	select {
	case <-stopped:
		e.logger.Info("Engine stopped gracefully")
		return nil
	case <-ctx.Done():
		e.logger.Warn("Engine stop timeout exceeded")
		return ctx.Err()
	}
}

// Done is closed once the request source is exhausted. Kafka sources never
// exhaust, so in stream mode this only closes on shutdown.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// Stats returns the router's request counters.
func (e *Engine) Stats() router.Stats {
	return e.router.Stats()
}

// Snapshot returns the current book state tagged with the asset and request
// sequence.
func (e *Engine) Snapshot() *snapshotv1.Snapshot {
	snapshot := e.book.Snapshot()
	snapshot.Asset = e.config.Asset
	snapshot.Sequence = e.router.Stats().Processed
	return snapshot
}

// runRequestProcessor pulls requests from the source until it is exhausted
// or the engine shuts down.
func (e *Engine) runRequestProcessor() {
	defer e.wg.Done()
	defer close(e.done)

	e.logger.Info("Starting request processor", logger.Field{
		Key:   "asset",
		Value: e.config.Asset,
	})

	for {
		select {
		case <-e.ctx.Done():
			e.logger.Info("Request processor shutting down")
			e.source.Close()
			return
		default:
			request, err := e.source.Next(e.ctx)
			if err == io.EOF {
				stats := e.router.Stats()
				e.logger.Info("Request source exhausted",
					logger.Field{Key: "processed", Value: stats.Processed},
					logger.Field{Key: "trades", Value: stats.Trades},
					logger.Field{Key: "duplicates", Value: stats.Duplicates},
					logger.Field{Key: "rejected", Value: stats.Rejected},
				)
				return
			}
			if err != nil {
				if e.ctx.Err() != nil {
					continue
				}
				e.logger.ErrorContext(e.ctx, err, logger.Field{
					Key:   "action",
					Value: "read_request",
				})
				// Simple backoff
				time.Sleep(100 * time.Millisecond)
				continue
			}

			e.processRequest(request)
		}
	}
}

// processRequest applies a single request and fans out its effects.
func (e *Engine) processRequest(request *orderv1.Request) {
	ctx := util.WithRequestID(e.ctx, "")

	e.logger.DebugContext(ctx, "Processing request",
		logger.Field{Key: "orderID", Value: request.OrderID},
		logger.Field{Key: "type", Value: request.Type},
	)

	trades, err := e.router.Dispatch(ctx, request)
	if err != nil {
		// corrupted book state, not a bad request
		e.logger.GetZap().Fatal("Invariant violation", zapcore.Field{
			Key:       "error",
			Type:      zapcore.ErrorType,
			Interface: err,
		})
	}

	for _, trade := range trades {
		e.logTrade(ctx, &trade)
		e.publishTrade(ctx, &trade)
	}

	if e.config.RenderBook {
		if err := render.Render(e.renderWriter, e.Snapshot()); err != nil {
			e.logger.ErrorContext(ctx, err, logger.Field{
				Key:   "action",
				Value: "render_book",
			})
		}
	}
}

// runSnapshotManager publishes the live book view on an interval.
func (e *Engine) runSnapshotManager() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.snapshotInterval)
	defer ticker.Stop()

	e.logger.Info("Starting snapshot manager")

	for {
		select {
		case <-e.ctx.Done():
			e.logger.Info("Snapshot manager shutting down")
			return
		case <-ticker.C:
			if err := e.snapshotPublisher.Publish(e.ctx, e.Snapshot()); err != nil {
				e.logger.ErrorContext(e.ctx, err, logger.Field{
					Key:   "action",
					Value: "publish_snapshot",
				})
			}
		}
	}
}

func (e *Engine) logTrade(ctx context.Context, trade *bookv1.Trade) {
	e.logger.InfoContext(ctx, "Trade executed",
		logger.Field{Key: "price", Value: trade.Price},
		logger.Field{Key: "quantity", Value: trade.Quantity},
		logger.Field{Key: "takerOrderID", Value: trade.TakerOrderID},
		logger.Field{Key: "makerOrderID", Value: trade.MakerOrderID},
		logger.Field{Key: "takerSide", Value: trade.TakerSide},
		logger.Field{Key: "makerFilled", Value: trade.MakerFilled},
	)
}

func (e *Engine) publishTrade(ctx context.Context, trade *bookv1.Trade) {
	if e.tradePublisher == nil {
		return
	}

	event := tradepublisherv1.CreateFromTrade(trade, e.config.Asset)
	if err := e.tradePublisher.PublishTrade(ctx, event); err != nil {
		e.logger.ErrorContext(ctx, errors.TracerFromError(err), logger.Field{
			Key:   "action",
			Value: "publish_trade",
		})
	}
}
