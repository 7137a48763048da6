package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	app "github.com/ajainuary/rusty-orderbook/internal/app/engine"
	requestsourcev1 "github.com/ajainuary/rusty-orderbook/internal/domain/request-source/v1"
	snapshotv1 "github.com/ajainuary/rusty-orderbook/internal/domain/snapshot/v1"
	tradepublisherv1 "github.com/ajainuary/rusty-orderbook/internal/domain/trade-publisher/v1"
	"github.com/ajainuary/rusty-orderbook/internal/usecase/book"
	orderreader "github.com/ajainuary/rusty-orderbook/internal/usecase/order-reader"
	"github.com/ajainuary/rusty-orderbook/internal/usecase/requestlog"
	"github.com/ajainuary/rusty-orderbook/internal/usecase/router"
	"github.com/ajainuary/rusty-orderbook/internal/usecase/snapshot"
	tradepublisher "github.com/ajainuary/rusty-orderbook/internal/usecase/trade-publisher"
	"github.com/ajainuary/rusty-orderbook/pkg/config"
	"github.com/ajainuary/rusty-orderbook/pkg/logger"
	"github.com/ajainuary/rusty-orderbook/pkg/redis"
)

var cfg *config.Config
var log *logger.Logger

func init() {
	cfg = &config.Config{}
	if err := config.Load(cfg); err != nil {
		panic(err)
	}

	l, err := logger.NewLogger()
	if err != nil {
		panic(err)
	}

	log = l
}

func main() {
	input := flag.String("input", "", "request log file (overrides INPUT_FILE)")
	flag.Parse()
	if *input != "" {
		cfg.InputFile = *input
		cfg.Mode = config.ModeReplay
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	source, err := newRequestSource()
	if err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "open_request_source",
		})
		return
	}
	defer source.Close()

	var tradePublisher tradepublisherv1.TradePublisher
	if cfg.Kafka.PublishTrades {
		tradePublisher = tradepublisher.NewPublisher(cfg.Kafka, log)
	}

	var snapshotPublisher snapshotv1.Publisher
	var rclient redis.Client
	if cfg.Snapshot.Enabled {
		rclient = redis.NewClient(log, &cfg.Redis)
		if err := rclient.Connect(ctx); err != nil {
			log.Error(err, logger.Field{
				Key:   "action",
				Value: "connect_redis",
			})
			return
		}
		snapshotPublisher = snapshot.NewSnapshotStore(rclient, cfg.Asset, log)
	}

	ob := book.NewBook()
	rt := router.NewRouter(ob, log)

	options := app.DefaultEngineOptions()
	options.SnapshotInterval = cfg.Snapshot.Interval
	engine := app.NewEngineWithOptions(ob, rt, source, tradePublisher, snapshotPublisher, log, cfg, options)

	if err := engine.Start(ctx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "start_engine",
		})
		return
	}

	select {
	case <-engine.Done():
		log.Info("Request source drained")
	case sig := <-sigChan:
		log.Info("Received shutdown signal", logger.Field{
			Key:   "signal",
			Value: sig.String(),
		})
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := engine.Stop(shutdownCtx); err != nil {
		log.Error(err, logger.Field{
			Key:   "action",
			Value: "stop_engine",
		})
	}

	if rclient != nil {
		if err := rclient.Disconnect(shutdownCtx); err != nil {
			log.Error(err, logger.Field{
				Key:   "action",
				Value: "disconnect_redis",
			})
		}
	}

	log.Info("Engine shutdown complete")
}

func newRequestSource() (requestsourcev1.RequestSource, error) {
	switch cfg.Mode {
	case config.ModeStream:
		return orderreader.NewReader(cfg.Kafka, log), nil
	default:
		return requestlog.NewFileSource(cfg.InputFile, log)
	}
}
