package tradepublisher

import (
	"context"

	tradepublisherv1 "github.com/ajainuary/rusty-orderbook/internal/domain/trade-publisher/v1"
	"github.com/ajainuary/rusty-orderbook/pkg/config"
	"github.com/ajainuary/rusty-orderbook/pkg/errors"
	"github.com/ajainuary/rusty-orderbook/pkg/logger"
	"github.com/segmentio/kafka-go"
)

// Publisher publishes executed trade events to a Kafka topic.
type Publisher struct {
	kafkaWriter *kafka.Writer
	logger      *logger.Logger
}

// NewPublisher creates a Kafka publisher for the trade topic.
func NewPublisher(config config.KafkaConfig, log *logger.Logger) *Publisher {
	kafkaWriter := kafka.NewWriter(kafka.WriterConfig{
		Brokers: config.Brokers,
		Topic:   config.TradeTopic,
	})

	return &Publisher{
		kafkaWriter: kafkaWriter,
		logger:      log,
	}
}

// PublishTrade publishes a single trade event to the Kafka topic.
func (p *Publisher) PublishTrade(ctx context.Context, event *tradepublisherv1.TradeEvent) error {
	msg := kafka.Message{
		Value: tradepublisherv1.ToBytes(event),
	}

	if err := p.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		p.logger.Error(err,
			logger.Field{Key: "tradeEvent", Value: event},
		)
		return errors.NewErrorDetails(err.Error(), string(errors.KafkaWriteError), "trade")
	}
	return nil
}

// Close closes the underlying Kafka writer.
func (p *Publisher) Close() error {
	return p.kafkaWriter.Close()
}
