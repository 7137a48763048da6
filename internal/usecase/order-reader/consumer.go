package orderreader

import (
	"context"
	"encoding/json"

	orderv1 "github.com/ajainuary/rusty-orderbook/internal/domain/order/v1"
	"github.com/ajainuary/rusty-orderbook/pkg/config"
	"github.com/ajainuary/rusty-orderbook/pkg/errors"
	"github.com/ajainuary/rusty-orderbook/pkg/logger"
	"github.com/segmentio/kafka-go"
)

// Reader consumes order-lifecycle requests from a Kafka topic. It implements
// the RequestSource interface; unlike the file source it never returns io.EOF.
type Reader struct {
	kafkaReader *kafka.Reader
	logger      *logger.Logger
}

// NewReader creates a Kafka reader for the request topic.
func NewReader(config config.KafkaConfig, log *logger.Logger) *Reader {
	kafkaReader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     config.Brokers,
		Topic:       config.RequestTopic,
		Partition:   0,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafka.LastOffset,
	})

	return &Reader{
		kafkaReader: kafkaReader,
		logger:      log,
	}
}

// Next reads and validates the next request from the topic.
func (r *Reader) Next(ctx context.Context) (*orderv1.Request, error) {
	msg, err := r.kafkaReader.ReadMessage(ctx)
	if err != nil {
		r.logError(err, "ReadMessage")
		return nil, errors.NewErrorDetails(err.Error(), string(errors.KafkaReadError), "request")
	}

	var request orderv1.Request
	if err := json.Unmarshal(msg.Value, &request); err != nil {
		r.logError(err, "UnmarshalRequest")
		return nil, errors.NewErrorDetails(err.Error(), string(errors.RequestParseError), "payload")
	}

	if err := validateRequest(&request); err != nil {
		r.logError(err, "ValidateRequest")
		return nil, err
	}

	r.logger.Debug("Next request",
		logger.Field{Key: "orderID", Value: request.OrderID},
		logger.Field{Key: "type", Value: request.Type},
		logger.Field{Key: "side", Value: request.Content.Side},
		logger.Field{Key: "price", Value: request.Content.Price},
		logger.Field{Key: "quantity", Value: request.Content.Quantity},
		logger.Field{Key: "offset", Value: msg.Offset},
	)

	return &request, nil
}

// Close properly closes the Kafka reader.
func (r *Reader) Close() error {
	if err := r.kafkaReader.Close(); err != nil {
		r.logError(err, "Close")
		return err
	}
	return nil
}

// logError is a helper method to log errors consistently
func (r *Reader) logError(err error, operation string) {
	r.logger.Error(err,
		logger.Field{Key: "operation", Value: operation},
	)
}

// validateRequest rejects payloads the matching engine must never see, the
// same screening the log-line parser applies in replay mode.
func validateRequest(request *orderv1.Request) error {
	switch request.Type {
	case orderv1.RequestTypeCreate, orderv1.RequestTypeReplace:
		if request.Content.Side != orderv1.SideBuy && request.Content.Side != orderv1.SideSell {
			return errors.NewErrorDetails("request carries no executable content", string(errors.RequestParseError), "content")
		}
		if request.Content.Quantity == 0 {
			return errors.NewErrorDetails("quantity must be positive", string(errors.RequestParseError), "quantity")
		}
	case orderv1.RequestTypeCancel:
	default:
		return errors.NewErrorDetails("unknown request type", string(errors.RequestParseError), "type")
	}
	return nil
}
