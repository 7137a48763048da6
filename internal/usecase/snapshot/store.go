package snapshot

import (
	"context"
	"encoding/json"

	snapshotv1 "github.com/ajainuary/rusty-orderbook/internal/domain/snapshot/v1"
	"github.com/ajainuary/rusty-orderbook/pkg/errors"
	"github.com/ajainuary/rusty-orderbook/pkg/logger"
	"github.com/ajainuary/rusty-orderbook/pkg/redis"
)

// Store publishes the latest book snapshot to Redis so downstream readers can
// observe the live book without touching the engine. The snapshot is a live
// view only, never a recovery source: the book is rebuilt from the request
// stream on every run.
type Store struct {
	asset       string
	logger      *logger.Logger
	redisclient redis.Client
}

// NewSnapshotStore creates a snapshot publisher keyed by asset.
func NewSnapshotStore(redisclient redis.Client, asset string, logger *logger.Logger) *Store {
	return &Store{
		asset:       asset,
		redisclient: redisclient,
		logger:      logger,
	}
}

// Publish serializes the snapshot and overwrites the asset's key in Redis.
func (s *Store) Publish(ctx context.Context, snapshot *snapshotv1.Snapshot) error {
	buf, err := json.Marshal(snapshot)
	if err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{
			Key:   "asset",
			Value: s.asset,
		})
		return errors.NewTracer("snapshot_marshal_error").Wrap(err)
	}

	if err := s.redisclient.Set(ctx, s.asset, buf, 0); err != nil {
		s.logger.ErrorContext(ctx, err, logger.Field{
			Key:   "asset",
			Value: s.asset,
		})
		return errors.NewTracer("snapshot_publish_error").Wrap(err)
	}

	s.logger.DebugContext(ctx, "Snapshot published", logger.Field{
		Key:   "asset",
		Value: s.asset,
	}, logger.Field{
		Key:   "sequence",
		Value: snapshot.Sequence,
	})
	return nil
}
