package tradepublisherv1

import "context"

// TradePublisher defines the interface for publishing trade events.
type TradePublisher interface {
	// PublishTrade publishes a single trade event.
	PublishTrade(ctx context.Context, event *TradeEvent) error
}
