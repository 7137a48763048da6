package config

import (
	"time"

	"github.com/ajainuary/rusty-orderbook/pkg/redis"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// MustLoad loads the configuration from environment variables and .env file.
func MustLoad[T any](cfg T) {
	_ = godotenv.Load() // Load environment variables from .env file

	env.Must(cfg, env.Parse(cfg))
}

// Load loads the configuration from environment variables and .env file.
func Load[T any](cfg T) error {
	_ = godotenv.Load() // .env file is optional

	if err := env.Parse(cfg); err != nil {
		return err
	}

	return nil
}

// Mode selects where the engine reads its requests from.
type Mode string

const (
	// ModeReplay reads a request log file and processes it to completion.
	ModeReplay Mode = "replay"
	// ModeStream consumes requests from a Kafka topic until shutdown.
	ModeStream Mode = "stream"
)

// Config holds the configuration for the application.
type Config struct {
	Asset     string `env:"ASSET" envDefault:"DEFAULT"` // Asset symbol the book trades, e.g. BTC-USD
	Mode      Mode   `env:"MODE" envDefault:"replay"`
	InputFile string `env:"INPUT_FILE"` // Request log file, required in replay mode

	RenderBook bool `env:"RENDER_BOOK" envDefault:"true"` // Print the book after every request

	Kafka    KafkaConfig    `envPrefix:"KAFKA_"`
	Redis    redis.Config   `envPrefix:"REDIS_"`
	Snapshot SnapshotConfig `envPrefix:"SNAPSHOT_"`
}

// KafkaConfig holds the configuration for the Kafka request source and trade publisher.
type KafkaConfig struct {
	Brokers       []string `env:"BROKER" envDefault:"localhost:9092"`
	RequestTopic  string   `env:"REQUEST_TOPIC" envDefault:"order-requests"`
	TradeTopic    string   `env:"TRADE_TOPIC" envDefault:"trades"`
	PublishTrades bool     `env:"PUBLISH_TRADES" envDefault:"false"`
}

// SnapshotConfig holds the configuration for live snapshot publishing.
type SnapshotConfig struct {
	Enabled  bool          `env:"ENABLED" envDefault:"false"`
	Interval time.Duration `env:"INTERVAL" envDefault:"30s"`
}
