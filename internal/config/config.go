package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Env string `envconfig:"GO_ENV" default:"development"`

	ServerConfig
	DatabaseConfig
	RedisConfig
	KafkaConfig
	LogConfig
	EventsConfig
}

type ServerConfig struct {
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	ReadTimeout     time.Duration `envconfig:"HTTP_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"HTTP_WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `envconfig:"HTTP_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
	RequestTimeout  time.Duration `envconfig:"REQUEST_TIMEOUT" default:"5s"`
	PublicBaseURL   string        `envconfig:"PUBLIC_BASE_URL" default:"http://localhost:8080"`
}

type DatabaseConfig struct {
	URL            string        `envconfig:"DATABASE_URL" required:"true"`
	MongoDatabase  string        `envconfig:"MONGO_DATABASE" default:"events"`
	ConnectTimeout time.Duration `envconfig:"DB_CONNECT_TIMEOUT" default:"10s"`
	AutoMigrate    bool          `envconfig:"DB_AUTO_MIGRATE" default:"true"`
}

// RedisConfig leaves the slug cache off when Addr is empty.
type RedisConfig struct {
	Addr     string        `envconfig:"REDIS_ADDR"`
	CacheTTL time.Duration `envconfig:"CACHE_TTL" default:"10m"`
}

// KafkaConfig leaves publishing off when no brokers are set.
type KafkaConfig struct {
	Brokers       []string `envconfig:"KAFKA_BROKERS"`
	EventsTopic   string   `envconfig:"KAFKA_TOPIC_EVENTS" default:"events.event.created"`
	BookingsTopic string   `envconfig:"KAFKA_TOPIC_BOOKINGS" default:"events.booking.created"`
}

type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
	Dir   string `envconfig:"LOG_DIR" default:"logs"`
}

type EventsConfig struct {
	SimilarLimit int `envconfig:"SIMILAR_EVENTS_LIMIT" default:"3"`
}

// Load reads an optional .env file and then the process environment.
// The returned warning is non-empty when the .env file could not be read.
func Load() (*Config, string, error) {
	var warning string
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		warning = fmt.Sprintf("could not load .env file: %v", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, warning, fmt.Errorf("load config: %w", err)
	}
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, warning, fmt.Errorf("load config: required key DATABASE_URL missing value")
	}
	if cfg.SimilarLimit < 0 {
		return nil, warning, fmt.Errorf("load config: SIMILAR_EVENTS_LIMIT must not be negative")
	}
	return &cfg, warning, nil
}

func (c *Config) RedisEnabled() bool {
	return c.RedisConfig.Addr != ""
}

func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaConfig.Brokers) > 0
}
