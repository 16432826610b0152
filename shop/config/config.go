// Package config holds the shop bot configuration: the reusable core settings
// plus storage, session, notification and presentation options.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/m3rciful/shopbot/core/bootstrap"
	coreconfig "github.com/m3rciful/shopbot/core/config"
	coredatabase "github.com/m3rciful/shopbot/core/database"
)

// StorageConfig selects where the catalog and carts live.
type StorageConfig struct {
	// Backend is memory, postgres or sqlite.
	Backend    string `yaml:"backend" envconfig:"STORAGE_BACKEND"`
	SQLitePath string `yaml:"sqlite_path" envconfig:"SQLITE_PATH"`
	// Seed fills an empty catalog with sample products at startup.
	Seed bool `yaml:"seed" envconfig:"STORAGE_SEED"`
}

// RedisConfig configures the checkout session store. Empty Addr keeps sessions in memory.
type RedisConfig struct {
	Addr       string        `yaml:"addr" envconfig:"REDIS_ADDR"`
	DB         int           `yaml:"db" envconfig:"REDIS_DB"`
	Password   string        `yaml:"password" envconfig:"REDIS_PASSWORD"`
	SessionTTL time.Duration `yaml:"session_ttl" envconfig:"REDIS_SESSION_TTL"`
}

// KafkaConfig enables the order event log when Brokers is non-empty.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers" envconfig:"KAFKA_BROKERS"`
	Topic   string   `yaml:"topic" envconfig:"KAFKA_TOPIC"`
}

// PostmarkConfig enables the operator e-mail copy when ServerToken is set.
type PostmarkConfig struct {
	ServerToken string `yaml:"server_token" envconfig:"POSTMARK_SERVER_TOKEN"`
	From        string `yaml:"from" envconfig:"POSTMARK_FROM"`
	To          string `yaml:"to" envconfig:"POSTMARK_TO"`
}

// ShopConfig tunes presentation.
type ShopConfig struct {
	Currency string `yaml:"currency" envconfig:"SHOP_CURRENCY"`
}

// Config is the full application configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config `yaml:"database"`
	Storage  StorageConfig       `yaml:"storage"`
	Redis    RedisConfig         `yaml:"redis"`
	Kafka    KafkaConfig         `yaml:"kafka"`
	Postmark PostmarkConfig      `yaml:"postmark"`
	Shop     ShopConfig          `yaml:"shop"`
}

const (
	defaultCurrency   = "UAH"
	defaultKafkaTopic = "shop.orders"
)

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	if c == nil {
		return nil
	}
	return &c.Config
}

// Load reads path, overlays the environment and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.LoadInto(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates settings and applies defaults.
func (c *Config) Normalize() error {
	if err := coreconfig.Normalize(&c.Config); err != nil {
		return err
	}
	if c.Telegram.AdminID <= 0 {
		return fmt.Errorf("telegram.admin_id is required: orders are sent to this chat")
	}

	backend, err := bootstrap.NormalizeBackend(c.Storage.Backend)
	if err != nil {
		return err
	}
	c.Storage.Backend = backend
	if backend == bootstrap.BackendPostgres {
		if strings.TrimSpace(c.Database.Host) == "" || strings.TrimSpace(c.Database.Name) == "" {
			return fmt.Errorf("database.host and database.name are required for the postgres backend")
		}
		if c.Database.Port == "" {
			c.Database.Port = "5432"
		}
	}

	c.Redis.Addr = strings.TrimSpace(c.Redis.Addr)
	if c.Redis.SessionTTL < 0 {
		return fmt.Errorf("redis.session_ttl must be >= 0")
	}

	brokers := c.Kafka.Brokers[:0]
	for _, b := range c.Kafka.Brokers {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	c.Kafka.Brokers = brokers
	if len(brokers) > 0 && strings.TrimSpace(c.Kafka.Topic) == "" {
		c.Kafka.Topic = defaultKafkaTopic
	}

	if c.Postmark.ServerToken != "" && (c.Postmark.From == "" || c.Postmark.To == "") {
		return fmt.Errorf("postmark.from and postmark.to are required when postmark.server_token is set")
	}

	c.Shop.Currency = strings.TrimSpace(c.Shop.Currency)
	if c.Shop.Currency == "" {
		c.Shop.Currency = defaultCurrency
	}
	return nil
}
