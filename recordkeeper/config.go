package recordkeeper

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/pelletier/go-toml/v2"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type Config struct {
	Log    LogConfig    `toml:"log"`
	Bot    BotConfig    `toml:"bot"`
	DB     DBConfig     `toml:"db"`
	Event  EventConfig  `toml:"event"`
	Spaces SpacesConfig `toml:"spaces"`
}

type BotConfig struct {
	DevGuilds []snowflake.ID `toml:"dev_guilds"`
	Token     string         `toml:"token"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

type DBConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Database string `toml:"database"`
	PoolSize int    `toml:"pool_size"`
}

// EventConfig tunes the reservation engine. CheckoutTTLMinutes is how long a
// scenario checkout hides it from /quest before it reverts to claimable.
type EventConfig struct {
	CheckoutTTLMinutes int `toml:"checkout_ttl_minutes"`
}

const defaultCheckoutTTL = 2 * time.Hour

func (c EventConfig) CheckoutTTL() time.Duration {
	if c.CheckoutTTLMinutes <= 0 {
		return defaultCheckoutTTL
	}
	return time.Duration(c.CheckoutTTLMinutes) * time.Minute
}

// SpacesConfig configures the S3-compatible bucket that receives archived
// event snapshots. Leave Bucket empty to disable exports.
type SpacesConfig struct {
	Key      string `toml:"key"`
	Secret   string `toml:"secret"`
	Region   string `toml:"region"`
	Bucket   string `toml:"bucket"`
	SnapRoot string `toml:"snaproot"`
}
