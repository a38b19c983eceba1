package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Game     GameConfig     `mapstructure:"game"`
	Database DatabaseConfig `mapstructure:"database"`
}

type ServerConfig struct {
	HTTPAddress    string `mapstructure:"http_address"`
	RPCAddress     string `mapstructure:"rpc_address"`
	HealthAddress  string `mapstructure:"health_address"`
	MetricsAddress string `mapstructure:"metrics_address"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// GameConfig holds the fallbacks used by create_room and the timings of the
// background activities.
type GameConfig struct {
	DefaultRounds     int           `mapstructure:"default_rounds"`
	DefaultTimeLimit  int           `mapstructure:"default_time_limit"`
	DefaultCategories []string      `mapstructure:"default_categories"`
	LetterDelay       time.Duration `mapstructure:"letter_delay"`
	SweepInterval     time.Duration `mapstructure:"sweep_interval"`
	FinishedRoomTTL   time.Duration `mapstructure:"finished_room_ttl"`
}

type DatabaseConfig struct {
	// Driver selects the finished-game archive: "" disables it, "postgres"
	// uses lib/pq, "gorm" uses GORM.
	Driver   string         `mapstructure:"driver"`
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

const (
	DriverNone     = ""
	DriverPostgres = "postgres"
	DriverGorm     = "gorm"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http_address", ":8080")
	v.SetDefault("server.rpc_address", ":8081")
	v.SetDefault("server.health_address", ":8082")
	v.SetDefault("server.metrics_address", ":9090")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)

	v.SetDefault("game.default_rounds", 6)
	v.SetDefault("game.default_time_limit", 10)
	v.SetDefault("game.default_categories", []string{"Country", "City", "Animal", "Name", "Thing"})
	v.SetDefault("game.letter_delay", 3*time.Second)
	v.SetDefault("game.sweep_interval", time.Second)
	v.SetDefault("game.finished_room_ttl", 30*time.Minute)

	v.SetDefault("database.driver", DriverNone)
	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.user", "postgres")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.postgres.dbname", "wordrace")
}

// LoadConfig reads config.yaml from path when present and overlays environment
// variables such as GAME_LETTER_DELAY or DATABASE_POSTGRES_HOST.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case c.Game.DefaultRounds < 1:
		return fmt.Errorf("game.default_rounds must be at least 1, got %d", c.Game.DefaultRounds)
	case c.Game.DefaultTimeLimit < 1:
		return fmt.Errorf("game.default_time_limit must be at least 1, got %d", c.Game.DefaultTimeLimit)
	case len(c.Game.DefaultCategories) == 0:
		return errors.New("game.default_categories must not be empty")
	case c.Game.SweepInterval <= 0:
		return fmt.Errorf("game.sweep_interval must be positive, got %s", c.Game.SweepInterval)
	case c.Game.LetterDelay < 0:
		return fmt.Errorf("game.letter_delay must not be negative, got %s", c.Game.LetterDelay)
	case c.Game.FinishedRoomTTL < 0:
		return fmt.Errorf("game.finished_room_ttl must not be negative, got %s", c.Game.FinishedRoomTTL)
	}

	switch c.Database.Driver {
	case DriverNone, DriverPostgres, DriverGorm:
	default:
		return fmt.Errorf("unknown database.driver %q", c.Database.Driver)
	}
	return nil
}
