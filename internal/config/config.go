// Package config loads server settings from defaults, an optional YAML
// file and FOURFRONT_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. FOURFRONT_GAME_FIELD_SIZE.
const EnvPrefix = "FOURFRONT"

// Config is the full server configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Game      GameConfig      `mapstructure:"game"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig holds listener settings.
type ServerConfig struct {
	HTTP HTTPConfig `mapstructure:"http"`
	GRPC GRPCConfig `mapstructure:"grpc"`
}

// HTTPConfig configures the HTTP router and websocket sessions.
type HTTPConfig struct {
	Address        string        `mapstructure:"address"`
	MaxMessageSize int64         `mapstructure:"max_message_size"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	PingInterval   time.Duration `mapstructure:"ping_interval"`
	SendBuffer     int           `mapstructure:"send_buffer"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

// GRPCConfig configures the operations gRPC listener.
type GRPCConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

// LoggingConfig selects the zap logger setup.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// GameConfig holds the match rules.
type GameConfig struct {
	FieldSize      int           `mapstructure:"field_size"`
	TurnLength     time.Duration `mapstructure:"turn_length"`
	HandLimit      int           `mapstructure:"hand_limit"`
	OpeningHand    int           `mapstructure:"opening_hand"`
	StartingMoney  int           `mapstructure:"starting_money"`
	StartingEnergy int           `mapstructure:"starting_energy"`
	DeckCopies     int           `mapstructure:"deck_copies"`
	MaxNameLength  int           `mapstructure:"max_name_length"`
	// MatchRetention keeps finished matches listed before they are dropped.
	MatchRetention  time.Duration `mapstructure:"match_retention"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	// TemplatesDir overrides the embedded templates when set.
	TemplatesDir string `mapstructure:"templates_dir"`
}

// TelemetryConfig configures OTLP tracing.
type TelemetryConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Endpoint    string `mapstructure:"endpoint"`
	ServiceName string `mapstructure:"service_name"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.http.address", ":8080")
	v.SetDefault("server.http.max_message_size", 64*1024)
	v.SetDefault("server.http.write_timeout", 10*time.Second)
	v.SetDefault("server.http.ping_interval", 30*time.Second)
	v.SetDefault("server.http.send_buffer", 256)
	v.SetDefault("server.http.allowed_origins", []string{})
	v.SetDefault("server.grpc.enabled", true)
	v.SetDefault("server.grpc.address", ":9090")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("game.field_size", 50)
	v.SetDefault("game.turn_length", 90*time.Second)
	v.SetDefault("game.hand_limit", 10)
	v.SetDefault("game.opening_hand", 5)
	v.SetDefault("game.starting_money", 10)
	v.SetDefault("game.starting_energy", 0)
	v.SetDefault("game.deck_copies", 2)
	v.SetDefault("game.max_name_length", 24)
	v.SetDefault("game.templates_dir", "")
	v.SetDefault("game.match_retention", 10*time.Minute)
	v.SetDefault("game.cleanup_interval", time.Minute)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.endpoint", "")
	v.SetDefault("telemetry.service_name", "fourfront-server")
}

// Load reads configuration. A missing file at path is not an error; the
// defaults and environment still apply.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would make the server unusable.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.HTTP.Address == "" {
		errs = append(errs, errors.New("server.http.address is required"))
	}
	if c.Server.GRPC.Enabled && c.Server.GRPC.Address == "" {
		errs = append(errs, errors.New("server.grpc.address is required when grpc is enabled"))
	}
	if c.Server.HTTP.SendBuffer < 1 {
		errs = append(errs, errors.New("server.http.send_buffer must be positive"))
	}
	if c.Game.FieldSize < 9 {
		errs = append(errs, fmt.Errorf("game.field_size %d is too small", c.Game.FieldSize))
	}
	if c.Game.TurnLength <= 0 {
		errs = append(errs, errors.New("game.turn_length must be positive"))
	}
	if c.Game.HandLimit < 1 {
		errs = append(errs, errors.New("game.hand_limit must be positive"))
	}
	if c.Game.OpeningHand < 0 || c.Game.DeckCopies < 1 {
		errs = append(errs, errors.New("game.opening_hand and game.deck_copies must not be negative"))
	}
	if c.Game.MaxNameLength < 1 {
		errs = append(errs, errors.New("game.max_name_length must be positive"))
	}
	if c.Game.MatchRetention < 0 {
		errs = append(errs, errors.New("game.match_retention must not be negative"))
	}
	if c.Game.CleanupInterval <= 0 {
		errs = append(errs, errors.New("game.cleanup_interval must be positive"))
	}
	if c.Telemetry.Enabled && c.Telemetry.Endpoint == "" {
		errs = append(errs, errors.New("telemetry.endpoint is required when telemetry is enabled"))
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("logging.format %q must be json or console", c.Logging.Format))
	}
	return errors.Join(errs...)
}
