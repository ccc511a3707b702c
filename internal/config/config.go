package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix namespaces every environment override: REALTIME_SERVER_ADDR -> server.addr.
const EnvPrefix = "REALTIME_"

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{"config.yaml", "config.yml"}

// Config is the full runtime configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Auth     AuthConfig     `koanf:"auth"`
	Database DatabaseConfig `koanf:"database"`
	Realtime RealtimeConfig `koanf:"realtime"`
	Client   ClientConfig   `koanf:"client"`
	Log      LogConfig      `koanf:"log"`
}

type ServerConfig struct {
	Addr            string        `koanf:"addr" validate:"required"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
	AllowedOrigins  []string      `koanf:"allowed_origins"`
}

type AuthConfig struct {
	JWTSecret string        `koanf:"jwt_secret" validate:"required,min=16"`
	Issuer    string        `koanf:"issuer" validate:"required"`
	Audience  string        `koanf:"audience" validate:"required"`
	TokenTTL  time.Duration `koanf:"token_ttl" validate:"gt=0"`
}

type DatabaseConfig struct {
	Path string `koanf:"path" validate:"required"`
}

// RealtimeConfig tunes the websocket transport.
type RealtimeConfig struct {
	SendBuffer     int           `koanf:"send_buffer" validate:"gt=0"`
	MaxMessageSize int64         `koanf:"max_message_size" validate:"gt=0"`
	WriteWait      time.Duration `koanf:"write_wait" validate:"gt=0"`
	PongWait       time.Duration `koanf:"pong_wait" validate:"gt=0"`
	PingInterval   time.Duration `koanf:"ping_interval" validate:"gt=0,ltfield=PongWait"`
	GrantCacheTTL  time.Duration `koanf:"grant_cache_ttl" validate:"gte=0"`
}

// ClientConfig holds the reconnect policy shared with pkg/client consumers.
type ClientConfig struct {
	MaxReconnectAttempts int           `koanf:"max_reconnect_attempts" validate:"gte=0"`
	ReconnectBaseDelay   time.Duration `koanf:"reconnect_base_delay" validate:"gt=0"`
}

type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8008",
			ShutdownTimeout: 10 * time.Second,
			AllowedOrigins:  []string{"*"},
		},
		Auth: AuthConfig{
			JWTSecret: "development-insecure-secret-change-me",
			Issuer:    "content-realtime-api",
			Audience:  "content-realtime-clients",
			TokenTTL:  24 * time.Hour,
		},
		Database: DatabaseConfig{Path: "realtime.db"},
		Realtime: RealtimeConfig{
			SendBuffer:     256,
			MaxMessageSize: 64 * 1024,
			WriteWait:      10 * time.Second,
			PongWait:       60 * time.Second,
			PingInterval:   54 * time.Second,
			GrantCacheTTL:  30 * time.Second,
		},
		Client: ClientConfig{
			MaxReconnectAttempts: 5,
			ReconnectBaseDelay:   time.Second,
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

// Default returns the built-in configuration, already valid.
func Default() *Config {
	return defaultConfig()
}

// Load layers defaults, the optional YAML file and REALTIME_* environment variables.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Comma separated lists from the environment arrive as a single string.
	if raw := k.String("server.allowed_origins"); raw != "" && strings.Contains(raw, ",") {
		origins := strings.Split(raw, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		if err := k.Set("server.allowed_origins", origins); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	return validator.New().Struct(c)
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envTransformFunc maps REALTIME_AUTH_JWT_SECRET to auth.jwt_secret. Section
// names are single words so only the first underscore is a separator.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	return strings.Replace(key, "_", ".", 1)
}
