package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Store drivers understood by the server.
const (
	DriverNeo4j  = "neo4j"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Default store locations, used when store_uri is not set.
const (
	DefaultNeo4jURI   = "neo4j://localhost:7687"
	DefaultSQLitePath = "tasktrack.db"
)

// StoreConfig selects and addresses the task store.
type StoreConfig struct {
	Driver   string
	URI      string
	User     string
	Password string
}

// ServerConfig holds the API server settings.
type ServerConfig struct {
	Port       string
	JWTSecret  string
	TokenTTL   time.Duration
	CORSOrigin string
	LogLevel   string
	Store      StoreConfig
}

// ErrMissingSecret is returned when no JWT secret is configured.
var ErrMissingSecret = errors.New("jwt_secret is required")

// LoadServer reads server settings from the environment and, if path is
// non-empty, from a YAML file. Environment variables win over the file.
func LoadServer(path string) (*ServerConfig, error) {
	v := viper.New()
	v.SetDefault("port", "5000")
	v.SetDefault("token_ttl", "24h")
	v.SetDefault("cors_origin", "http://localhost:3000")
	v.SetDefault("log_level", "info")
	v.SetDefault("store_driver", DriverNeo4j)
	v.SetDefault("store_uri", "")
	v.SetDefault("store_user", "neo4j")
	v.SetDefault("store_password", "")
	v.SetDefault("jwt_secret", "")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read server config: %w", err)
		}
	}

	cfg := &ServerConfig{
		Port:       v.GetString("port"),
		JWTSecret:  v.GetString("jwt_secret"),
		TokenTTL:   v.GetDuration("token_ttl"),
		CORSOrigin: v.GetString("cors_origin"),
		LogLevel:   v.GetString("log_level"),
		Store: StoreConfig{
			Driver:   v.GetString("store_driver"),
			URI:      v.GetString("store_uri"),
			User:     v.GetString("store_user"),
			Password: v.GetString("store_password"),
		},
	}

	if cfg.JWTSecret == "" {
		return nil, ErrMissingSecret
	}
	if cfg.TokenTTL <= 0 {
		return nil, fmt.Errorf("invalid token_ttl: %s", v.GetString("token_ttl"))
	}
	switch cfg.Store.Driver {
	case DriverNeo4j:
		if cfg.Store.URI == "" {
			cfg.Store.URI = DefaultNeo4jURI
		}
	case DriverSQLite:
		if cfg.Store.URI == "" {
			cfg.Store.URI = DefaultSQLitePath
		}
	case DriverMemory:
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.Store.Driver)
	}
	return cfg, nil
}

// Addr returns the listen address.
func (c *ServerConfig) Addr() string {
	return ":" + c.Port
}
