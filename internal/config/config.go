package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"

	// DevJWTSecret signs tokens when JWT_SECRET is unset outside mongo mode.
	DevJWTSecret = "adoptchat-dev-secret-change-me"
)

type Config struct {
	Port            int           `envconfig:"PORT" default:"8080"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"INFO"`
	StorageDriver   string        `envconfig:"STORAGE_DRIVER" default:"mongo"`
	MongoURI        string        `envconfig:"MONGODB_URI" default:"mongodb://localhost:27017"`
	MongoDatabase   string        `envconfig:"MONGODB_DATABASE" default:"adoptchat"`
	RedisAddr       string        `envconfig:"REDIS_ADDR"`
	ServerID        string        `envconfig:"SERVER_ID"`
	JWTSecret       string        `envconfig:"JWT_SECRET"`
	AccessTokenTTL  time.Duration `envconfig:"ACCESS_TOKEN_TTL" default:"24h"`
	AllowedOrigins  []string      `envconfig:"ALLOWED_ORIGINS" default:"http://localhost:5173"`
	UserCacheTTL    time.Duration `envconfig:"USER_CACHE_TTL" default:"5m"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// Load reads an optional .env file, then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("reading .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.StorageDriver {
	case StorageMongo:
		if c.JWTSecret == "" {
			return errors.New("JWT_SECRET is required with the mongo storage driver")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid PORT %d", c.Port)
	}
	return nil
}

// Secret returns the configured JWT secret, or the development one.
func (c Config) Secret() (string, bool) {
	if c.JWTSecret == "" {
		return DevJWTSecret, false
	}
	return c.JWTSecret, true
}

func (c Config) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}
