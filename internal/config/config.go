package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Server  ServerConfig  `env:",prefix=SERVER_"`
	Storage StorageConfig `env:",prefix=STORAGE_"`
	Redis   RedisConfig   `env:",prefix=REDIS_"`
	Auth    AuthConfig    `env:",prefix=AUTH_"`
	CORS    CORSConfig    `env:",prefix=CORS_"`
	Env     string        `env:"ENV,default=development"`
}

type ServerConfig struct {
	Port         string   `env:"PORT,default=8080"`
	Host         string   `env:"HOST,default=127.0.0.1"`
	ReadTimeout  Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout Duration `env:"WRITE_TIMEOUT,default=15s"`
}

type StorageConfig struct {
	Path string `env:"PATH,default=exam-prep.db"`
}

// RedisConfig is optional. An empty Host keeps login throttling in memory.
type RedisConfig struct {
	Host     string `env:"HOST,default="`
	Port     string `env:"PORT,default=6379"`
	Password string `env:"PASSWORD,default="`
	DB       int    `env:"DB,default=0"`
}

type AuthConfig struct {
	Secret            string   `env:"SECRET,required"`
	BCryptCost        int      `env:"BCRYPT_COST,default=12"`
	SessionTTL        Duration `env:"SESSION_TTL,default=12h"`
	RememberMeTTL     Duration `env:"REMEMBER_ME_TTL,default=30d"`
	LoginAttempts     int      `env:"LOGIN_ATTEMPTS,default=10"`
	LoginAttemptsSpan Duration `env:"LOGIN_ATTEMPTS_WINDOW,default=1m"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"ALLOWED_ORIGINS,default=http://localhost:3000"`
	AllowedMethods []string `env:"ALLOWED_METHODS,default=GET,POST,PATCH,OPTIONS"`
	AllowedHeaders []string `env:"ALLOWED_HEADERS,default=Content-Type"`
}

// Enabled reports whether a Redis server was configured
func (r RedisConfig) Enabled() bool {
	return r.Host != ""
}

// Address returns Redis connection address
func (r RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", r.Host, r.Port)
}

// DSN returns the modernc sqlite connection string for the database file
func (s StorageConfig) DSN() string {
	return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", s.Path)
}

// Load loads configuration from environment variables
func Load(ctx context.Context) (*Config, error) {
	var config Config

	if err := envconfig.Process(ctx, &config); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// The secret signs session tokens and peppers password hashes
	if len(config.Auth.Secret) < 32 {
		return nil, fmt.Errorf("AUTH_SECRET must be at least 32 characters long")
	}

	if config.Auth.SessionTTL.Duration <= 0 || config.Auth.RememberMeTTL.Duration <= 0 {
		return nil, fmt.Errorf("session lifetimes must be positive")
	}

	return &config, nil
}

// LoadWithDefaults loads configuration with default context
func LoadWithDefaults() (*Config, error) {
	return Load(context.Background())
}
