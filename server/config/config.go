package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Config is read from the environment, with a .env file in the working
// directory filling in anything unset.
type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	Store       string `env:"STORE" envDefault:"memory"`
	DatabaseURL string `env:"DATABASE_URL"`
	AutoMigrate bool   `env:"AUTO_MIGRATE"`
	SeedDeck    bool   `env:"SEED_DECK" envDefault:"true"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB"`

	// RandSeed of 0 seeds from crypto/rand.
	RandSeed       int64 `env:"RAND_SEED"`
	MaxDealerSteps int   `env:"DEALER_MAX_STEPS" envDefault:"64"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	Debug    bool   `env:"DEBUG"`
	NoColor  bool   `env:"NO_COLOR"`

	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"15s"`

	SimRounds int    `env:"SIM_ROUNDS" envDefault:"1000"`
	SimBet    string `env:"SIM_BET" envDefault:"10"`
}

// Load reads .env if present, then the process environment, and validates.
func Load() (Config, error) {
	_ = godotenv.Load()
	return Parse()
}

func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	switch c.Store {
	case StoreMemory, StoreRedis:
	case StorePostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("STORE=postgres requires DATABASE_URL"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE %q (want memory, postgres or redis)", c.Store))
	}
	if c.MaxDealerSteps <= 0 {
		errs = append(errs, fmt.Errorf("DEALER_MAX_STEPS must be positive, got %d", c.MaxDealerSteps))
	}
	if c.SimRounds < 0 {
		errs = append(errs, fmt.Errorf("SIM_ROUNDS must not be negative, got %d", c.SimRounds))
	}
	return errors.Join(errs...)
}
