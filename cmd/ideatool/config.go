package main

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/dalemusser/ideatrack/internal/app/bootstrap"
	"github.com/joho/godotenv"
)

// cliConfig mirrors the server's IDEATRACK_* settings that the tool needs.
type cliConfig struct {
	MongoURI         string `env:"IDEATRACK_MONGO_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase    string `env:"IDEATRACK_MONGO_DATABASE" envDefault:"ideatrack"`
	MongoMaxPoolSize uint64 `env:"IDEATRACK_MONGO_MAX_POOL_SIZE" envDefault:"10"`

	JWTSecret string `env:"IDEATRACK_JWT_SECRET"`
	JWTIssuer string `env:"IDEATRACK_JWT_ISSUER"`

	ImportSkipFirstRow bool `env:"IDEATRACK_IMPORT_SKIP_FIRST_ROW" envDefault:"true"`
	ImportAtomic       bool `env:"IDEATRACK_IMPORT_ATOMIC" envDefault:"false"`
	ImportMaxRows      int  `env:"IDEATRACK_IMPORT_MAX_ROWS" envDefault:"20000"`

	Timeout time.Duration `env:"IDEATRACK_TOOL_TIMEOUT" envDefault:"5m"`
}

// loadConfig loads whichever of files exist into the environment (without
// overriding variables already set) and parses the result.
func loadConfig(files []string) (cliConfig, error) {
	existing := make([]string, 0, len(files))
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) > 0 {
		if err := godotenv.Load(existing...); err != nil {
			return cliConfig{}, fmt.Errorf("load env files: %w", err)
		}
	}

	var cfg cliConfig
	if err := env.Parse(&cfg); err != nil {
		return cliConfig{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// appConfig converts to the server's AppConfig so the tool connects and
// imports exactly like the service does.
func (c cliConfig) appConfig() bootstrap.AppConfig {
	return bootstrap.AppConfig{
		MongoURI:           c.MongoURI,
		MongoDatabase:      c.MongoDatabase,
		MongoMaxPoolSize:   c.MongoMaxPoolSize,
		JWTSecret:          c.JWTSecret,
		JWTIssuer:          c.JWTIssuer,
		ImportSkipFirstRow: c.ImportSkipFirstRow,
		ImportAtomic:       c.ImportAtomic,
		ImportMaxRows:      c.ImportMaxRows,
	}
}
