// Package timeouts provides the timeout values handlers put on their contexts.
//
//   - Ping: health checks
//   - Query: report aggregations and totals
//   - Import: tabular imports, which touch one organization per row
//
// Values can be changed once at startup with Configure.
package timeouts

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultPing   = 2 * time.Second
	DefaultQuery  = 10 * time.Second
	DefaultImport = 60 * time.Second
)

var (
	mu         sync.RWMutex
	ping       = DefaultPing
	queryLimit = DefaultQuery
	importMax  = DefaultImport
)

// Ping returns the timeout for connectivity checks.
func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ping
}

// Query returns the timeout for report aggregations.
func Query() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return queryLimit
}

// Import returns the timeout for a whole tabular import.
func Import() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return importMax
}

// Config holds timeout overrides. Zero values keep the current value.
type Config struct {
	Ping   time.Duration
	Query  time.Duration
	Import time.Duration
}

// Configure applies non-zero overrides.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		ping = cfg.Ping
	}
	if cfg.Query > 0 {
		queryLimit = cfg.Query
	}
	if cfg.Import > 0 {
		importMax = cfg.Import
	}
}

// Reset restores the defaults. Tests use it.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	ping = DefaultPing
	queryLimit = DefaultQuery
	importMax = DefaultImport
}

// Current returns the active values.
func Current() Config {
	mu.RLock()
	defer mu.RUnlock()
	return Config{Ping: ping, Query: queryLimit, Import: importMax}
}

// WithTimeout is context.WithTimeout whose cancel func logs a warning when the
// deadline was what ended the operation.
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if ctx.Err() == context.DeadlineExceeded && log != nil {
			log.Warn("operation timed out",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout),
			)
		}
		cancel()
	}
}
