// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers the
// framework-level settings (ports, TLS, logging, CORS, body limits); AppConfig
// is everything specific to the idea-count service.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Bearer token verification. Tokens are issued by the account service.
	JWTSecret string // HS256 shared secret
	JWTIssuer string // expected "iss"; blank accepts any issuer

	// Import behavior
	ImportSkipFirstRow bool // drop the first non-empty data row of every import
	ImportAtomic       bool // resolve all codes first and write in one transaction
	ImportMaxRows      int  // reject files with more data rows than this (0 = unlimited)
	ImportRateLimit    int  // imports per user per minute (0 = unlimited)

	// Import history kept in import_events; 0 keeps everything.
	ImportHistoryRetention time.Duration

	// Per-request timeouts
	QueryTimeout  time.Duration // report aggregations
	ImportTimeout time.Duration // whole import request
}
