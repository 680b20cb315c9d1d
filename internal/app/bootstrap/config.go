// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/ideatrack/internal/app/features/ideacount/tabular"
	"github.com/dalemusser/ideatrack/internal/app/system/auth"
	"github.com/dalemusser/ideatrack/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// EnvPrefix prefixes every app-level environment variable (IDEATRACK_MONGO_URI, ...).
const EnvPrefix = "IDEATRACK"

// appConfigKeys defines the configuration keys for IdeaTrack.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, jwt_secret, etc.
//   - Environment variables: IDEATRACK_MONGO_URI, IDEATRACK_JWT_SECRET, etc.
//   - Command-line flags: --mongo_uri, --jwt_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "ideatrack", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Bearer auth
	{Name: "jwt_secret", Default: "", Desc: "HS256 secret shared with the account service (32+ chars)"},
	{Name: "jwt_issuer", Default: "", Desc: "Required token issuer (blank accepts any)"},

	// Import
	{Name: "import_skip_first_row", Default: true, Desc: "Skip the first non-empty data row of each import"},
	{Name: "import_atomic", Default: false, Desc: "Apply imports all-or-nothing inside a transaction"},
	{Name: "import_max_rows", Default: tabular.MaxRows, Desc: "Maximum data rows per import file (0 = unlimited)"},
	{Name: "import_rate_limit", Default: 10, Desc: "Imports allowed per user per minute (0 = unlimited)"},
	{Name: "import_history_retention", Default: "2160h", Desc: "How long import history is kept (e.g., 720h; 0 keeps everything)"},

	// Timeouts
	{Name: "timeout_query", Default: "10s", Desc: "Timeout for report aggregations (e.g., 10s, 1m)"},
	{Name: "timeout_import", Default: "60s", Desc: "Timeout for an import request (e.g., 60s, 5m)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env and config files,
// WAFFLE_* / IDEATRACK_* environment variables and command-line flags,
// merged with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, EnvPrefix, appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		JWTSecret: appValues.String("jwt_secret"),
		JWTIssuer: appValues.String("jwt_issuer"),

		ImportSkipFirstRow: appValues.Bool("import_skip_first_row"),
		ImportAtomic:       appValues.Bool("import_atomic"),
		ImportMaxRows:      appValues.Int("import_max_rows"),
		ImportRateLimit:    appValues.Int("import_rate_limit"),

		ImportHistoryRetention: appValues.Duration("import_history_retention", 90*24*time.Hour),

		QueryTimeout:  appValues.Duration("timeout_query", timeouts.DefaultQuery),
		ImportTimeout: appValues.Duration("timeout_import", timeouts.DefaultImport),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// The MongoDB URI format is checked here to catch configuration errors
// before attempting to connect.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.MongoDatabase == "" {
		return fmt.Errorf("mongo_database is required")
	}
	if appCfg.MongoMinPoolSize > appCfg.MongoMaxPoolSize {
		return fmt.Errorf("mongo_min_pool_size (%d) exceeds mongo_max_pool_size (%d)",
			appCfg.MongoMinPoolSize, appCfg.MongoMaxPoolSize)
	}

	if appCfg.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required")
	}
	if coreCfg != nil && coreCfg.Env == "prod" && len(appCfg.JWTSecret) < auth.MinSecretLength {
		return fmt.Errorf("jwt_secret must be at least %d characters in prod", auth.MinSecretLength)
	}

	if appCfg.ImportMaxRows < 0 {
		return fmt.Errorf("import_max_rows must not be negative")
	}
	if appCfg.ImportRateLimit < 0 {
		return fmt.Errorf("import_rate_limit must not be negative")
	}
	if appCfg.ImportHistoryRetention < 0 {
		return fmt.Errorf("import_history_retention must not be negative")
	}
	if appCfg.QueryTimeout < 0 || appCfg.ImportTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if appCfg.ImportTimeout > 0 && appCfg.ImportTimeout < time.Second {
		logger.Warn("import timeout is under one second", zap.Duration("timeout_import", appCfg.ImportTimeout))
	}

	return nil
}
