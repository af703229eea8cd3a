// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for ClanHaven.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, clan_member_cap, etc.
//   - Environment variables: CLANHAVEN_MONGO_URI, CLANHAVEN_CLAN_MEMBER_CAP, etc.
//   - Command-line flags: --mongo_uri, --clan_member_cap, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "clanhaven", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},

	{Name: "clan_member_cap", Default: 50, Desc: "Maximum members per clan"},
	{Name: "federation_member_cap", Default: 20, Desc: "Maximum direct user members per federation"},
	{Name: "lock_wait", Default: "5s", Desc: "Maximum wait for a group lock (e.g., 5s, 500ms)"},
	{Name: "repair_sweep_interval", Default: "10m", Desc: "Interval between invariant repair sweeps (0 disables)"},

	{Name: "admin_email", Default: "", Desc: "Email of the platform admin (creates/promotes on startup)"},
	{Name: "admin_password", Default: "", Desc: "Password for a newly created admin account"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles .env files, config
// files, environment variables (WAFFLE_* for core, CLANHAVEN_* for
// app), and command-line flags, merged with precedence
// flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "CLANHAVEN", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		SessionKey:    appValues.String("session_key"),
		SessionDomain: appValues.String("session_domain"),

		ClanMemberCap:       appValues.Int("clan_member_cap"),
		FederationMemberCap: appValues.Int("federation_member_cap"),
		LockWait:            appValues.Duration("lock_wait", 5*time.Second),
		RepairSweepInterval: appValues.Duration("repair_sweep_interval", 10*time.Minute),

		AdminEmail:    appValues.String("admin_email"),
		AdminPassword: appValues.String("admin_password"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation. It runs before
// any backends connect, so misconfiguration fails fast.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.ClanMemberCap <= 0 || appCfg.FederationMemberCap <= 0 {
		return fmt.Errorf("member caps must be positive (clan %d, federation %d)",
			appCfg.ClanMemberCap, appCfg.FederationMemberCap)
	}
	if appCfg.LockWait <= 0 {
		return fmt.Errorf("lock_wait must be positive, got %s", appCfg.LockWait)
	}
	return nil
}
