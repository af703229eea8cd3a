// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (ports, TLS,
// logging, CORS); AppConfig is everything specific to ClanHaven.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string // MongoDB connection string (e.g., mongodb://localhost:27017)
	MongoDatabase    string // Database name within MongoDB
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration
	SessionKey    string // Secret key for signing session cookies (must be strong in production)
	SessionDomain string // Cookie domain (blank means current host)

	// Membership engine tunables
	ClanMemberCap       int           // max members per clan
	FederationMemberCap int           // max direct user members per federation
	LockWait            time.Duration // max wait for a group lock before giving up
	RepairSweepInterval time.Duration // how often the invariant sweep runs (0 disables)

	// Admin bootstrap: creates or promotes this account on startup.
	AdminEmail    string
	AdminPassword string
}
