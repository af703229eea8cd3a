// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/clanhaven/clanhaven/internal/app/membership"
	entitystore "github.com/clanhaven/clanhaven/internal/app/store/entities"
	userstore "github.com/clanhaven/clanhaven/internal/app/store/users"
	"github.com/clanhaven/clanhaven/internal/app/system/authutil"
	"github.com/clanhaven/clanhaven/internal/app/system/authz"
	"github.com/clanhaven/clanhaven/internal/app/system/workers"
	"github.com/clanhaven/clanhaven/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// repairSweep is started in Startup and stopped in Shutdown.
var repairSweep *workers.RepairSweep

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if appCfg.AdminEmail != "" {
		if err := ensureAdmin(ctx, deps, appCfg.AdminEmail, appCfg.AdminPassword, logger); err != nil {
			return err
		}
	}

	if appCfg.RepairSweepInterval > 0 {
		repairSweep = workers.NewRepairSweep(
			entitystore.New(deps.MongoDatabase), logger, appCfg.RepairSweepInterval)
		repairSweep.Start()
	}
	return nil
}

// ensureAdmin creates the configured admin account, or promotes it if the
// email already exists with a lesser role.
func ensureAdmin(ctx context.Context, deps DBDeps, email, password string, logger *zap.Logger) error {
	users := userstore.New(deps.MongoDatabase)

	u, err := users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if u.Role == authz.RoleAdmin {
			return nil
		}
		v := u.Version
		u.Role = authz.RoleAdmin
		if err := users.Save(ctx, u, v); err != nil {
			return fmt.Errorf("promote admin %s: %w", email, err)
		}
		logger.Info("promoted existing user to admin", zap.String("email", email))
		return nil

	case errors.Is(err, membership.ErrNotFound):
		if password == "" {
			return fmt.Errorf("admin_email %s does not exist and no admin_password is configured", email)
		}
		hash, err := authutil.HashPassword(password)
		if err != nil {
			return fmt.Errorf("hash admin password: %w", err)
		}
		created, err := users.Create(ctx, models.User{
			Name:         "Admin",
			Email:        email,
			Role:         authz.RoleAdmin,
			PasswordHash: hash,
		})
		if err != nil {
			return fmt.Errorf("create admin %s: %w", email, err)
		}
		logger.Info("created admin user",
			zap.String("email", email), zap.String("user_id", created.ID.Hex()))
		return nil

	default:
		return fmt.Errorf("look up admin %s: %w", email, err)
	}
}
