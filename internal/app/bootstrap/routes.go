// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	clansfeature "github.com/clanhaven/clanhaven/internal/app/features/clans"
	federationsfeature "github.com/clanhaven/clanhaven/internal/app/features/federations"
	healthfeature "github.com/clanhaven/clanhaven/internal/app/features/health"
	loginfeature "github.com/clanhaven/clanhaven/internal/app/features/login"
	logoutfeature "github.com/clanhaven/clanhaven/internal/app/features/logout"
	usersfeature "github.com/clanhaven/clanhaven/internal/app/features/users"
	"github.com/clanhaven/clanhaven/internal/app/membership"
	entitystore "github.com/clanhaven/clanhaven/internal/app/store/entities"
	userstore "github.com/clanhaven/clanhaven/internal/app/store/users"
	"github.com/clanhaven/clanhaven/internal/app/system/auth"
	"github.com/clanhaven/clanhaven/internal/app/system/cacheinval"
	"github.com/clanhaven/clanhaven/internal/app/system/events"
	"github.com/clanhaven/clanhaven/internal/app/system/grouplock"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for the app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and the Startup hook have completed. All mutations flow through a
// single membership engine instance so the per-group serializer actually
// serializes.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	secure := coreCfg.Env == "prod"
	if err := auth.InitSessionStore(appCfg.SessionKey, appCfg.SessionDomain, secure, logger); err != nil {
		logger.Error("session store init failed", zap.Error(err))
		return nil, err
	}

	store := entitystore.New(deps.MongoDatabase)
	users := userstore.New(deps.MongoDatabase)

	engine := membership.New(
		store,
		grouplock.New(appCfg.LockWait),
		events.NewLogNotifier(logger),
		cacheinval.NewLog(logger),
		logger,
		membership.Config{
			ClanMemberCap:       appCfg.ClanMemberCap,
			FederationMemberCap: appCfg.FederationMemberCap,
		},
	)

	r := chi.NewRouter()

	// Loads the SessionUser into context when a session cookie is present.
	r.Use(auth.LoadSessionUser)

	r.Mount("/health", healthfeature.Routes(healthfeature.NewHandler(deps.MongoClient, logger)))
	r.Mount("/login", loginfeature.Routes(loginfeature.NewHandler(users, nil, logger)))
	r.Mount("/logout", logoutfeature.Routes(logoutfeature.NewHandler(logger)))
	r.Mount("/users", usersfeature.Routes(usersfeature.NewHandler(users, engine, logger)))
	r.Mount("/clans", clansfeature.Routes(clansfeature.NewHandler(engine, store, logger)))
	r.Mount("/federations", federationsfeature.Routes(federationsfeature.NewHandler(engine, store, logger)))

	return r, nil
}
