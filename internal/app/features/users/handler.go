// internal/app/features/users/handler.go
package users

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/clanhaven/clanhaven/internal/app/features/shared"
	"github.com/clanhaven/clanhaven/internal/app/membership"
	userstore "github.com/clanhaven/clanhaven/internal/app/store/users"
	"github.com/clanhaven/clanhaven/internal/app/system/authutil"
	"github.com/clanhaven/clanhaven/internal/app/system/authz"
	"github.com/clanhaven/clanhaven/internal/app/system/htmlsanitize"
	"github.com/clanhaven/clanhaven/internal/app/system/limits"
	"github.com/clanhaven/clanhaven/internal/app/system/timeouts"
	"github.com/clanhaven/clanhaven/internal/domain/models"
	"go.uber.org/zap"
)

// Handler serves account registration and the per-user endpoints.
type Handler struct {
	Users  *userstore.Store
	Engine *membership.Service
	Log    *zap.Logger
}

func NewHandler(users *userstore.Store, engine *membership.Service, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Engine: engine, Log: logger}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ServeRegister handles POST /users.
func (h *Handler) ServeRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name := strings.TrimSpace(htmlsanitize.PlainText(req.Name))
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" || len(name) > limits.MaxNameLen {
		shared.Error(w, http.StatusBadRequest, "name is required and must be at most 120 characters")
		return
	}
	if email == "" || !strings.Contains(email, "@") {
		shared.Error(w, http.StatusBadRequest, "a valid email is required")
		return
	}
	if err := authutil.ValidatePassword(req.Password); err != nil {
		shared.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	hash, err := authutil.HashPassword(req.Password)
	if err != nil {
		h.Log.Error("register: hash password", zap.Error(err))
		shared.Error(w, http.StatusInternalServerError, "a server error occurred")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.Create(ctx, models.User{
		Name:         name,
		Email:        email,
		Role:         authz.RoleUser,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, userstore.ErrDuplicateEmail) {
			shared.Error(w, http.StatusConflict, "a user with this email already exists")
			return
		}
		h.Log.Error("register: create user", zap.Error(err))
		shared.Error(w, http.StatusInternalServerError, "a server error occurred")
		return
	}

	h.Log.Info("user registered", zap.String("user_id", u.ID.Hex()))
	shared.JSON(w, http.StatusCreated, u)
}

// ServeView handles GET /users/{userID}. Users see themselves; admins see
// anyone.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	id, err := shared.URLObjectID(r, "userID")
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}
	if !authz.IsAdmin(r) && !authz.SameUser(r, id) {
		shared.Error(w, http.StatusForbidden, "forbidden")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		shared.EngineError(w, err)
		return
	}
	shared.JSON(w, http.StatusOK, u)
}

// ServeMe handles GET /users/me.
func (h *Handler) ServeMe(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		shared.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		shared.EngineError(w, err)
		return
	}
	shared.JSON(w, http.StatusOK, u)
}

// ServePurge handles POST /users/{userID}/purge. Removes the user from
// every group they belong to, running succession per group, and returns
// the tally. Admin only.
func (h *Handler) ServePurge(w http.ResponseWriter, r *http.Request) {
	id, err := shared.URLObjectID(r, "userID")
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	res, err := h.Engine.Purge(ctx, id)
	if err != nil {
		shared.EngineError(w, err)
		return
	}

	h.Log.Info("user purged",
		zap.String("user_id", id.Hex()),
		zap.Int("clans_transferred", res.ClansTransferred),
		zap.Int("clans_dissolved", res.ClansDissolved),
		zap.Int("federations_transferred", res.FederationsTransferred),
		zap.Int("federations_dissolved", res.FederationsDissolved),
		zap.Int("failed", res.Failed()))
	shared.JSON(w, http.StatusOK, purgeResponse{UserID: id.Hex(), PurgeResult: res})
}

type purgeResponse struct {
	UserID string `json:"user_id"`
	membership.PurgeResult
}
