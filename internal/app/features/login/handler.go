// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/clanhaven/clanhaven/internal/app/features/shared"
	"github.com/clanhaven/clanhaven/internal/app/membership"
	userstore "github.com/clanhaven/clanhaven/internal/app/store/users"
	"github.com/clanhaven/clanhaven/internal/app/system/auth"
	"github.com/clanhaven/clanhaven/internal/app/system/authutil"
	"github.com/clanhaven/clanhaven/internal/app/system/authz"
	"github.com/clanhaven/clanhaven/internal/app/system/ratelimit"
	"github.com/clanhaven/clanhaven/internal/app/system/timeouts"
	"github.com/clanhaven/clanhaven/internal/domain/models"
	"go.uber.org/zap"
)

type Handler struct {
	Users   *userstore.Store
	Limiter *ratelimit.LoginLimiter
	Log     *zap.Logger
}

func NewHandler(userStore *userstore.Store, limiter *ratelimit.LoginLimiter, logger *zap.Logger) *Handler {
	if limiter == nil {
		limiter = ratelimit.NewLoginLimiter()
	}
	return &Handler{Users: userStore, Limiter: limiter, Log: logger}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Role   string `json:"role"`
}

// ServeLogin handles POST /login. The generic "invalid email or password"
// answer covers unknown accounts and wrong passwords alike, so the endpoint
// does not leak which emails exist.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		shared.Error(w, http.StatusBadRequest, "email and password are required")
		return
	}

	if !h.Limiter.Check(r, email) {
		shared.Error(w, http.StatusTooManyRequests, "too many login attempts, try again later")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, membership.ErrNotFound) {
			shared.Error(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		h.Log.Error("login: load user", zap.Error(err))
		shared.Error(w, http.StatusInternalServerError, "a server error occurred")
		return
	}

	if u.Status == models.StatusDisabled {
		shared.Error(w, http.StatusForbidden, "account is disabled")
		return
	}
	if u.PasswordHash == "" || !authutil.CheckPassword(req.Password, u.PasswordHash) {
		h.Log.Warn("login: wrong password",
			zap.String("user_id", u.ID.Hex()),
			zap.String("ip", ratelimit.ClientIP(r)))
		shared.Error(w, http.StatusUnauthorized, "invalid email or password")
		return
	}

	role := u.Role
	if role == "" {
		role = authz.RoleUser
	}
	if err := auth.SignIn(w, r, auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.Name,
		Email: u.Email,
		Role:  role,
	}); err != nil {
		h.Log.Error("login: save session", zap.Error(err), zap.String("user_id", u.ID.Hex()))
		shared.Error(w, http.StatusInternalServerError, "unable to create session")
		return
	}

	h.Limiter.ResetEmail(email)
	h.Log.Info("login succeeded", zap.String("user_id", u.ID.Hex()))
	shared.JSON(w, http.StatusOK, loginResponse{UserID: u.ID.Hex(), Name: u.Name, Role: role})
}
