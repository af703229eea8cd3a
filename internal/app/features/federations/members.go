// internal/app/features/federations/members.go
package federations

import (
	"context"
	"net/http"

	"github.com/clanhaven/clanhaven/internal/app/features/shared"
	"github.com/clanhaven/clanhaven/internal/app/policy/grouppolicy"
	"github.com/clanhaven/clanhaven/internal/app/system/authz"
	"github.com/clanhaven/clanhaven/internal/app/system/timeouts"
	"github.com/clanhaven/clanhaven/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type joinRequest struct {
	UserID        string `json:"user_id,omitempty"`
	AdminOverride bool   `json:"admin_override,omitempty"`
}

// ServeJoin handles POST /federations/{federationID}/join. Federations
// hold direct members the same way clans do, with a smaller cap.
func (h *Handler) ServeJoin(w http.ResponseWriter, r *http.Request) {
	_, fedID, ok := h.loadFederation(w, r)
	if !ok {
		return
	}

	var req joinRequest
	if r.ContentLength > 0 {
		if err := shared.DecodeJSON(r, &req); err != nil {
			shared.Error(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	_, _, uid, _ := authz.UserCtx(r)
	target := uid
	if req.UserID != "" {
		id, err := primitive.ObjectIDFromHex(req.UserID)
		if err != nil {
			shared.Error(w, http.StatusBadRequest, "invalid user id")
			return
		}
		target = id
	}
	if (target != uid || req.AdminOverride) && !authz.IsAdmin(r) {
		shared.Error(w, http.StatusForbidden, "only admins may place other users")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Engine.Join(ctx, fedID, target, req.AdminOverride); err != nil {
		shared.EngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ServeLeave handles POST /federations/{federationID}/leave.
func (h *Handler) ServeLeave(w http.ResponseWriter, r *http.Request) {
	_, fedID, ok := h.loadFederation(w, r)
	if !ok {
		return
	}
	_, _, uid, _ := authz.UserCtx(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Engine.Leave(ctx, fedID, uid); err != nil {
		shared.EngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ServeKick handles POST /federations/{federationID}/kick.
func (h *Handler) ServeKick(w http.ResponseWriter, r *http.Request) {
	g, fedID, ok := h.loadFederation(w, r)
	if !ok {
		return
	}

	var req memberRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	target, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if !grouppolicy.CanKick(r, &g, models.User{ID: target}) {
		shared.Error(w, http.StatusForbidden, "not allowed to kick this member")
		return
	}
	_, _, uid, _ := authz.UserCtx(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Engine.Kick(ctx, fedID, uid, target); err != nil {
		shared.EngineError(w, err)
		return
	}
	h.Log.Info("member kicked",
		zap.String("federation_id", fedID.Hex()),
		zap.String("target_id", target.Hex()),
		zap.String("actor_id", uid.Hex()))
	w.WriteHeader(http.StatusNoContent)
}
