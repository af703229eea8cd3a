// internal/app/features/clans/members.go
package clans

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

// ServeJoin handles POST /clans/{clanID}/join.
func (h *Handler) ServeJoin(w http.ResponseWriter, r *http.Request) {
	_, clanID, ok := h.loadClan(w, r)
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

	if err := h.Engine.Join(ctx, clanID, target, req.AdminOverride); err != nil {
		shared.EngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ServeLeave handles POST /clans/{clanID}/leave. Leaving as leader hands
// leadership to the next eligible member, or dissolves a clan with no one
// left.
func (h *Handler) ServeLeave(w http.ResponseWriter, r *http.Request) {
	_, clanID, ok := h.loadClan(w, r)
	if !ok {
		return
	}
	_, _, uid, _ := authz.UserCtx(r)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Engine.Leave(ctx, clanID, uid); err != nil {
		shared.EngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ServeKick handles POST /clans/{clanID}/kick.
func (h *Handler) ServeKick(w http.ResponseWriter, r *http.Request) {
	g, clanID, ok := h.loadClan(w, r)
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

	if err := h.Engine.Kick(ctx, clanID, uid, target); err != nil {
		shared.EngineError(w, err)
		return
	}
	h.Log.Info("member kicked",
		zap.String("clan_id", clanID.Hex()),
		zap.String("target_id", target.Hex()),
		zap.String("actor_id", uid.Hex()))
	w.WriteHeader(http.StatusNoContent)
}
