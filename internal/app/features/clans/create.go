// internal/app/features/clans/create.go
package clans

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/clanhaven/clanhaven/internal/app/features/shared"
	groupstore "github.com/clanhaven/clanhaven/internal/app/store/groups"
	"github.com/clanhaven/clanhaven/internal/app/system/authz"
	"github.com/clanhaven/clanhaven/internal/app/system/htmlsanitize"
	"github.com/clanhaven/clanhaven/internal/app/system/limits"
	"github.com/clanhaven/clanhaven/internal/app/system/timeouts"
	"github.com/clanhaven/clanhaven/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ServeCreate handles POST /clans.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name := strings.TrimSpace(htmlsanitize.PlainText(req.Name))
	if name == "" || len(name) > limits.MaxNameLen {
		shared.Error(w, http.StatusBadRequest, "clan name is required and must be at most 120 characters")
		return
	}
	desc := htmlsanitize.Sanitize(req.Description)
	if len(desc) > limits.MaxDescriptionLen {
		shared.Error(w, http.StatusBadRequest, "description too long")
		return
	}

	leaderID, ok := h.resolveLeader(w, r, req)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	g, err := h.Engine.CreateGroup(ctx, models.KindClan, name, desc, leaderID)
	if err != nil {
		if errors.Is(err, groupstore.ErrDuplicateGroupName) {
			shared.Error(w, http.StatusConflict, "a clan with this name already exists")
			return
		}
		h.Log.Error("create clan", zap.Error(err), zap.String("name", name))
		shared.EngineError(w, err)
		return
	}

	shared.JSON(w, http.StatusCreated, shared.ViewOfGroup(g))
}

// resolveLeader decides who leads the new group. Regular users always lead
// what they create; admins may name another leader or start a forming
// group with none.
func (h *Handler) resolveLeader(w http.ResponseWriter, r *http.Request, req createRequest) (*primitive.ObjectID, bool) {
	_, _, uid, signedIn := authz.UserCtx(r)
	if !signedIn {
		shared.Error(w, http.StatusUnauthorized, "unauthorized")
		return nil, false
	}

	if !authz.IsAdmin(r) {
		if req.LeaderID != "" || req.Forming {
			shared.Error(w, http.StatusForbidden, "only admins may create a clan for someone else")
			return nil, false
		}
		return &uid, true
	}

	if req.Forming {
		return nil, true
	}
	if req.LeaderID == "" {
		return &uid, true
	}
	lid, err := primitive.ObjectIDFromHex(req.LeaderID)
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid leader id")
		return nil, false
	}
	return &lid, true
}
