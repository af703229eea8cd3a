// internal/app/features/federations/handler.go
package federations

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/clanhaven/clanhaven/internal/app/features/shared"
	"github.com/clanhaven/clanhaven/internal/app/membership"
	groupstore "github.com/clanhaven/clanhaven/internal/app/store/groups"
	"github.com/clanhaven/clanhaven/internal/app/system/authz"
	"github.com/clanhaven/clanhaven/internal/app/system/htmlsanitize"
	"github.com/clanhaven/clanhaven/internal/app/system/limits"
	"github.com/clanhaven/clanhaven/internal/app/system/timeouts"
	"github.com/clanhaven/clanhaven/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves the federation endpoints.
type Handler struct {
	Engine *membership.Service
	Store  membership.Store
	Log    *zap.Logger
}

func NewHandler(engine *membership.Service, store membership.Store, logger *zap.Logger) *Handler {
	return &Handler{Engine: engine, Store: store, Log: logger}
}

type createRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	LeaderID    string `json:"leader_id,omitempty"`
	Forming     bool   `json:"forming,omitempty"`
}

type memberRequest struct {
	UserID string `json:"user_id"`
}

func (h *Handler) loadFederation(w http.ResponseWriter, r *http.Request) (models.Group, primitive.ObjectID, bool) {
	id, err := shared.URLObjectID(r, "federationID")
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid federation id")
		return models.Group{}, primitive.NilObjectID, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	g, err := h.Store.Group(ctx, id)
	if err != nil {
		shared.EngineError(w, err)
		return models.Group{}, primitive.NilObjectID, false
	}
	if g.Kind != models.KindFederation {
		shared.Error(w, http.StatusNotFound, "no such federation")
		return models.Group{}, primitive.NilObjectID, false
	}
	return g, id, true
}

// ServeCreate handles POST /federations. Same leader resolution rules as
// clan creation: users lead what they create, admins may bootstrap.
func (h *Handler) ServeCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	name := strings.TrimSpace(htmlsanitize.PlainText(req.Name))
	if name == "" || len(name) > limits.MaxNameLen {
		shared.Error(w, http.StatusBadRequest, "federation name is required and must be at most 120 characters")
		return
	}
	desc := htmlsanitize.Sanitize(req.Description)
	if len(desc) > limits.MaxDescriptionLen {
		shared.Error(w, http.StatusBadRequest, "description too long")
		return
	}

	_, _, uid, signedIn := authz.UserCtx(r)
	if !signedIn {
		shared.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var leaderID *primitive.ObjectID
	switch {
	case !authz.IsAdmin(r):
		if req.LeaderID != "" || req.Forming {
			shared.Error(w, http.StatusForbidden, "only admins may create a federation for someone else")
			return
		}
		leaderID = &uid
	case req.Forming:
		leaderID = nil
	case req.LeaderID != "":
		lid, err := primitive.ObjectIDFromHex(req.LeaderID)
		if err != nil {
			shared.Error(w, http.StatusBadRequest, "invalid leader id")
			return
		}
		leaderID = &lid
	default:
		leaderID = &uid
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	g, err := h.Engine.CreateGroup(ctx, models.KindFederation, name, desc, leaderID)
	if err != nil {
		if errors.Is(err, groupstore.ErrDuplicateGroupName) {
			shared.Error(w, http.StatusConflict, "a federation with this name already exists")
			return
		}
		h.Log.Error("create federation", zap.Error(err), zap.String("name", name))
		shared.EngineError(w, err)
		return
	}

	shared.JSON(w, http.StatusCreated, shared.ViewOfGroup(g))
}
