// internal/app/features/clans/handler.go
package clans

import (
	"context"
	"net/http"

	"github.com/clanhaven/clanhaven/internal/app/features/shared"
	"github.com/clanhaven/clanhaven/internal/app/membership"
	"github.com/clanhaven/clanhaven/internal/app/system/timeouts"
	"github.com/clanhaven/clanhaven/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler serves the clan endpoints. Mutations go through the membership
// engine; reads go straight to the store.
type Handler struct {
	Engine *membership.Service
	Store  membership.Store
	Log    *zap.Logger
}

func NewHandler(engine *membership.Service, store membership.Store, logger *zap.Logger) *Handler {
	return &Handler{Engine: engine, Store: store, Log: logger}
}

// loadClan fetches the group and answers 404/422 itself when it cannot.
// The read is advisory (policy checks, kind checks); the engine re-reads
// under the group lock before mutating.
func (h *Handler) loadClan(w http.ResponseWriter, r *http.Request) (models.Group, primitive.ObjectID, bool) {
	id, err := shared.URLObjectID(r, "clanID")
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid clan id")
		return models.Group{}, primitive.NilObjectID, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	g, err := h.Store.Group(ctx, id)
	if err != nil {
		shared.EngineError(w, err)
		return models.Group{}, primitive.NilObjectID, false
	}
	if g.Kind != models.KindClan {
		shared.Error(w, http.StatusNotFound, "no such clan")
		return models.Group{}, primitive.NilObjectID, false
	}
	return g, id, true
}
