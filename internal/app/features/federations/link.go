// internal/app/features/federations/link.go
package federations

import (
	"context"
	"net/http"

	"github.com/clanhaven/clanhaven/internal/app/features/shared"
	"github.com/clanhaven/clanhaven/internal/app/policy/grouppolicy"
	"github.com/clanhaven/clanhaven/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// ServeAttachClan handles POST /federations/{federationID}/clans/{clanID}.
func (h *Handler) ServeAttachClan(w http.ResponseWriter, r *http.Request) {
	g, fedID, ok := h.loadFederation(w, r)
	if !ok {
		return
	}
	clanID, err := shared.URLObjectID(r, "clanID")
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid clan id")
		return
	}
	if !grouppolicy.CanLink(r, &g) {
		shared.Error(w, http.StatusForbidden, "only the federation leader or an admin may attach clans")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Engine.AttachClan(ctx, fedID, clanID); err != nil {
		shared.EngineError(w, err)
		return
	}
	h.Log.Info("clan attached",
		zap.String("federation_id", fedID.Hex()),
		zap.String("clan_id", clanID.Hex()))
	w.WriteHeader(http.StatusNoContent)
}

// ServeDetachClan handles DELETE /federations/{federationID}/clans/{clanID}.
func (h *Handler) ServeDetachClan(w http.ResponseWriter, r *http.Request) {
	g, fedID, ok := h.loadFederation(w, r)
	if !ok {
		return
	}
	clanID, err := shared.URLObjectID(r, "clanID")
	if err != nil {
		shared.Error(w, http.StatusBadRequest, "invalid clan id")
		return
	}
	if !grouppolicy.CanLink(r, &g) {
		shared.Error(w, http.StatusForbidden, "only the federation leader or an admin may detach clans")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Engine.DetachClan(ctx, fedID, clanID); err != nil {
		shared.EngineError(w, err)
		return
	}
	h.Log.Info("clan detached",
		zap.String("federation_id", fedID.Hex()),
		zap.String("clan_id", clanID.Hex()))
	w.WriteHeader(http.StatusNoContent)
}
