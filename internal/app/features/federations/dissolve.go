// internal/app/features/federations/dissolve.go
package federations

import (
	"context"
	"net/http"

	"github.com/clanhaven/clanhaven/internal/app/features/shared"
	"github.com/clanhaven/clanhaven/internal/app/policy/grouppolicy"
	"github.com/clanhaven/clanhaven/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// ServeDissolve handles POST /federations/{federationID}/dissolve.
// Attached clans survive and are detached before the federation record
// is removed.
func (h *Handler) ServeDissolve(w http.ResponseWriter, r *http.Request) {
	g, fedID, ok := h.loadFederation(w, r)
	if !ok {
		return
	}
	if !grouppolicy.CanDissolve(r, &g) {
		shared.Error(w, http.StatusForbidden, "only the leader or an admin may dissolve a federation")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Engine.Dissolve(ctx, fedID); err != nil {
		shared.EngineError(w, err)
		return
	}
	h.Log.Info("federation dissolved", zap.String("federation_id", fedID.Hex()))
	w.WriteHeader(http.StatusNoContent)
}
