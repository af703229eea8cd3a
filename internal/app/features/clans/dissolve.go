// internal/app/features/clans/dissolve.go
package clans

import (
	"context"
	"net/http"

	"github.com/clanhaven/clanhaven/internal/app/features/shared"
	"github.com/clanhaven/clanhaven/internal/app/policy/grouppolicy"
	"github.com/clanhaven/clanhaven/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// ServeDissolve handles POST /clans/{clanID}/dissolve.
func (h *Handler) ServeDissolve(w http.ResponseWriter, r *http.Request) {
	g, clanID, ok := h.loadClan(w, r)
	if !ok {
		return
	}
	if !grouppolicy.CanDissolve(r, &g) {
		shared.Error(w, http.StatusForbidden, "only the leader or an admin may dissolve a clan")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Engine.Dissolve(ctx, clanID); err != nil {
		shared.EngineError(w, err)
		return
	}
	h.Log.Info("clan dissolved", zap.String("clan_id", clanID.Hex()))
	w.WriteHeader(http.StatusNoContent)
}
