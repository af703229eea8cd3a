// internal/app/features/clans/view.go
package clans

import (
	"net/http"

	"github.com/clanhaven/clanhaven/internal/app/features/shared"
	"github.com/clanhaven/clanhaven/internal/domain/models"
)

// ServeView handles GET /clans/{clanID}.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	g, _, ok := h.loadClan(w, r)
	if !ok {
		return
	}
	shared.JSON(w, http.StatusOK, shared.ViewOfGroup(g))
}

// ServeList handles GET /clans. Supports q/limit/after parameters.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	shared.ServeGroupList(w, r, h.Store, models.KindClan, h.Log)
}
