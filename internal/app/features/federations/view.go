// internal/app/features/federations/view.go
package federations

import (
	"net/http"

	"github.com/clanhaven/clanhaven/internal/app/features/shared"
	"github.com/clanhaven/clanhaven/internal/domain/models"
)

// ServeView handles GET /federations/{federationID}.
func (h *Handler) ServeView(w http.ResponseWriter, r *http.Request) {
	g, _, ok := h.loadFederation(w, r)
	if !ok {
		return
	}
	shared.JSON(w, http.StatusOK, shared.ViewOfGroup(g))
}

// ServeList handles GET /federations. Supports q/limit/after parameters.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	shared.ServeGroupList(w, r, h.Store, models.KindFederation, h.Log)
}
