// internal/app/features/federations/roles.go
package federations

import (
	"context"
	"net/http"

	"github.com/clanhaven/clanhaven/internal/app/features/shared"
	"github.com/clanhaven/clanhaven/internal/app/policy/grouppolicy"
	"github.com/clanhaven/clanhaven/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (h *Handler) roleOp(w http.ResponseWriter, r *http.Request,
	run func(ctx context.Context, groupID, userID primitive.ObjectID) error) {

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

	if !grouppolicy.CanManage(r, &g) {
		shared.Error(w, http.StatusForbidden, "only the leader or an admin may change roles")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := run(ctx, fedID, target); err != nil {
		shared.EngineError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ServePromote handles POST /federations/{federationID}/promote.
func (h *Handler) ServePromote(w http.ResponseWriter, r *http.Request) {
	h.roleOp(w, r, h.Engine.Promote)
}

// ServeDemote handles POST /federations/{federationID}/demote.
func (h *Handler) ServeDemote(w http.ResponseWriter, r *http.Request) {
	h.roleOp(w, r, h.Engine.Demote)
}

// ServeTransfer handles POST /federations/{federationID}/transfer.
func (h *Handler) ServeTransfer(w http.ResponseWriter, r *http.Request) {
	h.roleOp(w, r, h.Engine.TransferLeadership)
}
