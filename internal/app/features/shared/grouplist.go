// internal/app/features/shared/grouplist.go
package shared

import (
	"bytes"
	"context"
	"net/http"
	"sort"

	"github.com/clanhaven/clanhaven/internal/app/membership"
	"github.com/clanhaven/clanhaven/internal/app/system/paging"
	"github.com/clanhaven/clanhaven/internal/app/system/search"
	"github.com/clanhaven/clanhaven/internal/app/system/timeouts"
	"github.com/clanhaven/clanhaven/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ServeGroupList answers a paged listing of groups of one kind, sorted by
// folded name. The "q" parameter filters by name; "limit" and "after"
// page through the result.
func ServeGroupList(w http.ResponseWriter, r *http.Request, store membership.Store, kind models.GroupKind, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	all, err := store.Groups(ctx)
	if err != nil {
		log.Error("list groups", zap.String("kind", string(kind)), zap.Error(err))
		Error(w, http.StatusInternalServerError, "a server error occurred")
		return
	}

	q := search.Normalize(query.Get(r, "q"))
	out := all[:0:0]
	for _, g := range all {
		if g.Kind == kind && search.MatchesName(g.NameCI, q) {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].NameCI != out[j].NameCI {
			return out[i].NameCI < out[j].NameCI
		}
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) < 0
	})

	page, next := paging.Page(out, paging.Parse(r),
		func(g models.Group) string { return g.NameCI },
		func(g models.Group) primitive.ObjectID { return g.ID })

	JSON(w, http.StatusOK, GroupList{Groups: ViewOfGroups(page), NextCursor: next})
}
