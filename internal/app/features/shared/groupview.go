// internal/app/features/shared/groupview.go
package shared

import (
	"time"

	"github.com/clanhaven/clanhaven/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GroupView is the JSON shape for a clan or federation.
type GroupView struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	LeaderID    string    `json:"leader_id,omitempty"`
	OfficerIDs  []string  `json:"officer_ids"`
	MemberIDs   []string  `json:"member_ids"`
	ParentID    string    `json:"parent_federation_id,omitempty"`
	ClanIDs     []string  `json:"clan_ids,omitempty"`
	MemberCount int       `json:"member_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// ViewOfGroup converts a group document to its JSON view.
func ViewOfGroup(g models.Group) GroupView {
	v := GroupView{
		ID:          g.ID.Hex(),
		Kind:        string(g.Kind),
		Name:        g.Name,
		Description: g.Description,
		Status:      g.Status,
		OfficerIDs:  hexAll(g.OfficerIDs),
		MemberIDs:   hexAll(g.MemberIDs),
		MemberCount: len(g.MemberIDs),
		CreatedAt:   g.CreatedAt,
	}
	if g.LeaderID != nil {
		v.LeaderID = g.LeaderID.Hex()
	}
	if g.ParentFederationID != nil {
		v.ParentID = g.ParentFederationID.Hex()
	}
	if len(g.ClanIDs) > 0 {
		v.ClanIDs = hexAll(g.ClanIDs)
	}
	return v
}

// GroupList is the JSON shape for a paged group listing.
type GroupList struct {
	Groups     []GroupView `json:"groups"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

// ViewOfGroups converts a slice of group documents.
func ViewOfGroups(gs []models.Group) []GroupView {
	out := make([]GroupView, len(gs))
	for i, g := range gs {
		out[i] = ViewOfGroup(g)
	}
	return out
}

func hexAll(ids []primitive.ObjectID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.Hex()
	}
	return out
}
