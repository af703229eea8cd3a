package testutil

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/clanhaven/clanhaven/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
// Repeated calls accumulate parameters on the same route context.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// TestContext returns a context with the standard per-test deadline.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// Fixtures seeds a MemStore with mutually consistent group and user
// records so each test does not hand-build both sides of every
// membership edge.
type Fixtures struct {
	store *MemStore
	t     *testing.T
	seq   int
}

func NewFixtures(t *testing.T, store *MemStore) *Fixtures {
	t.Helper()
	return &Fixtures{store: store, t: t}
}

// Store returns the underlying MemStore for direct assertions.
func (f *Fixtures) Store() *MemStore { return f.store }

// CreateUser seeds a user with no group affiliations.
func (f *Fixtures) CreateUser(name string) models.User {
	f.t.Helper()
	f.seq++
	now := time.Now().UTC()
	u := models.User{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Email:     fmt.Sprintf("%s%d@test.example", text.Fold(name), f.seq),
		Status:    models.StatusActive,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.store.PutUser(u)
	return u
}

// CreateGroup seeds an active group whose first member is the leader,
// wiring the back-references on every given user. officers must be a
// subset of members (excluding the leader). The member order passed in is
// the join order.
func (f *Fixtures) CreateGroup(kind models.GroupKind, name string, leader models.User, officers []models.User, members ...models.User) models.Group {
	f.t.Helper()
	now := time.Now().UTC()

	lid := leader.ID
	g := models.Group{
		ID:        primitive.NewObjectID(),
		Kind:      kind,
		Name:      name,
		NameCI:    text.Fold(name),
		LeaderID:  &lid,
		MemberIDs: []primitive.ObjectID{leader.ID},
		Status:    models.StatusActive,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	officerSet := make(map[primitive.ObjectID]bool, len(officers))
	for _, o := range officers {
		officerSet[o.ID] = true
	}

	f.bindUser(leader, &g, models.RoleLeader)
	for _, m := range members {
		g.MemberIDs = append(g.MemberIDs, m.ID)
		role := models.RoleMember
		if officerSet[m.ID] {
			g.OfficerIDs = append(g.OfficerIDs, m.ID)
			role = models.RoleOfficer
		}
		f.bindUser(m, &g, role)
	}

	f.store.PutGroup(g)
	return g
}

// CreateClan seeds a clan; see CreateGroup.
func (f *Fixtures) CreateClan(name string, leader models.User, officers []models.User, members ...models.User) models.Group {
	f.t.Helper()
	return f.CreateGroup(models.KindClan, name, leader, officers, members...)
}

// CreateFederation seeds a federation; see CreateGroup.
func (f *Fixtures) CreateFederation(name string, leader models.User, officers []models.User, members ...models.User) models.Group {
	f.t.Helper()
	return f.CreateGroup(models.KindFederation, name, leader, officers, members...)
}

// AttachClan wires the clan/federation linkage on both sides.
func (f *Fixtures) AttachClan(fed, clan models.Group) (models.Group, models.Group) {
	f.t.Helper()
	stored, ok := f.store.GetGroup(fed.ID)
	if !ok {
		f.t.Fatalf("federation %s not seeded", fed.ID.Hex())
	}
	stored.ClanIDs = append(stored.ClanIDs, clan.ID)
	f.store.PutGroup(stored)

	c, ok := f.store.GetGroup(clan.ID)
	if !ok {
		f.t.Fatalf("clan %s not seeded", clan.ID.Hex())
	}
	fid := fed.ID
	c.ParentFederationID = &fid
	f.store.PutGroup(c)
	return stored, c
}

func (f *Fixtures) bindUser(u models.User, g *models.Group, role models.Role) {
	f.t.Helper()
	stored, ok := f.store.GetUser(u.ID)
	if !ok {
		f.t.Fatalf("user %s not seeded before group %s", u.ID.Hex(), g.Name)
	}
	gid := g.ID
	stored.SetMembership(g.Kind, &gid, role)
	f.store.PutUser(stored)
}
