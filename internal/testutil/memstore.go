package testutil

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"github.com/clanhaven/clanhaven/internal/app/membership"
	"github.com/clanhaven/clanhaven/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemStore is an in-memory membership.Store with the same version-check
// semantics as the Mongo-backed adapter. Engine tests run against it so
// they need no database; it is safe for concurrent use.
type MemStore struct {
	mu         sync.Mutex
	groups     map[primitive.ObjectID]models.Group
	users      map[primitive.ObjectID]models.User
	groupFails map[primitive.ObjectID]error
}

var _ membership.Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{
		groups:     make(map[primitive.ObjectID]models.Group),
		users:      make(map[primitive.ObjectID]models.User),
		groupFails: make(map[primitive.ObjectID]error),
	}
}

// FailGroupLoads makes every load of the given group return err, for
// testing partial-failure paths.
func (s *MemStore) FailGroupLoads(id primitive.ObjectID, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.groupFails[id] = err
}

// PutGroup seeds a group, overwriting any stored version.
func (s *MemStore) PutGroup(g models.Group) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g.Version == 0 {
		g.Version = 1
	}
	s.groups[g.ID] = copyGroup(g)
}

// PutUser seeds a user, overwriting any stored version.
func (s *MemStore) PutUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.Version == 0 {
		u.Version = 1
	}
	s.users[u.ID] = u
}

// RemoveUser deletes a user record directly, modeling storage drift.
func (s *MemStore) RemoveUser(id primitive.ObjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
}

// GetGroup returns the stored group for assertions.
func (s *MemStore) GetGroup(id primitive.ObjectID) (models.Group, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.groups[id]
	return copyGroup(g), ok
}

// GetUser returns the stored user for assertions.
func (s *MemStore) GetUser(id primitive.ObjectID) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	return u, ok
}

// GroupCount returns the number of stored groups.
func (s *MemStore) GroupCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.groups)
}

func (s *MemStore) Group(ctx context.Context, id primitive.ObjectID) (models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.groupFails[id]; ok {
		return models.Group{}, err
	}
	g, ok := s.groups[id]
	if !ok {
		return models.Group{}, membership.ErrNotFound
	}
	return copyGroup(g), nil
}

func (s *MemStore) User(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, membership.ErrNotFound
	}
	return u, nil
}

func (s *MemStore) InsertGroup(ctx context.Context, g models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g.Version == 0 {
		g.Version = 1
	}
	s.groups[g.ID] = copyGroup(g)
	return nil
}

func (s *MemStore) SaveGroup(ctx context.Context, g models.Group, expected int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.groups[g.ID]
	if !ok {
		return membership.ErrNotFound
	}
	if cur.Version != expected {
		return membership.ErrVersionConflict
	}
	g.Version = expected + 1
	s.groups[g.ID] = copyGroup(g)
	return nil
}

func (s *MemStore) DeleteGroup(ctx context.Context, id primitive.ObjectID, expected int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.groups[id]
	if !ok {
		return membership.ErrNotFound
	}
	if cur.Version != expected {
		return membership.ErrVersionConflict
	}
	delete(s.groups, id)
	return nil
}

func (s *MemStore) SaveUser(ctx context.Context, u models.User, expected int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.users[u.ID]
	if !ok {
		return membership.ErrNotFound
	}
	if cur.Version != expected {
		return membership.ErrVersionConflict
	}
	u.Version = expected + 1
	s.users[u.ID] = u
	return nil
}

func (s *MemStore) GroupsWithMember(ctx context.Context, kind models.GroupKind, userID primitive.ObjectID) ([]models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Group
	for _, g := range s.groups {
		if g.Kind != kind {
			continue
		}
		gg := g
		if (&gg).HasMember(userID) {
			out = append(out, copyGroup(g))
		}
	}
	sortGroups(out)
	return out, nil
}

func (s *MemStore) Groups(ctx context.Context) ([]models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Group, 0, len(s.groups))
	for _, g := range s.groups {
		out = append(out, copyGroup(g))
	}
	sortGroups(out)
	return out, nil
}

func sortGroups(gs []models.Group) {
	sort.Slice(gs, func(i, j int) bool {
		return bytes.Compare(gs[i].ID[:], gs[j].ID[:]) < 0
	})
}

func copyGroup(g models.Group) models.Group {
	g.OfficerIDs = append([]primitive.ObjectID(nil), g.OfficerIDs...)
	g.MemberIDs = append([]primitive.ObjectID(nil), g.MemberIDs...)
	g.ClanIDs = append([]primitive.ObjectID(nil), g.ClanIDs...)
	if g.LeaderID != nil {
		id := *g.LeaderID
		g.LeaderID = &id
	}
	if g.ParentFederationID != nil {
		id := *g.ParentFederationID
		g.ParentFederationID = &id
	}
	return g
}
