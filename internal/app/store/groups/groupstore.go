// internal/app/store/groups/groupstore.go
package groupstore

import (
	"context"
	"errors"
	"time"

	"github.com/clanhaven/clanhaven/internal/app/membership"
	"github.com/clanhaven/clanhaven/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"

	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var ErrDuplicateGroupName = errors.New("a group with this name already exists for this kind")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("groups")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Group, error) {
	var g models.Group
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Group{}, membership.ErrNotFound
		}
		return models.Group{}, err
	}
	return g, nil
}

// Insert stores a new group document. The caller assigns the ID; version
// starts at 1 when unset.
func (s *Store) Insert(ctx context.Context, g models.Group) error {
	now := time.Now().UTC()
	if g.ID.IsZero() {
		g.ID = primitive.NewObjectID()
	}
	if g.NameCI == "" {
		g.NameCI = text.Fold(g.Name)
	}
	if g.Status == "" {
		g.Status = models.StatusActive
	}
	if g.Version == 0 {
		g.Version = 1
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	g.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, g); err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateGroupName
		}
		return err
	}
	return nil
}

// Save replaces the group document if its stored version still equals
// expected, bumping the version. A stale expected version returns
// membership.ErrVersionConflict.
func (s *Store) Save(ctx context.Context, g models.Group, expected int64) error {
	g.Version = expected + 1
	g.UpdatedAt = time.Now().UTC()
	res, err := s.c.ReplaceOne(ctx, bson.M{"_id": g.ID, "version": expected}, g)
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateGroupName
		}
		return err
	}
	if res.MatchedCount == 0 {
		return s.missOrConflict(ctx, g.ID)
	}
	return nil
}

// Delete removes the group document, version-checked like Save.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID, expected int64) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "version": expected})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return s.missOrConflict(ctx, id)
	}
	return nil
}

// WithMember returns every group of the kind whose member list contains
// userID, ordered by id.
func (s *Store) WithMember(ctx context.Context, kind models.GroupKind, userID primitive.ObjectID) ([]models.Group, error) {
	return s.find(ctx, bson.M{"kind": kind, "member_ids": userID})
}

// All returns every group ordered by id.
func (s *Store) All(ctx context.Context) ([]models.Group, error) {
	return s.find(ctx, bson.M{})
}

// ByKind returns every group of one kind ordered by id.
func (s *Store) ByKind(ctx context.Context, kind models.GroupKind) ([]models.Group, error) {
	return s.find(ctx, bson.M{"kind": kind})
}

func (s *Store) find(ctx context.Context, filter bson.M) ([]models.Group, error) {
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var groups []models.Group
	if err := cur.All(ctx, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func (s *Store) missOrConflict(ctx context.Context, id primitive.ObjectID) error {
	n, err := s.c.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n > 0 {
		return membership.ErrVersionConflict
	}
	return membership.ErrNotFound
}
