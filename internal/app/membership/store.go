// internal/app/membership/store.go
package membership

import (
	"context"

	"github.com/clanhaven/clanhaven/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Store is the entity store adapter the engine mutates through. Saves and
// deletes carry the version the caller read; implementations must reject a
// stale version with ErrVersionConflict and a missing entity with
// ErrNotFound. The engine's correctness relies on the per-group serializer;
// the version check is the safety net against lock-less writers.
type Store interface {
	Group(ctx context.Context, id primitive.ObjectID) (models.Group, error)
	User(ctx context.Context, id primitive.ObjectID) (models.User, error)

	InsertGroup(ctx context.Context, g models.Group) error
	SaveGroup(ctx context.Context, g models.Group, expected int64) error
	DeleteGroup(ctx context.Context, id primitive.ObjectID, expected int64) error
	SaveUser(ctx context.Context, u models.User, expected int64) error

	// GroupsWithMember returns every group of the given kind whose member
	// list contains userID, ordered by group ID. The purge orchestrator
	// enumerates group-side so that drifted data (a user referenced by more
	// groups than their own membership fields admit) is still cleaned up.
	GroupsWithMember(ctx context.Context, kind models.GroupKind, userID primitive.ObjectID) ([]models.Group, error)

	// Groups returns all groups ordered by ID. Used by the repair sweep.
	Groups(ctx context.Context) ([]models.Group, error)
}
