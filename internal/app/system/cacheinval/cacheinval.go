// internal/app/system/cacheinval/cacheinval.go
package cacheinval

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Invalidator is told which entity ids now have stale cached
// representations. The engine calls it after every successful mutation
// with the group id, every affected user id, and the parent federation id
// when one was touched.
type Invalidator interface {
	Invalidate(ctx context.Context, ids ...primitive.ObjectID)
}

// Log records invalidations in the application log. Useful in development
// and as a default when no cache tier is wired.
type Log struct {
	log *zap.Logger
}

func NewLog(logger *zap.Logger) *Log {
	return &Log{log: logger}
}

func (l *Log) Invalidate(ctx context.Context, ids ...primitive.ObjectID) {
	if len(ids) == 0 {
		return
	}
	hexes := make([]string, len(ids))
	for i, id := range ids {
		hexes[i] = id.Hex()
	}
	l.log.Debug("cache invalidate", zap.Strings("entity_ids", hexes))
}

// Multi fans an invalidation out to several invalidators.
type Multi []Invalidator

func (m Multi) Invalidate(ctx context.Context, ids ...primitive.ObjectID) {
	for _, inv := range m {
		inv.Invalidate(ctx, ids...)
	}
}

// Nop ignores invalidations.
type Nop struct{}

func (Nop) Invalidate(context.Context, ...primitive.ObjectID) {}
