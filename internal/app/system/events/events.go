// internal/app/system/events/events.go
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Kind enumerates the domain events the membership engine emits after a
// successful mutation. Delivery (sockets, push, logs) is entirely the
// notifier's responsibility.
type Kind string

const (
	GroupCreated          Kind = "group_created"
	MemberJoined          Kind = "member_joined"
	MemberLeft            Kind = "member_left"
	MemberKicked          Kind = "member_kicked"
	OfficerPromoted       Kind = "officer_promoted"
	OfficerDemoted        Kind = "officer_demoted"
	LeadershipTransferred Kind = "leadership_transferred"
	GroupDissolved        Kind = "group_dissolved"
	ClanAttached          Kind = "clan_attached"
	ClanDetached          Kind = "clan_detached"
	UserPurged            Kind = "user_purged"
)

// Event carries the identifiers a consumer needs to react to a mutation.
type Event struct {
	ID          uuid.UUID
	Kind        Kind
	GroupID     primitive.ObjectID
	UserIDs     []primitive.ObjectID
	OldLeaderID *primitive.ObjectID
	NewLeaderID *primitive.ObjectID
	At          time.Time
}

// New builds an event with a fresh id and timestamp.
func New(kind Kind, groupID primitive.ObjectID, userIDs ...primitive.ObjectID) Event {
	return Event{
		ID:      uuid.New(),
		Kind:    kind,
		GroupID: groupID,
		UserIDs: userIDs,
		At:      time.Now().UTC(),
	}
}

// Notifier receives events after the owning mutation has persisted.
// Implementations must not block the mutation path for long.
type Notifier interface {
	Notify(ctx context.Context, ev Event)
}

// LogNotifier writes events to the application log. It is the default
// notifier and the fallback when no delivery backend is configured.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{log: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, ev Event) {
	fields := []zap.Field{
		zap.String("event_id", ev.ID.String()),
		zap.String("kind", string(ev.Kind)),
		zap.String("group_id", ev.GroupID.Hex()),
		zap.Int("users", len(ev.UserIDs)),
	}
	if ev.OldLeaderID != nil {
		fields = append(fields, zap.String("old_leader_id", ev.OldLeaderID.Hex()))
	}
	if ev.NewLeaderID != nil {
		fields = append(fields, zap.String("new_leader_id", ev.NewLeaderID.Hex()))
	}
	n.log.Info("domain event", fields...)
}

// Nop discards events.
type Nop struct{}

func (Nop) Notify(context.Context, Event) {}
