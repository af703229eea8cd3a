// internal/app/membership/join.go
package membership

import (
	"context"
	"errors"

	"github.com/clanhaven/clanhaven/internal/app/membership/cascade"
	"github.com/clanhaven/clanhaven/internal/app/system/events"
	"github.com/clanhaven/clanhaven/internal/app/system/grouplock"
	"github.com/clanhaven/clanhaven/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Join adds userID to the group. adminOverride lets an administrator place
// a user who already belongs to another group of the same kind: the user
// is removed from that group in the same mutation, with leadership
// succession running there exactly as for Leave, so neither group is left
// inconsistent.
func (s *Service) Join(ctx context.Context, groupID, userID primitive.ObjectID, adminOverride bool) error {
	const maxAttempts = 3
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := s.withGroup(ctx, groupID, false, func(ctx context.Context, g models.Group) (*cascade.Batch, []events.Event, error) {
			if g.HasMember(userID) {
				return nil, nil, ErrAlreadyMember
			}
			if len(g.MemberIDs) >= s.memberCap(g.Kind) {
				return nil, nil, ErrGroupFull
			}

			u, err := s.store.User(ctx, userID)
			if err != nil {
				return nil, nil, err
			}
			if id, _ := u.Membership(g.Kind); id != nil && *id != g.ID {
				if !adminOverride {
					return nil, nil, ErrAlreadyInAnotherGroup
				}
				other, err := s.store.Group(ctx, *id)
				switch {
				case err == nil && other.HasMember(userID):
					return nil, nil, &moveRequired{from: *id}
				case err != nil && !errors.Is(err, ErrNotFound):
					return nil, nil, err
				}
				// Stale pointer with no backing membership; the join below
				// overwrites it.
			}

			batch := cascade.Join(g, u)

			ev := events.New(events.MemberJoined, g.ID, userID)
			if g.LeaderID == nil {
				// First member of a forming group becomes leader.
				lid := userID
				ev.NewLeaderID = &lid
			}
			return batch, []events.Event{ev}, nil
		})

		var mv *moveRequired
		if !errors.As(err, &mv) {
			return err
		}
		err = s.moveMember(ctx, groupID, mv.from, userID)
		if !errors.Is(err, errMembershipShifted) {
			return err
		}
		// The conflicting membership vanished while we waited; retry as a
		// plain join.
	}
	return ErrVersionConflict
}

// moveRequired signals that an override join must also remove the user
// from the group their membership field points at.
type moveRequired struct {
	from primitive.ObjectID
}

func (m *moveRequired) Error() string {
	return "join: user must be moved from group " + m.from.Hex()
}

// errMembershipShifted aborts a move whose conflicting membership
// disappeared between discovery and lock acquisition.
var errMembershipShifted = errors.New("conflicting membership changed during lock acquisition")

// moveMember re-homes userID from group fromID into group toID as one
// batch under both groups' locks. Removal from the old group runs full
// leadership succession, so the old group never keeps a member whose
// back-reference points elsewhere.
func (s *Service) moveMember(ctx context.Context, toID, fromID, userID primitive.ObjectID) error {
	const maxAttempts = 3
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		from, err := s.store.Group(ctx, fromID)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return errMembershipShifted
			}
			return err
		}
		to, err := s.store.Group(ctx, toID)
		if err != nil {
			return err
		}
		keys := append(lockKeys(from, true), grouplock.Key{Kind: to.Kind, ID: to.ID})

		release, err := s.locks.Acquire(ctx, keys...)
		if err != nil {
			if errors.Is(err, grouplock.ErrTimeout) {
				return ErrLockTimeout
			}
			return err
		}

		err = func() error {
			// Re-read both sides under the locks.
			from, err := s.store.Group(ctx, fromID)
			if err != nil {
				if errors.Is(err, ErrNotFound) {
					return errMembershipShifted
				}
				return err
			}
			to, err := s.store.Group(ctx, toID)
			if err != nil {
				return err
			}
			if !sameLockSet(keys, append(lockKeys(from, true), grouplock.Key{Kind: to.Kind, ID: to.ID})) {
				return errLinkageChanged
			}
			u, err := s.store.User(ctx, userID)
			if err != nil {
				return err
			}

			if to.HasMember(userID) {
				return ErrAlreadyMember
			}
			if len(to.MemberIDs) >= s.memberCap(to.Kind) {
				return ErrGroupFull
			}
			if id, _ := u.Membership(to.Kind); id == nil || *id != from.ID || !from.HasMember(userID) {
				return errMembershipShifted
			}

			batch, evs, _, err := s.removalBatch(ctx, from, u, events.MemberLeft)
			if err != nil {
				return err
			}
			cascade.MergeJoin(batch, to, userID)

			ev := events.New(events.MemberJoined, to.ID, userID)
			if to.LeaderID == nil {
				lid := userID
				ev.NewLeaderID = &lid
			}
			evs = append(evs, ev)
			return s.commit(ctx, batch, evs)
		}()
		release()

		if errors.Is(err, errLinkageChanged) {
			continue
		}
		return err
	}
	return ErrVersionConflict
}
