// internal/app/membership/purge.go
package membership

import (
	"context"

	"github.com/clanhaven/clanhaven/internal/app/system/events"
	"github.com/clanhaven/clanhaven/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// PurgeError records one group the purge could not process.
type PurgeError struct {
	GroupID primitive.ObjectID `json:"group_id"`
	Kind    models.GroupKind   `json:"kind"`
	Err     string             `json:"error"`
}

// PurgeResult is the aggregated tally of a purge run. "Transferred" counts
// groups the user led that found a successor; "Dissolved" counts groups
// that died with them; "Left" counts plain departures.
type PurgeResult struct {
	ClansTransferred       int          `json:"clans_transferred"`
	ClansDissolved         int          `json:"clans_dissolved"`
	ClansLeft              int          `json:"clans_left"`
	FederationsTransferred int          `json:"federations_transferred"`
	FederationsDissolved   int          `json:"federations_dissolved"`
	FederationsLeft        int          `json:"federations_left"`
	Errors                 []PurgeError `json:"errors,omitempty"`
}

// Failed reports how many groups could not be processed.
func (r *PurgeResult) Failed() int { return len(r.Errors) }

// Purge removes userID from every group that references them, resolving
// succession or dissolution per group. Groups are enumerated group-side
// (by member list, not by the user's own fields) so drifted data is still
// cleaned up. Each group is processed independently: one failure is
// recorded in the tally and does not abort the rest. The enumeration order
// is ascending group id, stable within a run.
func (s *Service) Purge(ctx context.Context, userID primitive.ObjectID) (PurgeResult, error) {
	var res PurgeResult

	clans, err := s.store.GroupsWithMember(ctx, models.KindClan, userID)
	if err != nil {
		return res, err
	}
	for _, g := range clans {
		switch outcome, err := s.removeMember(ctx, g.ID, userID, events.MemberLeft); {
		case err != nil:
			res.Errors = append(res.Errors, PurgeError{GroupID: g.ID, Kind: g.Kind, Err: err.Error()})
			s.log.Warn("purge: clan removal failed",
				zap.String("group_id", g.ID.Hex()),
				zap.String("user_id", userID.Hex()),
				zap.Error(err))
		case outcome == outcomeTransferred:
			res.ClansTransferred++
		case outcome == outcomeDissolved:
			res.ClansDissolved++
		default:
			res.ClansLeft++
		}
	}

	feds, err := s.store.GroupsWithMember(ctx, models.KindFederation, userID)
	if err != nil {
		return res, err
	}
	for _, g := range feds {
		switch outcome, err := s.removeMember(ctx, g.ID, userID, events.MemberLeft); {
		case err != nil:
			res.Errors = append(res.Errors, PurgeError{GroupID: g.ID, Kind: g.Kind, Err: err.Error()})
			s.log.Warn("purge: federation removal failed",
				zap.String("group_id", g.ID.Hex()),
				zap.String("user_id", userID.Hex()),
				zap.Error(err))
		case outcome == outcomeTransferred:
			res.FederationsTransferred++
		case outcome == outcomeDissolved:
			res.FederationsDissolved++
		default:
			res.FederationsLeft++
		}
	}

	if err := s.clearResidualMembership(ctx, userID); err != nil {
		res.Errors = append(res.Errors, PurgeError{Err: err.Error()})
	}

	s.notifier.Notify(ctx, events.New(events.UserPurged, primitive.NilObjectID, userID))
	s.cache.Invalidate(ctx, userID)
	return res, nil
}

// clearResidualMembership nulls the user's own membership fields. After a
// clean purge they are already nil; anything left is drift, logged and
// repaired here.
func (s *Service) clearResidualMembership(ctx context.Context, userID primitive.ObjectID) error {
	u, err := s.store.User(ctx, userID)
	if err != nil {
		return err
	}
	if u.ClanID == nil && u.FederationID == nil {
		return nil
	}
	s.log.Warn("purge: residual membership fields after group processing",
		zap.String("user_id", userID.Hex()),
		zap.Bool("clan", u.ClanID != nil),
		zap.Bool("federation", u.FederationID != nil))

	uv := u.Version
	u.SetMembership(models.KindClan, nil, "")
	u.SetMembership(models.KindFederation, nil, "")
	return s.store.SaveUser(ctx, u, uv)
}
