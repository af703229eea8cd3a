// internal/app/membership/attach.go
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

// AttachClan links a clan into a federation, maintaining both sides of the
// back-reference. A clan belongs to at most one federation.
func (s *Service) AttachClan(ctx context.Context, federationID, clanID primitive.ObjectID) error {
	return s.withLinkage(ctx, federationID, clanID, func(ctx context.Context, fed, clan models.Group) (*cascade.Batch, []events.Event, error) {
		if clan.ParentFederationID != nil {
			if *clan.ParentFederationID == fed.ID {
				return nil, nil, nil
			}
			return nil, nil, ErrClanAlreadyAttached
		}
		batch := cascade.Attach(fed, clan)
		return batch, []events.Event{events.New(events.ClanAttached, fed.ID)}, nil
	})
}

// DetachClan severs the clan/federation link on both sides.
func (s *Service) DetachClan(ctx context.Context, federationID, clanID primitive.ObjectID) error {
	return s.withLinkage(ctx, federationID, clanID, func(ctx context.Context, fed, clan models.Group) (*cascade.Batch, []events.Event, error) {
		if clan.ParentFederationID == nil || *clan.ParentFederationID != fed.ID {
			return nil, nil, ErrClanNotAttached
		}
		batch := cascade.Detach(fed, clan)
		return batch, []events.Event{events.New(events.ClanDetached, fed.ID)}, nil
	})
}

type linkageFn func(ctx context.Context, fed, clan models.Group) (*cascade.Batch, []events.Event, error)

// withLinkage holds both group locks (federation before clan, per the
// global order) and runs fn against state read under the locks.
func (s *Service) withLinkage(ctx context.Context, federationID, clanID primitive.ObjectID, fn linkageFn) error {
	release, err := s.locks.Acquire(ctx,
		grouplock.Key{Kind: models.KindFederation, ID: federationID},
		grouplock.Key{Kind: models.KindClan, ID: clanID},
	)
	if err != nil {
		if errors.Is(err, grouplock.ErrTimeout) {
			return ErrLockTimeout
		}
		return err
	}
	defer release()

	fed, err := s.store.Group(ctx, federationID)
	if err != nil {
		return err
	}
	if fed.Kind != models.KindFederation {
		return ErrNotAFederation
	}
	clan, err := s.store.Group(ctx, clanID)
	if err != nil {
		return err
	}
	if clan.Kind != models.KindClan {
		return ErrNotAClan
	}

	batch, evs, err := fn(ctx, fed, clan)
	if err != nil || batch == nil {
		return err
	}
	return s.commit(ctx, batch, evs)
}
