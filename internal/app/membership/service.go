// internal/app/membership/service.go
package membership

import (
	"context"
	"errors"
	"fmt"

	"github.com/clanhaven/clanhaven/internal/app/membership/cascade"
	"github.com/clanhaven/clanhaven/internal/app/membership/invariant"
	"github.com/clanhaven/clanhaven/internal/app/system/cacheinval"
	"github.com/clanhaven/clanhaven/internal/app/system/events"
	"github.com/clanhaven/clanhaven/internal/app/system/grouplock"
	"github.com/clanhaven/clanhaven/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Config carries the engine's tunables.
type Config struct {
	ClanMemberCap       int // max members per clan
	FederationMemberCap int // max direct user members per federation
}

// DefaultConfig matches the platform defaults.
func DefaultConfig() Config {
	return Config{ClanMemberCap: 50, FederationMemberCap: 20}
}

// Service is the membership mutation API: the only code path allowed to
// write user membership fields and group member lists. Every public
// operation runs under the per-group serializer for the full
// read -> compute -> persist cycle.
type Service struct {
	store    Store
	locks    *grouplock.Table
	notifier events.Notifier
	cache    cacheinval.Invalidator
	log      *zap.Logger
	cfg      Config
}

// New wires the engine. notifier and cache may be nil; they default to
// no-ops.
func New(store Store, locks *grouplock.Table, notifier events.Notifier, cache cacheinval.Invalidator, logger *zap.Logger, cfg Config) *Service {
	if notifier == nil {
		notifier = events.Nop{}
	}
	if cache == nil {
		cache = cacheinval.Nop{}
	}
	if cfg.ClanMemberCap <= 0 {
		cfg.ClanMemberCap = DefaultConfig().ClanMemberCap
	}
	if cfg.FederationMemberCap <= 0 {
		cfg.FederationMemberCap = DefaultConfig().FederationMemberCap
	}
	return &Service{
		store:    store,
		locks:    locks,
		notifier: notifier,
		cache:    cache,
		log:      logger,
		cfg:      cfg,
	}
}

func (s *Service) memberCap(kind models.GroupKind) int {
	if kind == models.KindFederation {
		return s.cfg.FederationMemberCap
	}
	return s.cfg.ClanMemberCap
}

// lockKeys computes the lock set for a mutation of g. A narrow mutation
// touches only the group and its users; a wide one may cascade into the
// parent federation (clan dissolution) or child clans (federation
// dissolution).
func lockKeys(g models.Group, wide bool) []grouplock.Key {
	keys := []grouplock.Key{{Kind: g.Kind, ID: g.ID}}
	if !wide {
		return keys
	}
	if g.Kind == models.KindClan && g.ParentFederationID != nil {
		keys = append(keys, grouplock.Key{Kind: models.KindFederation, ID: *g.ParentFederationID})
	}
	if g.Kind == models.KindFederation {
		for _, cid := range g.ClanIDs {
			keys = append(keys, grouplock.Key{Kind: models.KindClan, ID: cid})
		}
	}
	return keys
}

func sameLockSet(a, b []grouplock.Key) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[grouplock.Key]bool, len(a))
	for _, k := range a {
		set[k] = true
	}
	for _, k := range b {
		if !set[k] {
			return false
		}
	}
	return true
}

// mutateFn computes a mutation against the group state read under the
// lock. Returning a nil batch means nothing to persist.
type mutateFn func(ctx context.Context, g models.Group) (*cascade.Batch, []events.Event, error)

// withGroup runs fn with the group's lock set held. The lock set is
// discovered from an unlocked read; if a concurrent attach/detach changed
// the linkage between discovery and acquisition, the locks are dropped and
// discovery retried a bounded number of times.
func (s *Service) withGroup(ctx context.Context, groupID primitive.ObjectID, wide bool, fn mutateFn) error {
	const maxAttempts = 3
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		g, err := s.store.Group(ctx, groupID)
		if err != nil {
			return err
		}
		keys := lockKeys(g, wide)

		release, err := s.locks.Acquire(ctx, keys...)
		if err != nil {
			if errors.Is(err, grouplock.ErrTimeout) {
				return ErrLockTimeout
			}
			return err
		}

		err = func() error {
			// Re-read under the lock; the discovery read is only a hint.
			cur, err := s.store.Group(ctx, groupID)
			if err != nil {
				return err
			}
			if wide && !sameLockSet(keys, lockKeys(cur, wide)) {
				return errLinkageChanged
			}
			batch, evs, err := fn(ctx, cur)
			if err != nil {
				return err
			}
			if batch == nil {
				return nil
			}
			return s.commit(ctx, batch, evs)
		}()
		release()

		if errors.Is(err, errLinkageChanged) {
			continue
		}
		return err
	}
	// The linkage kept shifting under us; surface as transient.
	return ErrVersionConflict
}

var errLinkageChanged = errors.New("group linkage changed during lock acquisition")

// commit validates the prospective state, persists the batch in order
// (group saves, user saves, deletes), then emits events and cache
// invalidations. A failure on the first write aborts cleanly; a failure
// later leaves a partial cascade, which is logged with full context for
// the repair pass.
func (s *Service) commit(ctx context.Context, b *cascade.Batch, evs []events.Event) error {
	if vs := postcondition(b); len(vs) > 0 {
		for _, v := range vs {
			s.log.Error("invariant violation in computed batch",
				zap.String("violation", v.String()))
		}
		return ErrInvariantViolation
	}

	wrote := false
	fail := func(stage string, id primitive.ObjectID, err error) error {
		if wrote {
			s.log.Error("partial cascade write, repair pass required",
				zap.String("stage", stage),
				zap.String("entity_id", id.Hex()),
				zap.Error(err))
		}
		return fmt.Errorf("%s %s: %w", stage, id.Hex(), err)
	}

	for _, gw := range b.Saves {
		if err := s.store.SaveGroup(ctx, gw.Group, gw.Expected); err != nil {
			return fail("save group", gw.Group.ID, err)
		}
		wrote = true
	}
	for _, uw := range b.Users {
		if err := s.store.SaveUser(ctx, uw.User, uw.Expected); err != nil {
			return fail("save user", uw.User.ID, err)
		}
		wrote = true
	}
	for _, d := range b.Deletes {
		if err := s.store.DeleteGroup(ctx, d.ID, d.Expected); err != nil {
			return fail("delete group", d.ID, err)
		}
		wrote = true
	}

	for _, ev := range evs {
		s.notifier.Notify(ctx, ev)
	}
	s.cache.Invalidate(ctx, b.Touched()...)
	return nil
}

// postcondition re-checks the invariants on every group state the batch is
// about to persist. Violations here are programming bugs in the cascade,
// never expected input errors.
func postcondition(b *cascade.Batch) []invariant.Violation {
	users := make(map[primitive.ObjectID]models.User, len(b.Users))
	for _, uw := range b.Users {
		users[uw.User.ID] = uw.User
	}

	var out []invariant.Violation
	for _, gw := range b.Saves {
		// Group-local rules for the whole group.
		out = append(out, invariant.Validate(invariant.Snapshot{Group: gw.Group})...)

		// Back-reference rules for the users this batch rewrites.
		for _, m := range gw.Group.MemberIDs {
			u, ok := users[m]
			if !ok {
				continue
			}
			id, role := u.Membership(gw.Group.Kind)
			if id == nil || *id != gw.Group.ID {
				out = append(out, invariant.Violation{
					Kind: invariant.BackRefMismatch, Subject: m,
					Detail: "written user does not reference written group",
				})
				continue
			}
			if want := gw.Group.RoleOf(m); role != want {
				out = append(out, invariant.Violation{
					Kind: invariant.RoleMismatch, Subject: m,
					Detail: fmt.Sprintf("written user role %q, group says %q", role, want),
				})
			}
		}
	}
	for _, d := range b.Deletes {
		// Every user still referencing a deleted group must be cleared in
		// the same batch.
		for _, uw := range b.Users {
			for _, kind := range []models.GroupKind{models.KindClan, models.KindFederation} {
				if id, _ := uw.User.Membership(kind); id != nil && *id == d.ID {
					out = append(out, invariant.Violation{
						Kind: invariant.BackRefMismatch, Subject: uw.User.ID,
						Detail: "written user references group being deleted",
					})
				}
			}
		}
	}
	return out
}
