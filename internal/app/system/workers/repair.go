// internal/app/system/workers/repair.go
package workers

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/clanhaven/clanhaven/internal/app/membership"
	"github.com/clanhaven/clanhaven/internal/app/membership/invariant"
	"github.com/clanhaven/clanhaven/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// RepairSweep is a background worker that periodically walks every group,
// re-checks the membership invariants, and logs anything a partial cascade
// write left behind. It never mutates data itself; flagged groups are fixed
// by an operator or a targeted admin action.
type RepairSweep struct {
	store    membership.Store
	log      *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewRepairSweep creates the sweep worker. interval is how often a full
// pass runs.
func NewRepairSweep(store membership.Store, logger *zap.Logger, interval time.Duration) *RepairSweep {
	return &RepairSweep{
		store:    store,
		log:      logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background sweep loop.
func (w *RepairSweep) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("repair sweep worker started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for the current pass to finish.
func (w *RepairSweep) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("repair sweep worker stopped")
}

func (w *RepairSweep) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			w.Sweep(ctx)
			cancel()
		}
	}
}

// Sweep runs one full pass and returns the number of groups with at least
// one violation. Exposed so tests and admin tooling can trigger a pass
// directly.
func (w *RepairSweep) Sweep(ctx context.Context) int {
	groups, err := w.store.Groups(ctx)
	if err != nil {
		w.log.Error("repair sweep: list groups", zap.Error(err))
		return 0
	}

	flagged := 0
	for i := range groups {
		g := groups[i]
		vs := w.check(ctx, g)
		if len(vs) == 0 {
			continue
		}
		flagged++
		for _, v := range vs {
			w.log.Error("repair sweep: invariant violation",
				zap.String("group_id", g.ID.Hex()),
				zap.String("kind", string(g.Kind)),
				zap.String("violation", v.String()))
		}
	}
	if flagged > 0 {
		w.log.Warn("repair sweep finished with flagged groups",
			zap.Int("groups", len(groups)),
			zap.Int("flagged", flagged))
	} else {
		w.log.Debug("repair sweep clean", zap.Int("groups", len(groups)))
	}
	return flagged
}

func (w *RepairSweep) check(ctx context.Context, g models.Group) []invariant.Violation {
	snap := invariant.Snapshot{
		Group: g,
		Users: make(map[primitive.ObjectID]models.User, len(g.MemberIDs)),
	}

	for _, m := range g.MemberIDs {
		u, err := w.store.User(ctx, m)
		if err != nil {
			if errors.Is(err, membership.ErrNotFound) {
				// Leave the entry absent; Validate reports the missing record.
				continue
			}
			w.log.Warn("repair sweep: load user",
				zap.String("group_id", g.ID.Hex()),
				zap.String("user_id", m.Hex()),
				zap.Error(err))
			continue
		}
		snap.Users[u.ID] = u
	}

	if g.Kind == models.KindClan && g.ParentFederationID != nil {
		if p, err := w.store.Group(ctx, *g.ParentFederationID); err == nil {
			snap.Parent = &p
		}
	}
	if g.Kind == models.KindFederation && len(g.ClanIDs) > 0 {
		snap.Clans = make(map[primitive.ObjectID]models.Group, len(g.ClanIDs))
		for _, cid := range g.ClanIDs {
			if c, err := w.store.Group(ctx, cid); err == nil {
				snap.Clans[cid] = c
			}
		}
	}

	return invariant.Validate(snap)
}
