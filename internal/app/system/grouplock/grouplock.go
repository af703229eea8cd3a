// internal/app/system/grouplock/grouplock.go
//
// Keyed mutual exclusion for group mutations. Every read-modify-write of a
// group must hold that group's lock for the full load -> compute -> persist
// cycle; mutations on disjoint groups run fully concurrently.
package grouplock

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/clanhaven/clanhaven/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/sync/semaphore"
)

// ErrTimeout is returned when a lock could not be acquired within the
// table's configured wait. Callers may retry the whole operation.
var ErrTimeout = errors.New("grouplock: wait for lock timed out")

// Key identifies one lockable group. Kind participates in the total
// acquisition order: federations sort before clans so that cross-entity
// cascades (a clan mutation that also touches its parent federation)
// always lock in the same order and can never deadlock.
type Key struct {
	Kind models.GroupKind
	ID   primitive.ObjectID
}

func rank(k models.GroupKind) int {
	if k == models.KindFederation {
		return 0
	}
	return 1
}

func less(a, b Key) bool {
	if ra, rb := rank(a.Kind), rank(b.Kind); ra != rb {
		return ra < rb
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

type entry struct {
	sem  *semaphore.Weighted
	refs int
}

// Table is the per-group lock registry. Entries are created on first use
// and dropped once no goroutine holds or waits on them.
type Table struct {
	mu      sync.Mutex
	entries map[Key]*entry
	wait    time.Duration
}

// New creates a table whose Acquire calls wait at most maxWait per key.
func New(maxWait time.Duration) *Table {
	return &Table{
		entries: make(map[Key]*entry),
		wait:    maxWait,
	}
}

// Acquire takes the locks for every key, in the fixed global order
// (federations first, then ascending id), and returns a release function.
// Duplicate keys are collapsed. If any lock cannot be acquired within the
// table's wait, everything already held is released and ErrTimeout is
// returned. A context cancelled before acquisition returns ctx.Err().
func (t *Table) Acquire(ctx context.Context, keys ...Key) (func(), error) {
	ordered := dedupe(keys)
	sort.Slice(ordered, func(i, j int) bool { return less(ordered[i], ordered[j]) })

	held := make([]Key, 0, len(ordered))
	release := func() {
		// Release in reverse acquisition order.
		for i := len(held) - 1; i >= 0; i-- {
			t.put(held[i])
		}
	}

	for _, k := range ordered {
		if err := t.get(ctx, k); err != nil {
			release()
			return nil, err
		}
		held = append(held, k)
	}

	var once sync.Once
	return func() { once.Do(release) }, nil
}

func (t *Table) get(ctx context.Context, k Key) error {
	t.mu.Lock()
	e, ok := t.entries[k]
	if !ok {
		e = &entry{sem: semaphore.NewWeighted(1)}
		t.entries[k] = e
	}
	e.refs++
	t.mu.Unlock()

	waitCtx, cancel := context.WithTimeout(ctx, t.wait)
	defer cancel()

	if err := e.sem.Acquire(waitCtx, 1); err != nil {
		t.unref(k)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTimeout
	}
	return nil
}

func (t *Table) put(k Key) {
	t.mu.Lock()
	if e, ok := t.entries[k]; ok {
		e.sem.Release(1)
	}
	t.mu.Unlock()
	t.unref(k)
}

func (t *Table) unref(k Key) {
	t.mu.Lock()
	if e, ok := t.entries[k]; ok {
		e.refs--
		if e.refs <= 0 {
			delete(t.entries, k)
		}
	}
	t.mu.Unlock()
}

func dedupe(keys []Key) []Key {
	seen := make(map[Key]bool, len(keys))
	out := make([]Key, 0, len(keys))
	for _, k := range keys {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out
}
