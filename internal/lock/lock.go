// Package lock serializes read-modify-write cycles on individual ledger rows.
//
// A Manager acquires every key of a use case in sorted order before running
// it, so two use cases touching overlapping rows cannot deadlock.
package lock

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"ledger/internal/core"
)

var (
	// ErrNotAcquired is returned when a key could not be locked in time.
	ErrNotAcquired = errors.New("lock: not acquired")
	ErrNilFn       = errors.New("lock: function is nil")
)

type Manager interface {
	// WithLock runs fn while holding every key. Keys are deduplicated and
	// acquired in ascending order, then released in reverse.
	WithLock(ctx context.Context, keys []string, fn func(context.Context) error) error
}

// Key names the row lock for one entity.
func Key(kind core.Kind, id int64) string {
	return fmt.Sprintf("%s:%d", kind, id)
}

// Keys builds a sorted, duplicate-free key set from refs.
func Keys(refs ...core.EntityRef) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		if r.ID == 0 {
			continue
		}
		out = append(out, Key(r.Kind, r.ID))
	}
	return normalize(out)
}

func normalize(keys []string) []string {
	keys = slices.Clone(keys)
	slices.Sort(keys)
	return slices.Compact(keys)
}
