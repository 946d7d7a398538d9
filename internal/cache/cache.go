package cache

import (
	"context"
	"time"
)

// Cache is a keyed store whose entries may disappear at any time.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Size() int
}

// Cleaner interface for caches that support cleanup
type Cleaner interface {
	CleanExpired() int
}

// Sweep calls CleanExpired on every cleaner each interval until ctx is done.
// onClean, when set, receives the number of entries removed by each pass.
func Sweep(ctx context.Context, interval time.Duration, onClean func(removed int), cleaners ...Cleaner) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			total := 0
			for _, c := range cleaners {
				total += c.CleanExpired()
			}
			if onClean != nil {
				onClean(total)
			}
		case <-ctx.Done():
			return
		}
	}
}
