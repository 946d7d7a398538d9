package lock

import (
	"context"
	"fmt"
	"sync"
)

// Local is an in-process keyed mutex. Idle keys are dropped once no caller
// holds or waits for them.
type Local struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch   chan struct{} // buffered(1): holding the token means owning the key
	refs int
}

var _ Manager = (*Local)(nil)

func NewLocal() *Local {
	return &Local{slots: map[string]*slot{}}
}

func (l *Local) WithLock(ctx context.Context, keys []string, fn func(context.Context) error) error {
	if fn == nil {
		return ErrNilFn
	}
	keys = normalize(keys)

	held := make([]string, 0, len(keys))
	defer func() {
		for i := len(held) - 1; i >= 0; i-- {
			l.release(held[i])
		}
	}()

	for _, k := range keys {
		if err := l.acquire(ctx, k); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrNotAcquired, k, err)
		}
		held = append(held, k)
	}
	return fn(ctx)
}

func (l *Local) acquire(ctx context.Context, key string) error {
	l.mu.Lock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	l.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		l.unref(key, s)
		return ctx.Err()
	}
}

func (l *Local) release(key string) {
	l.mu.Lock()
	s := l.slots[key]
	l.mu.Unlock()

	<-s.ch
	l.unref(key, s)
}

func (l *Local) unref(key string, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}

// active returns the number of keys currently held or waited on.
func (l *Local) active() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}
