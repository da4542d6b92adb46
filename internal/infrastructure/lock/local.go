// Package lock provides the per-pair locks held while both sides of a device/product
// association are written.
package lock

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/devicehub/devicehub/internal/domain/association"
)

// LocalLocker is an in-process keyed mutex
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]chan struct{}
	wait time.Duration
}

// NewLocalLocker creates a locker that gives up after wait
func NewLocalLocker(wait time.Duration) *LocalLocker {
	return &LocalLocker{
		held: make(map[string]chan struct{}),
		wait: wait,
	}
}

// Acquire takes every key in sorted order. The returned release func is safe to call more than once.
func (l *LocalLocker) Acquire(ctx context.Context, keys ...string) (func(), error) {
	keys = normalizeKeys(keys)

	waitCtx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	acquired := make([]string, 0, len(keys))
	for _, key := range keys {
		if err := l.acquireOne(waitCtx, key); err != nil {
			l.release(acquired)
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, err
		}
		acquired = append(acquired, key)
	}

	var once sync.Once
	return func() { once.Do(func() { l.release(acquired) }) }, nil
}

func (l *LocalLocker) acquireOne(ctx context.Context, key string) error {
	for {
		l.mu.Lock()
		ch, busy := l.held[key]
		if !busy {
			l.held[key] = make(chan struct{})
			l.mu.Unlock()
			return nil
		}
		l.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return association.ErrLockTimeout
		}
	}
}

func (l *LocalLocker) release(keys []string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := len(keys) - 1; i >= 0; i-- {
		if ch, ok := l.held[keys[i]]; ok {
			close(ch)
			delete(l.held, keys[i])
		}
	}
}

func normalizeKeys(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
