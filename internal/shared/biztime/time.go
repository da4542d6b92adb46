// Package biztime centralizes clock access. All storage and transport use UTC;
// the display timezone is only applied when rendering reports for people.
package biztime

import (
	"fmt"
	"sync"
	"time"
)

var (
	mu       sync.RWMutex
	nowFunc  = time.Now
	location = time.UTC
)

// SetTimezone sets the display timezone. An empty name keeps UTC.
func SetTimezone(tz string) error {
	if tz == "" {
		return nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("failed to load timezone %q: %w", tz, err)
	}
	mu.Lock()
	location = loc
	mu.Unlock()
	return nil
}

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	mu.RLock()
	fn := nowFunc
	mu.RUnlock()
	return fn().UTC()
}

// Freeze pins NowUTC to t and returns a function restoring the real clock. Test use only.
func Freeze(t time.Time) (restore func()) {
	mu.Lock()
	prev := nowFunc
	nowFunc = func() time.Time { return t }
	mu.Unlock()
	return func() {
		mu.Lock()
		nowFunc = prev
		mu.Unlock()
	}
}

// Format renders t in the display timezone
func Format(t time.Time) string {
	mu.RLock()
	loc := location
	mu.RUnlock()
	return t.In(loc).Format(time.DateTime)
}

// Location returns the display timezone
func Location() *time.Location {
	mu.RLock()
	defer mu.RUnlock()
	return location
}
