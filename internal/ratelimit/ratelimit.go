package ratelimit

import (
	"sync"
	"time"
)

// RateLimiter throttles login attempts with sliding per-minute and
// per-hour windows. It slows credential stuffing across accounts; the
// per-account lockout lives in the auth service.
type RateLimiter struct {
	perMinute int
	perHour   int
	enabled   bool

	minuteWindow []time.Time
	hourWindow   []time.Time
	mu           sync.Mutex
}

// NewRateLimiter creates a limiter with the given limits
func NewRateLimiter(perMinute, perHour int, enabled bool) *RateLimiter {
	return &RateLimiter{
		perMinute: perMinute,
		perHour:   perHour,
		enabled:   enabled,
	}
}

// AllowRequest checks if another attempt is allowed right now.
// Returns true if allowed, false if a limit is exceeded.
func (rl *RateLimiter) AllowRequest() bool {
	if !rl.enabled {
		return true
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	rl.cleanup(now)

	if rl.perMinute > 0 && len(rl.minuteWindow) >= rl.perMinute {
		return false
	}
	if rl.perHour > 0 && len(rl.hourWindow) >= rl.perHour {
		return false
	}

	rl.minuteWindow = append(rl.minuteWindow, now)
	rl.hourWindow = append(rl.hourWindow, now)
	return true
}

// GetStats returns the current window occupancy
func (rl *RateLimiter) GetStats() map[string]interface{} {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.cleanup(time.Now())
	return map[string]interface{}{
		"enabled":          rl.enabled,
		"last_minute":      len(rl.minuteWindow),
		"last_hour":        len(rl.hourWindow),
		"limit_per_minute": rl.perMinute,
		"limit_per_hour":   rl.perHour,
	}
}

// cleanup removes expired entries from the time windows
func (rl *RateLimiter) cleanup(now time.Time) {
	rl.minuteWindow = filterTimes(rl.minuteWindow, now.Add(-time.Minute))
	rl.hourWindow = filterTimes(rl.hourWindow, now.Add(-time.Hour))
}

// filterTimes keeps only timestamps after the cutoff
func filterTimes(times []time.Time, cutoff time.Time) []time.Time {
	kept := times[:0]
	for _, t := range times {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}
