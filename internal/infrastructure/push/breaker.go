// Package push carries live notification events over websockets: the
// client-side channel, the backend's connection hub, and the breaker that
// bounds reconnect attempts.
package push

import (
	"sync"
	"time"
)

const (
	DefaultMaxAttempts = 3
	DefaultCooldown    = 5 * time.Second
	DefaultStableAfter = 30 * time.Second
)

// Breaker bounds connection attempts. After MaxAttempts consecutive
// failures it opens and stays open until Reset; Cooldown is the wait
// between attempts while closed. One Breaker may be shared by every push
// consumer so they give up together.
type Breaker struct {
	MaxAttempts int
	Cooldown    time.Duration

	mu       sync.Mutex
	failures int
}

func NewBreaker(maxAttempts int, cooldown time.Duration) *Breaker {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if cooldown < 0 {
		cooldown = 0
	}
	return &Breaker{MaxAttempts: maxAttempts, Cooldown: cooldown}
}

// Allow reports whether another attempt may be made.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures < b.MaxAttempts
}

// Success closes the breaker.
func (b *Breaker) Success() {
	b.mu.Lock()
	b.failures = 0
	b.mu.Unlock()
}

// Failure records a failed or dropped connection and reports whether the
// breaker is now open.
func (b *Breaker) Failure() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures++
	return b.failures >= b.MaxAttempts
}

// Reset closes the breaker, typically after a fresh login.
func (b *Breaker) Reset() {
	b.Success()
}

// Failures returns the current consecutive failure count.
func (b *Breaker) Failures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failures
}
