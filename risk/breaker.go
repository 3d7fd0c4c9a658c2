package risk

import (
	"errors"
	"sync/atomic"
)

// ErrBreakerTripped means the circuit breaker is active and ordinary capital
// movement is blocked until an operator resets it.
var ErrBreakerTripped = errors.New("circuit breaker tripped")

// Breaker is a global halt flag. Once tripped it blocks ordinary allocation
// and withdrawal; the emergency-exit path ignores it. Trip and Reset are
// operator actions, never automatic.
type Breaker struct {
	tripped atomic.Bool
}

// Trip activates the breaker.
func (b *Breaker) Trip() {
	b.tripped.Store(true)
}

// Reset clears the breaker.
func (b *Breaker) Reset() {
	b.tripped.Store(false)
}

// Tripped reports the current state.
func (b *Breaker) Tripped() bool {
	return b.tripped.Load()
}

// Allow returns ErrBreakerTripped when the breaker is active.
func (b *Breaker) Allow() error {
	if b.tripped.Load() {
		return ErrBreakerTripped
	}
	return nil
}
