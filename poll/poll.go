// Package poll implements the bounded busy-wait used by every hardware
// handshake of a suspend cycle. Budgets count iterations, not wall-clock
// time, because the clocks backing wall-clock time may themselves be gated.
package poll

import (
	"errors"
	"time"
)

// ErrTimeout is returned when a condition did not hold within its budget.
var ErrTimeout = errors.New("bounded wait timed out")

// Delay is the fixed per-iteration delay primitive.
type Delay func()

// Until evaluates cond up to max times, calling delay between evaluations.
// It never yields the calling goroutine.
func Until(cond func() bool, max uint64, delay Delay) error {
	for i := uint64(0); i < max; i++ {
		if cond() {
			return nil
		}

		if delay != nil {
			delay()
		}
	}

	if cond() {
		return nil
	}

	return ErrTimeout
}

// Udelay busy-waits for about one microsecond.
func Udelay() {
	Spin(time.Microsecond)
}

// Spin busy-waits for d on the monotonic clock without sleeping.
func Spin(d time.Duration) {
	start := time.Now()
	for time.Since(start) < d {
	}
}

// None is a Delay that returns immediately. Simulated hardware uses it.
func None() {}
