// Package suspend is the platform power-state dispatch: one set of
// operations is registered and every suspend request is routed through it.
package suspend

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	ErrNoOps        = errors.New("no suspend operations registered")
	ErrNotSupported = errors.New("suspend state not supported")
	ErrBusy         = errors.New("suspend already in progress")
)

// State is a system sleep state.
//
//go:generate stringer -type=State
type State int

const (
	On State = iota
	ToIdle
	Standby
	Mem
	Disk
)

// Ops is the enter/valid contract a platform registers.
type Ops interface {
	// Valid reports whether the platform can enter s.
	Valid(s State) bool
	// Enter runs one full suspend/resume cycle in s.
	Enter(s State) error
}

// ValidOnlyMem is the Valid predicate of platforms that support only
// suspend to RAM.
func ValidOnlyMem(s State) bool {
	return s == Mem
}

// Dispatcher serialises suspend requests onto the registered Ops.
type Dispatcher struct {
	mu     sync.Mutex
	ops    Ops
	active bool
	log    logrus.FieldLogger
}

// NewDispatcher returns a dispatcher with no operations registered.
func NewDispatcher(log logrus.FieldLogger) *Dispatcher {
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Dispatcher{log: log.WithField("component", "suspend")}
}

// SetOps registers ops, replacing any previous registration.
func (d *Dispatcher) SetOps(ops Ops) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.ops = ops
}

// Valid reports whether the registered operations accept s.
func (d *Dispatcher) Valid(s State) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.ops != nil && d.ops.Valid(s)
}

// Suspend enters s through the registered operations. Only one request runs
// at a time; a concurrent request fails with ErrBusy.
func (d *Dispatcher) Suspend(s State) error {
	d.mu.Lock()
	ops := d.ops

	switch {
	case ops == nil:
		d.mu.Unlock()

		return ErrNoOps
	case d.active:
		d.mu.Unlock()

		return ErrBusy
	case !ops.Valid(s):
		d.mu.Unlock()

		return fmt.Errorf("%v: %w", s, ErrNotSupported)
	}

	d.active = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.active = false
		d.mu.Unlock()
	}()

	d.log.WithField("state", s).Info("entering sleep")

	if err := ops.Enter(s); err != nil {
		d.log.WithError(err).WithField("state", s).Error("suspend failed")

		return fmt.Errorf("enter %v: %w", s, err)
	}

	d.log.WithField("state", s).Info("resumed")

	return nil
}
