// Package hptimer drives the high-precision timer whose 64-bit counter is
// kept consistent across the fast reference clock and the 32 kHz always-on
// clock.
package hptimer

import (
	"errors"
	"fmt"
	"io"

	"github.com/bobuhiro11/gorkpm/mmio"
	"github.com/bobuhiro11/gorkpm/poll"
	"github.com/sirupsen/logrus"
)

// ErrInvalidClock is returned by the soft adjust when the slow clock is
// zero or the fast clock is not strictly faster than it.
var ErrInvalidClock = errors.New("fast clock must be faster than slow clock")

// Mode is the HPTimer synchronisation mode.
//
//go:generate stringer -type=Mode
type Mode uint32

const (
	Normal     Mode = 0
	HardAdjust Mode = 1
	SoftAdjust Mode = 2
)

// Timer is one HPTimer instance.
type Timer struct {
	base    mmio.Block
	delay   poll.Delay
	console io.Writer
	log     logrus.FieldLogger
}

// New returns a Timer over base. Diagnostics of failed waits go to console,
// usually the raw debug port, and to log. Either may be nil.
func New(base mmio.Block, delay poll.Delay, console io.Writer, log logrus.FieldLogger) *Timer {
	if console == nil {
		console = io.Discard
	}

	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Timer{
		base:    base,
		delay:   delay,
		console: console,
		log:     log.WithField("block", base.Name()),
	}
}

// IsEnabled reports whether the counter runs.
func (t *Timer) IsEnabled() bool {
	return t.base.Read32(RegCtrl)&mmio.Bit(CtrlEn) != 0
}

// Mode returns the programmed synchronisation mode.
func (t *Timer) Mode() Mode {
	return Mode(t.base.Read32(RegCtrl) >> CtrlMode & 0x3)
}

// readCounter reads a 64-bit register pair that is not latched atomically.
// The high word is read on both sides of the low word until both reads
// agree, so a carry between the two halves is never observed.
func (t *Timer) readCounter(lo, hi uint32) uint64 {
	for {
		high := t.base.Read32(hi)
		low := t.base.Read32(lo)

		if t.base.Read32(hi) == high {
			return uint64(high)<<32 | uint64(low)
		}
	}
}

func (t *Timer) read64(lo, hi uint32) uint64 {
	return uint64(t.base.Read32(lo)) | uint64(t.base.Read32(hi))<<32
}

func (t *Timer) write64(lo, hi uint32, v uint64) {
	t.base.Write32(lo, uint32(v))
	t.base.Write32(hi, uint32(v>>32))
}

// Count returns the current 64-bit counter value.
func (t *Timer) Count() uint64 {
	return t.readCounter(RegCurrTimerValue0, RegCurrTimerValue1)
}

// ClearIntStatus acknowledges interrupt id.
func (t *Timer) ClearIntStatus(id IntID) {
	t.base.Write32(RegIntrStatus, mmio.Bit(uint32(id)))
}

// EnableInt unmasks interrupt id.
func (t *Timer) EnableInt(id IntID) {
	mmio.SetBits(t.base, RegIntEn, mmio.Bit(uint32(id)))
}

// DisableInt masks interrupt id.
func (t *Timer) DisableInt(id IntID) {
	mmio.ClearBits(t.base, RegIntEn, mmio.Bit(uint32(id)))
}

func (t *Timer) waitIntStatus(id IntID) error {
	bit := mmio.Bit(uint32(id))

	err := poll.Until(func() bool { return t.base.Read32(RegIntrStatus)&bit != 0 }, WaitMaxUs, t.delay)
	if err != nil {
		st := t.base.Read32(RegIntrStatus)
		fmt.Fprintf(t.console, "can't wait hptimer int:%d-%x\n", id, st)
		t.log.WithFields(logrus.Fields{"reg": "intr_status", "value": st, "expect": bit}).
			Warn("hptimer interrupt wait timed out")

		return fmt.Errorf("hptimer int %d: %w", id, err)
	}

	return nil
}

func (t *Timer) waitBeginEndValid() error {
	err := poll.Until(func() bool {
		return t.base.Read32(RegBeginEndValid)&validBeginEnd == validBeginEnd
	}, WaitMaxUs, t.delay)
	if err != nil {
		v := t.base.Read32(RegBeginEndValid)
		fmt.Fprintf(t.console, "can't wait hptimer begin_end valid:%x\n", v)
		t.log.WithFields(logrus.Fields{"reg": "begin_end_valid", "value": v, "expect": validBeginEnd}).
			Warn("hptimer begin/end latch wait timed out")

		return fmt.Errorf("hptimer begin/end valid: %w", err)
	}

	return nil
}

// WaitSync blocks until the sync-complete status is raised, then clears it.
func (t *Timer) WaitSync() error {
	if err := t.waitIntStatus(IntSync); err != nil {
		return err
	}

	t.ClearIntStatus(IntSync)

	return nil
}
