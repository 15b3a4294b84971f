package hptimer

import (
	"fmt"

	"github.com/bobuhiro11/gorkpm/mmio"
	"github.com/sirupsen/logrus"
)

// GCD returns the greatest common divisor of a and b.
func GCD(a, b uint32) uint32 {
	for b != 0 {
		a, b = b, a%b
	}

	return a
}

// Ratio returns the fixed clock ratio programmed for hard adjust mode.
func Ratio(hf uint32) (t24, t32 uint32) {
	gcd := GCD(hf, SlowClockHz)

	return hf / gcd, SlowClockHz / gcd
}

// SoftAdjustDelta computes the software correction from a begin/end
// timestamp pair captured across a clock-domain crossing. The fixed term and
// its truncation order are empirically tuned and must not be simplified.
// hf must be greater than lf and lf non-zero.
func SoftAdjustDelta(begin, end uint64, hf, lf uint32) uint64 {
	delta := (end - begin + 2) * uint64(hf-lf)
	delta /= uint64(lf)
	tmp := (2*hf + hf/2) / lf

	return delta + uint64(tmp) + 2
}

func (t *Timer) softAdjustDelta(hf, lf uint32) (uint64, error) {
	if lf == 0 || hf <= lf {
		return 0, fmt.Errorf("hf=%d lf=%d: %w", hf, lf, ErrInvalidClock)
	}

	if err := t.waitBeginEndValid(); err != nil {
		return 0, err
	}

	begin := t.read64(RegT24Begin0, RegT24Begin1)
	end := t.read64(RegT32End0, RegT32End1)

	delta := SoftAdjustDelta(begin, end, hf, lf)

	t.base.Write32(RegBeginEndValid, validBeginEnd)

	return delta, nil
}

func (t *Timer) softAdjustReq(delta uint64) {
	if delta == 0 {
		return
	}

	t.write64(RegT24DeltaCount0, RegT24DeltaCount1, delta)
	t.base.Write32(RegSyncReq, mmio.WithWriteMask(1, 0x1, ReqSWSync))
}

func (t *Timer) hardAdjustReq() {
	t.base.Write32(RegSyncReq, mmio.WithWriteMask(1, 0x1, ReqHWSync))
}

// HardAdjust requests a hardware resync and waits for it to complete.
func (t *Timer) HardAdjust() error {
	t.hardAdjustReq()

	return t.WaitSync()
}

// HardAdjustNoWait requests a hardware resync. The caller polls with
// WaitSync later.
func (t *Timer) HardAdjustNoWait() {
	t.hardAdjustReq()
}

// SoftAdjust measures the clock-domain crossing, applies the correction and
// waits for the sync to complete.
func (t *Timer) SoftAdjust(hf, lf uint32) error {
	if err := t.SoftAdjustNoWait(hf, lf); err != nil {
		return err
	}

	return t.WaitSync()
}

// SoftAdjustNoWait measures and applies the correction without waiting.
// When the measurement times out no sync is requested.
func (t *Timer) SoftAdjustNoWait(hf, lf uint32) error {
	delta, err := t.softAdjustDelta(hf, lf)
	if err != nil {
		return err
	}

	t.softAdjustReq(delta)

	return nil
}

// ConfigOneShotTimeoutInt raises the reach interrupt delta counts from now.
func (t *Timer) ConfigOneShotTimeoutInt(delta uint64) {
	cnt := t.Count() + delta

	t.write64(RegLoadCount0, RegLoadCount1, cnt)
	t.EnableInt(IntReach)
}

// ConfigFreeTimeoutInt raises the extra-reach interrupt after delta counts of
// the free-running extra counter. The counter restarts when its control bit
// toggles, so it is stopped around the reload.
func (t *Timer) ConfigFreeTimeoutInt(delta uint32) {
	t.base.Write32(RegCtrl, mmio.WithWriteMask(0, 0x1, CtrlExtraCntCtl))
	t.base.Write32(RegLoadCount0, delta)
	t.base.Write32(RegLoadCount1, 0)

	t.EnableInt(IntExtraReach)
	t.base.Write32(RegCtrl, mmio.WithWriteMask(1, 0x1, CtrlExtraCntCtl))
}

// ConfigSleepTimeoutInt raises the 32k-reach interrupt delta counts from now.
// It stays armed while the fast clock is gated.
func (t *Timer) ConfigSleepTimeoutInt(delta uint64) {
	cnt := t.Count() + delta

	t.write64(RegLoad32KCount0, RegLoad32KCount1, cnt)
	t.EnableInt(Int32KReach)
}

// ModeInit reprograms the timer for mode with a fast clock of hf Hz. In hard
// adjust mode the fixed ratio is programmed and a resync is awaited; in soft
// adjust mode the previous count is seeded into the delta register so the
// restart continues from it.
func (t *Timer) ModeInit(mode Mode, hf uint32) error {
	old := t.Count()

	t.base.Write32(RegCtrl, mmio.FullUpperMask)
	t.base.Write32(RegIntEn, 0)
	t.base.Write32(RegIntrStatus, 0x7)
	t.base.Write32(RegBeginEndValid, validBeginEnd)
	t.write64(RegLoadCount0, RegLoadCount1, ^uint64(0))

	if mode == HardAdjust {
		t24, t32 := Ratio(hf)

		t.base.Write32(RegT24GCD, t24)
		t.base.Write32(RegT32GCD, t32)
	}

	if mode != Normal {
		t.base.Write32(RegIntEn, mmio.Bit(uint32(IntSync)))
	}

	t.base.Write32(RegCtrl, mmio.WithWriteMask(uint32(mode), 0x3, CtrlMode)|
		mmio.WithWriteMask(1, 0x1, CtrlInitMode))
	t.base.Write32(RegCtrl, mmio.WithWriteMask(1, 0x1, CtrlEn))

	t.log.WithFields(logrus.Fields{"mode": mode, "hf": hf}).Debug("hptimer initialised")

	switch mode {
	case HardAdjust:
		return t.HardAdjust()
	case SoftAdjust:
		t.softAdjustReq(old)
	}

	return nil
}
