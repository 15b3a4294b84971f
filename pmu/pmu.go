// Package pmu programs the power management unit for a sleep cycle: the
// 32 kHz source, the DDR low-power hand-off, the PMU FSM controls and wake
// sources, and the timeout wakeup workaround routed through the HPTimer.
package pmu

import (
	"fmt"

	"github.com/bobuhiro11/gorkpm/config"
	"github.com/bobuhiro11/gorkpm/hptimer"
	"github.com/bobuhiro11/gorkpm/mmio"
	"github.com/bobuhiro11/gorkpm/poll"
	"github.com/sirupsen/logrus"
)

// Blocks are the register blocks the configurator touches.
type Blocks struct {
	PMU     mmio.Block
	PMUGRF  mmio.Block
	PMUSGRF mmio.Block
	PMU0CRU mmio.Block
	DDRC    mmio.Block
	DDRGRF  mmio.Block
}

// WorkaroundState records whether the PMU FSM was entered on the last
// cycle. It is recomputed from the wake status on every resume.
type WorkaroundState struct {
	EnteredPMUFSM bool
}

// IntStatusReader reports a pending interrupt status word.
type IntStatusReader interface {
	IntStatus() uint32
}

// saved holds the registers the configurator overwrites and puts back.
type saved struct {
	ddrgrfCon1, ddrgrfCon5, ddrgrfCon8 uint32
	pmugrfCon0                         uint32
	pmugrfCon4, pmugrfCon5, pmugrfCon6 uint32
}

// Configurator is the PMU wake configurator. It is owned by the suspend
// path and is not safe for concurrent use.
type Configurator struct {
	b     Blocks
	timer *hptimer.Timer
	delay poll.Delay
	log   logrus.FieldLogger

	cfg   *config.SleepConfig
	saved saved

	// ResumeEntry is written to the resume entry OS register unless
	// SystemResetOnWake is set.
	ResumeEntry uint32
	// SystemResetOnWake leaves the resume entry clear so a wake resets the
	// chip through the boot ROM.
	SystemResetOnWake bool

	Workaround WorkaroundState

	// Filled by Restore.
	WakeStatus  uint32
	GPIO0Status uint32
}

// New returns a configurator. timer carries the workaround wake source.
func New(b Blocks, timer *hptimer.Timer, delay poll.Delay, log logrus.FieldLogger) *Configurator {
	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Configurator{
		b:     b,
		timer: timer,
		delay: delay,
		log:   log.WithField("component", "pmu"),
		cfg:   config.Default(),
	}
}

// Begin starts a cycle with cfg. Status captured on the previous wake is
// dropped.
func (c *Configurator) Begin(cfg *config.SleepConfig) {
	c.cfg = cfg
	c.WakeStatus = 0
	c.GPIO0Status = 0
}

// Sleep32k selects the 32 kHz source of the deep-slow clock: the external
// RTC if present, else the divided RC oscillator.
func (c *Configurator) Sleep32k() {
	switch {
	case c.cfg.Mode.Has(config.Ext32k):
		c.b.PMU0CRU.Write32(PMU0CRUClkSelCon(0), mmio.WithWriteMask(0x1, 0x3, 0))
	case !c.cfg.Mode.Has(config.LpPr):
		// 125M * (16 / 61035) = 32.768k
		c.b.PMU0CRU.Write32(PMU0CRUClkSelCon(1), 0x0010ee6b)
		c.b.PMU0CRU.Write32(PMU0CRUClkSelCon(0), mmio.WithWriteMask(0x1, 0x1, 2))
		c.b.PMU0CRU.Write32(PMU0CRUClkSelCon(0), mmio.WithWriteMask(0x0, 0x3, 0))
		c.b.PMUGRF.Write32(PMUGRFSocCon(7), mmio.WithWriteMask(0x1, 0x7, 0))
	}
}

// Restore32k falls back to the oscillator-derived 32 kHz unless the
// external RTC is used.
func (c *Configurator) Restore32k() {
	if c.cfg.Mode.Has(config.Ext32k) {
		return
	}

	c.b.PMU0CRU.Write32(PMU0CRUClkSelCon(0), mmio.WithWriteMask(0x0, 0x1, 2))
	c.b.PMU0CRU.Write32(PMU0CRUClkSelCon(0), mmio.WithWriteMask(0x0, 0x3, 0))
}

// DDRSleep hands DDR low power to the PMU: controller auto power-down and
// self-refresh off, auto gating off, PMU requests on, then DDR IO retention
// driven by the PMU. The wait for the controller to settle in normal mode
// is bounded; on timeout the hand-off still completes.
func (c *Configurator) DDRSleep() error {
	c.saved.ddrgrfCon1 = c.b.DDRGRF.Read32(DDRGRFCon(1))
	c.saved.ddrgrfCon5 = c.b.DDRGRF.Read32(DDRGRFCon(5))
	c.saved.ddrgrfCon8 = c.b.DDRGRF.Read32(DDRGRFCon(8))
	c.saved.pmugrfCon0 = c.b.PMUGRF.Read32(PMUGRFSocCon(0))

	mmio.ClearBits(c.b.DDRC, DDRCPwrCtl, mmio.Bit(0)|mmio.Bit(1))

	c.b.DDRGRF.Write32(DDRGRFCon(1), mmio.WithWriteMask(0x0, 0x3, 9))
	c.b.DDRGRF.Write32(DDRGRFCon(1), mmio.WithWriteMask(0x0, 0x1ff, 0))
	c.b.DDRGRF.Write32(DDRGRFCon(5), mmio.WithWriteMask(0x1, 0x1, 3))
	c.b.DDRGRF.Write32(DDRGRFCon(8), mmio.WithWriteMask(0x7, 0x7, 4))

	var err error

	if werr := poll.Until(func() bool {
		return c.b.DDRC.Read32(DDRCStat)&DDRCOpModeMask == DDRCOpModeNormal
	}, DDRCStatTimeout, c.delay); werr != nil {
		st := c.b.DDRC.Read32(DDRCStat)
		c.log.WithFields(logrus.Fields{"reg": "ddrc_stat", "value": st, "expect": DDRCOpModeNormal}).
			Warn("ddr controller did not reach normal mode")

		err = fmt.Errorf("ddrc operating mode: %w", werr)
	}

	c.b.PMUGRF.Write32(PMUGRFSocCon(0), mmio.WithWriteMask(0x0, 0xf, 9))

	return err
}

// DDRRestore replays the registers DDRSleep changed.
func (c *Configurator) DDRRestore() {
	c.b.PMUGRF.Write32(PMUGRFSocCon(0), mmio.WithFullUpperMask(c.saved.pmugrfCon0))
	c.b.DDRGRF.Write32(DDRGRFCon(1), mmio.WithFullUpperMask(c.saved.ddrgrfCon1))
	c.b.DDRGRF.Write32(DDRGRFCon(8), mmio.WithFullUpperMask(c.saved.ddrgrfCon8))
	c.b.DDRGRF.Write32(DDRGRFCon(5), mmio.WithFullUpperMask(c.saved.ddrgrfCon5))
}
