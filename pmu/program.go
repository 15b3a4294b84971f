package pmu

import (
	"github.com/bobuhiro11/gorkpm/config"
	"github.com/bobuhiro11/gorkpm/hptimer"
	"github.com/bobuhiro11/gorkpm/mmio"
	"github.com/sirupsen/logrus"
)

func bits(n ...uint32) uint32 {
	v := uint32(0)
	for _, b := range n {
		v |= mmio.Bit(b)
	}

	return v
}

// CountClockKHz is the clock the PMU stable counters run from while the
// FSM sleeps.
func CountClockKHz(mode config.Mode) uint32 {
	if mode.Has(config.PmuAlive32k) {
		return 32
	}

	return 24000
}

// Program writes the PMU FSM configuration for the cycle and applies the
// timeout wakeup workaround last.
func (c *Configurator) Program() {
	b := c.b
	mode := c.cfg.Mode

	c.saved.pmugrfCon4 = b.PMUGRF.Read32(PMUGRFSocCon(4))
	c.saved.pmugrfCon5 = b.PMUGRF.Read32(PMUGRFSocCon(5))
	c.saved.pmugrfCon6 = b.PMUGRF.Read32(PMUGRFSocCon(6))

	pmu0Pwr := uint32(0)
	wkup := uint32(c.cfg.Wake)

	if b.PMU.Read32(PMU1WakeupTimeout) != 0 {
		wkup |= mmio.Bit(WakeupTimeout)
	}

	pmu1Pwr := bits(PwrMode1En, PDPMU1Bypass, SlpCntEn)
	scu := bits(SCUL2Flush, SCUL2Idle, SCUPwrDn, SCUPwrOff, ClstCPUPd, SCUVolGt, ClstClkSrcGt)
	busIdle := bits(IdleReqMSCH, IdleReqDDRC, IdleReqPeri, IdleReqVEPU, IdleReqVI, IdleReqCRU)
	cru0 := bits(WakeupRst, InputClamp, AliveOscEn, PowerOff, OffIO)
	cru1 := uint32(0)
	ddr := bits(DDRSrefC, DDRSrefA, DDRIORetOnEnter, DDRIORstIOVEnter,
		DDRCtlAAutoGating, DDRCtlCAutoGating, DDRPhyAutoGating, DDRIOHzEnter)
	pll := bits(DPLLPd, GPLLPd)

	khz := CountClockKHz(mode)
	if mode.Has(config.PmuAlive32k) {
		cru0 |= mmio.Bit(Alive32k)
	}

	if mode.Has(config.PmuDisOsc) {
		cru0 |= mmio.Bit(OscDis)
	}

	if mode.Has(config.TimeoutWkup) {
		b.PMU.Write32(PMU1WakeupTimeout, khz*1000)
		wkup |= mmio.Bit(WakeupTimeout)
	}

	switch {
	case mode.Has(config.ArmPd):
		pmu1Pwr &^= mmio.Bit(SlpCntEn)
		cru0 &^= bits(WakeupRst, InputClamp, PowerOff)
		ddr = bits(DDRSrefC, DDRSrefA)

		c.resumeFrom(ResumeFromPMUSRAM)
	case mode.Has(config.ArmOff):
		cru0 &^= bits(WakeupRst, InputClamp)

		c.resumeFrom(ResumeFromPMUSRAM)
	case mode.Has(config.ArmOffLogOff):
		b.PMUGRF.Write32(PMUGRFSocCon(4), RstHoldCon4)
		b.PMUGRF.Write32(PMUGRFSocCon(5), RstHoldCon5)
		b.PMUGRF.Write32(PMUGRFSocCon(6), RstHoldCon6)

		c.resumeFrom(ResumeFromBootROM)
	case mode.Has(config.ArmOffPmuOff):
		pmu1Pwr &^= mmio.Bit(PDPMU1Bypass)
		pmu0Pwr |= bits(PwrMode0En, PMU1BusBypass, PMU1PwrGtEn, PMU1BusIdleEn, PMU1BusAuto)

		b.PMUGRF.Write32(PMUGRFSocCon(4), RstHoldCon4)
		b.PMUGRF.Write32(PMUGRFSocCon(5), RstHoldCon5)
		b.PMUGRF.Write32(PMUGRFSocCon(6), RstHoldCon6Keep)

		c.resumeFrom(ResumeFromBootROM)
	}

	if mode.Has(config.LpPr) {
		b.PMUGRF.Write32(PMUGRFOsReg(2), 0)
		b.PMUGRF.Write32(PMUGRFOsReg(3), 0)

		b.PMUGRF.Write32(PMUGRFSocCon(4), LpPrRstHoldCon4)
		b.PMUGRF.Write32(PMUGRFSocCon(5), LpPrRstHoldCon5)
		b.PMUGRF.Write32(PMUGRFSocCon(6), LpPrRstHoldCon6)

		pmu1Pwr &^= mmio.Bit(DDRBypass)
	}

	b.PMU.Write32(PMU1OscStableCnt, khz*4)
	b.PMU.Write32(PMU1PMICStableCnt, khz*6)
	b.PMU.Write32(PMU1SleepCnt, khz*15)

	// These run after the PMU clock is back on 24 MHz.
	b.PMU.Write32(PMU1WakeupRstClrCnt, 0)
	b.PMU.Write32(PMU1PLLLockCnt, 1200)
	b.PMU.Write32(PMU1PWMSwitchCnt, 24000*2)

	for _, off := range []uint32{PMU2SCUStableCnt, PMU2SCUPwrUpCnt, PMU2SCUPwrDnCnt, PMU2SCUVolUpCnt, PMU2SCUVolDnCnt} {
		b.PMU.Write32(off, 0)
	}

	b.PMU.Write32(PMU1IntMaskCon, 0x00010001)
	b.PMU.Write32(PMU2SCUPwrCon, mmio.WithFullUpperMask(scu))
	b.PMU.Write32(PMU2ClusterIdleCon, 0x003f003f)
	b.PMU.Write32(PMU2CPUAutoPwrCon, mmio.FullUpperMask|mmio.Bit(AutoIntMsk))
	b.PMU.Write32(PMU2SCUAutoPwrCon, mmio.FullUpperMask|mmio.Bit(AutoIntMsk))

	b.PMU.Write32(PMU1CRUPwrCon0, mmio.WithFullUpperMask(cru0))
	b.PMU.Write32(PMU1CRUPwrCon1, mmio.WithFullUpperMask(cru1))
	b.PMU.Write32(PMU2BusIdleCon, mmio.WithFullUpperMask(busIdle))

	b.PMU.Write32(PMU1DDRPwrCon, mmio.WithFullUpperMask(ddr))
	b.PMU.Write32(PMU1PLLPdCon, mmio.WithFullUpperMask(pll))
	b.PMU.Write32(PMU1WakeupIntCon, wkup)
	b.PMU.Write32(PMU1PwrCon, mmio.WithFullUpperMask(pmu1Pwr))

	b.PMU.Write32(PMU0PwrCon, mmio.WithFullUpperMask(pmu0Pwr))

	if c.SystemResetOnWake {
		b.PMUGRF.Write32(PMUGRFOsReg(OsRegResumeEntry), 0)
		b.PMUGRF.Write32(PMUGRFOsReg(OsRegWakeSource), 0)
	} else {
		b.PMUGRF.Write32(PMUGRFOsReg(OsRegResumeEntry), c.ResumeEntry)
	}

	c.ApplyWorkaround()
}

func (c *Configurator) resumeFrom(src uint32) {
	c.b.PMUSGRF.Write32(PMUSGRFSocCon(1), mmio.WithWriteMask(src, 0x3, 10))
}

// EnableDebug routes the PMU state machine to the info tx pins.
func (c *Configurator) EnableDebug() {
	c.b.PMU.Write32(PMU0InfoTxCon, 0x01ff01ff)
}

// TimeoutToHPTimer converts a PMU wakeup timeout count into HPTimer
// counts. With the PMU on the always-on 32 kHz clock the count is rescaled
// to the 24 MHz HPTimer rate.
func TimeoutToHPTimer(count uint32, mode config.Mode) uint64 {
	if mode.Has(config.PmuAlive32k) {
		return uint64(count) / 32 * 24000
	}

	return uint64(count)
}

// ApplyWorkaround moves a programmed timeout wakeup onto the HPTimer 32k
// reach interrupt. The PMU timeout wakeup may not fire in some power modes.
// It does nothing when the FSM ran on the last cycle, or when no timeout is
// enabled, so applying it twice is harmless.
func (c *Configurator) ApplyWorkaround() {
	if c.Workaround.EnteredPMUFSM {
		return
	}

	wkup := c.b.PMU.Read32(PMU1WakeupIntCon)
	if wkup&mmio.Bit(WakeupTimeout) == 0 {
		return
	}

	wkup = wkup&^mmio.Bit(WakeupTimeout) | mmio.Bit(WakeupHPTimer)
	c.b.PMU.Write32(PMU1WakeupIntCon, wkup)

	cnt := c.b.PMU.Read32(PMU1WakeupTimeout)
	delta := TimeoutToHPTimer(cnt, c.cfg.Mode)

	c.log.WithFields(logrus.Fields{"timeout": cnt, "hptimer_delta": delta}).
		Debug("timeout wakeup routed through hptimer")

	c.timer.ConfigSleepTimeoutInt(delta)
}

func (c *Configurator) undoWorkaround() {
	c.Workaround.EnteredPMUFSM = c.WakeStatus != 0

	c.timer.DisableInt(hptimer.Int32KReach)
	c.timer.ClearIntStatus(hptimer.Int32KReach)
}

// Restore records why the chip woke, undoes the workaround and clears the
// PMU FSM configuration. The wake status is read before anything is undone.
func (c *Configurator) Restore(gpio0 IntStatusReader) {
	b := c.b

	c.WakeStatus = b.PMU.Read32(PMU1WakeupIntSt)
	c.GPIO0Status = gpio0.IntStatus()

	c.undoWorkaround()

	for _, off := range []uint32{
		PMU0PwrCon, PMU0InfoTxCon,
		PMU1IntMaskCon, PMU2SCUPwrCon, PMU2ClusterIdleCon, PMU2CPUAutoPwrCon, PMU2SCUAutoPwrCon,
		PMU1CRUPwrCon0, PMU1CRUPwrCon1, PMU2BusIdleCon,
		PMU1DDRPwrCon, PMU1PLLPdCon, PMU1WakeupIntCon, PMU1PwrCon,
	} {
		b.PMU.Write32(off, mmio.FullUpperMask)
	}

	b.PMUGRF.Write32(PMUGRFSocCon(4), mmio.WithFullUpperMask(c.saved.pmugrfCon4))
	b.PMUGRF.Write32(PMUGRFSocCon(5), mmio.WithFullUpperMask(c.saved.pmugrfCon5))
	b.PMUGRF.Write32(PMUGRFSocCon(6), mmio.WithFullUpperMask(c.saved.pmugrfCon6))
}

// ReleaseResetHolds drops every PMUGRF reset hold.
func (c *Configurator) ReleaseResetHolds() {
	for n := uint32(4); n <= 6; n++ {
		c.b.PMUGRF.Write32(PMUGRFSocCon(n), mmio.FullUpperMask)
	}
}

// Wakeup reports the programmed wakeup enables and timeout count.
func (c *Configurator) Wakeup() (enable, timeout uint32) {
	return c.b.PMU.Read32(PMU1WakeupIntCon), c.b.PMU.Read32(PMU1WakeupTimeout)
}
