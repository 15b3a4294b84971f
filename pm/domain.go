package pm

import (
	"github.com/bobuhiro11/gorkpm/clock"
	"github.com/bobuhiro11/gorkpm/config"
	"github.com/bobuhiro11/gorkpm/hptimer"
	"github.com/bobuhiro11/gorkpm/mmio"
	"github.com/bobuhiro11/gorkpm/pmu"
	"github.com/bobuhiro11/gorkpm/region"
)

func (c *Context) slowMode() {
	c.cru.Write32(CRUModeCon, CRUSlowMode)
}

func (c *Context) restorePVTPLL(s *region.Set) {
	region.Restore(s, s.Captured())

	if c.delay != nil {
		c.delay()
	}
}

func (c *Context) saveCore() {
	c.emit('a')

	region.Save(c.Sets.PVTPLLCore)
	c.emit('b')

	region.Save(c.Sets.Core)
	c.emit('c')

	c.GIC.Save()
	c.emit('d')
}

// restoreCore brings the core domain back with the CRU in slow mode while
// its PLL settings are replayed.
func (c *Context) restoreCore() {
	mode := c.cru.Read32(CRUModeCon)

	c.emit('a')

	c.GIC.Restore()
	c.emit('b')

	c.slowMode()
	c.emit('c')

	c.restorePVTPLL(c.Sets.PVTPLLCore)
	c.emit('d')

	region.Restore(c.Sets.Core, c.Sets.Core.Captured())
	c.emit('e')

	c.cru.Write32(CRUModeCon, mmio.WithFullUpperMask(mode))
	c.emit('f')
}

func (c *Context) saveLogic() {
	c.cruMode = c.cru.Read32(CRUModeCon)

	c.emit('a')

	region.Save(c.Sets.PVTPLLLogic)
	c.emit('b')

	region.Save(c.Sets.Logic)
	c.emit('c')

	c.UART.Save(&c.uartCtx)
	c.emit('d')
}

// restoreLogic replays the logic domain. The debug UART comes back first so
// the rest of the sequence stays visible.
func (c *Context) restoreLogic() {
	c.emit('a')

	c.UART.Restore(&c.uartCtx)
	c.emit('b')

	c.slowMode()
	c.emit('c')

	c.restorePVTPLL(c.Sets.PVTPLLLogic)
	c.emit('d')

	region.Restore(c.Sets.Logic, c.Sets.Logic.Captured())
	c.emit('e')

	c.waitPLL(clock.GPLL)

	c.cru.Write32(CRUModeCon, mmio.WithFullUpperMask(c.cruMode))
	c.emit('f')

	c.PMU.ReleaseResetHolds()
	c.kickWatchdogs()
}

func (c *Context) waitPLL(pll uint32) {
	v, err := clock.WaitLock(c.cru, pll, c.delay)
	if err == nil {
		return
	}

	c.UART.PutString("Can't wait pll lock: ")
	c.UART.PutHex(pll)
	c.UART.PutChar('\n')

	c.timeout(err, "cru_pll_con1", v, clock.PLLCon1Lock)
}

// kickWatchdogs restarts the count of every enabled watchdog. Their
// configuration was just replayed from the logic domain list.
func (c *Context) kickWatchdogs() {
	for _, w := range c.wdts {
		if w.Read32(WDTCR)&WDTCREn != 0 {
			w.Write32(WDTCRR, WDTKickVal)
		}
	}
}

func (c *Context) savePMU1() {
	c.emit('a')

	region.Save(c.Sets.PMU1)
	c.emit('b')
}

func (c *Context) restorePMU1() {
	c.emit('a')

	region.Restore(c.Sets.PMU1, c.Sets.PMU1.Captured())
	c.emit('b')
}

// socSleepConfig programs the SoC for sleep: the 32k source, the DDR
// hand-off and the PMU FSM.
func (c *Context) socSleepConfig() {
	c.emit('a')

	if c.cfg.Mode.Has(config.PmuAlive32k) {
		c.PMU.Sleep32k()
	}
	c.emit('b')

	if err := c.PMU.DDRSleep(); err != nil {
		c.Timeouts = append(c.Timeouts, err)
	}
	c.emit('c')

	c.PMU.Program()
	c.emit('d')
}

func (c *Context) socSleepRestore() {
	c.emit('d')

	c.PMU.Restore(c.GPIO0)
	c.emit('c')

	c.PMU.DDRRestore()
	c.emit('b')

	if c.cfg.Mode.Has(config.PmuAlive32k) {
		c.PMU.Restore32k()
	}
	c.emit('a')
}

func (c *Context) gpioConfig() {
	c.GPIO0.Configure(c.cfg.IOPins)

	if c.cfg.Mode.Has(config.PmuDbg) {
		c.PMU.EnableDebug()
		c.GPIO0.RouteDebug()
	}
}

// hptimerSuspend arms the timestamp latch a soft adjust measures on wake.
func (c *Context) hptimerSuspend() {
	if c.cfg.Mode.Has(config.PmuAlive32k) && c.Timer.Mode() == hptimer.SoftAdjust {
		c.pmusgrf.Write32(pmu.PMUSGRFSocCon(0), mmio.WithWriteMask(0x1, 0x1, 8))
	}
}

// hptimerResume disarms the latch and starts the resync. It does not wait;
// the wait happens right before the clocks come back.
func (c *Context) hptimerResume() {
	mode := c.Timer.Mode()

	c.pmusgrf.Write32(pmu.PMUSGRFSocCon(0), mmio.WithWriteMask(0x0, 0x1, 8))

	if !c.cfg.Mode.Has(config.PmuAlive32k) {
		return
	}

	switch mode {
	case hptimer.HardAdjust:
		c.Timer.HardAdjustNoWait()
	case hptimer.SoftAdjust:
		if err := c.Timer.SoftAdjustNoWait(24000000, 32768); err != nil {
			c.Timeouts = append(c.Timeouts, err)
		}
	}
}

func (c *Context) hptimerWaitSync() {
	if c.Timer.Mode() == hptimer.Normal || !c.cfg.Mode.Has(config.PmuAlive32k) {
		return
	}

	if err := c.Timer.WaitSync(); err != nil {
		c.Timeouts = append(c.Timeouts, err)
	}
}
