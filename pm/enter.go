package pm

import (
	"fmt"

	"github.com/bobuhiro11/gorkpm/config"
	"github.com/bobuhiro11/gorkpm/region"
	"github.com/bobuhiro11/gorkpm/suspend"
	"github.com/sirupsen/logrus"
)

// logicOff reports whether the logic domain loses power in mode.
func logicOff(mode config.Mode) bool {
	return mode.Has(config.ArmOffLogOff) || mode.Has(config.ArmOffPmuOff)
}

// pmu1Off reports whether the PMU1 subdomain loses power in mode.
func pmu1Off(mode config.Mode) bool {
	return mode.Has(config.ArmOffPmuOff)
}

func (c *Context) emit(ch byte) {
	c.UART.PutChar(ch)
	c.Checkpoints = append(c.Checkpoints, ch)
}

// done records p as executed and emits its checkpoint.
func (c *Context) done(p Phase) {
	c.Phases = append(c.Phases, p)

	if c.OnPhase != nil {
		c.OnPhase(p)
	}

	c.emit(p.Checkpoint())
}

// skipped emits the checkpoint of a conditional phase the mode leaves out,
// so the debug stream has the same shape in every mode.
func (c *Context) skipped(p Phase) {
	c.emit(p.Checkpoint())
}

func (c *Context) timeout(err error, reg string, value, expect uint32) {
	c.log.WithError(err).WithFields(logrus.Fields{
		"reg":    reg,
		"value":  value,
		"expect": expect,
	}).Warn("bounded wait timed out, continuing")

	c.Timeouts = append(c.Timeouts, err)
}

// begin takes a private copy of the policy configuration and drops every
// per-cycle result of the previous cycle.
func (c *Context) begin() {
	if c.provider != nil {
		if cfg := c.provider.SleepConfig(); cfg != nil {
			c.cfg = cfg.Clone()
		}
	}

	c.Phases = c.Phases[:0]
	c.Checkpoints = c.Checkpoints[:0]
	c.Timeouts = nil
	c.cycles++

	c.PMU.Begin(c.cfg)
}

func (c *Context) dumpRegions() {
	if c.DumpRegions == nil {
		return
	}

	for _, s := range c.Sets.All() {
		region.Dump(c.DumpRegions, s)
	}
}

// Enter implements suspend.Ops. It runs one complete suspend/resume cycle.
// Bounded-wait timeouts do not stop the cycle; they are collected in
// Timeouts and the cycle still returns nil. A CPU that falls through its
// low-power entry either resets the system, returning ErrEmergencyReset
// once the CPU is halted, or runs the resume path and returns
// ErrCPUSuspendFailed.
func (c *Context) Enter(s suspend.State) error {
	if !c.Valid(s) {
		return fmt.Errorf("%v: %w", s, ErrStateNotSupported)
	}

	c.begin()

	mode := c.cfg.Mode
	log := c.log.WithFields(logrus.Fields{"cycle": c.cycles, "mode": mode, "wake": c.cfg.Wake})
	log.Debug("suspend cycle start")

	c.printEnterInfo()
	c.printGPIOIntRegs()

	c.emit('-')

	c.Gates.Suspend()
	c.done(ClocksGated)

	c.socSleepConfig()
	c.done(PMUProgrammed)

	c.gpioConfig()
	c.done(IOConfigured)

	c.saveCore()
	c.done(CoreDomainSaved)

	if logicOff(mode) {
		c.saveLogic()
		c.done(LogicDomainSaved)
	} else {
		c.skipped(LogicDomainSaved)
	}

	if pmu1Off(mode) {
		c.savePMU1()
		c.done(PMUSubdomainSaved)
	} else {
		c.skipped(PMUSubdomainSaved)
	}

	c.hptimerSuspend()
	c.dumpRegions()

	c.UART.PutString("-WFI-")

	var failed error

	if !c.cpu.Retire() {
		if c.WakeupToSystemReset {
			c.emergencyReset()
			log.Error("cpu fell through wfi, system reset issued")

			return ErrEmergencyReset
		}

		c.UART.PutString("Failed to suspend\n")
		log.Error("cpu fell through wfi")

		failed = ErrCPUSuspendFailed
	}

	c.hptimerResume()
	c.done(CPURetired)

	if pmu1Off(mode) {
		c.restorePMU1()
		c.done(PMUSubdomainRestored)
	} else {
		c.skipped(PMUSubdomainRestored)
	}

	if logicOff(mode) {
		c.restoreLogic()
		c.done(LogicDomainRestored)
	} else {
		c.skipped(LogicDomainRestored)
	}

	c.restoreCore()
	c.done(CoreDomainRestored)
	c.dumpRegions()

	c.GPIO0.Restore()
	c.done(IORestored)

	c.socSleepRestore()
	c.done(PMUCleared)

	c.hptimerWaitSync()

	c.Gates.Resume()
	c.done(ClocksUngated)

	c.emit('-')

	c.printWakeSource()
	c.UART.PutString("exit sleep\n")

	log.WithFields(logrus.Fields{
		"wake_status": c.PMU.WakeStatus,
		"timeouts":    len(c.Timeouts),
	}).Info("suspend cycle done")

	return failed
}
