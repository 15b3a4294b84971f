package sim

import (
	"github.com/bobuhiro11/gorkpm/gic"
	"github.com/bobuhiro11/gorkpm/gpio"
	"github.com/bobuhiro11/gorkpm/pm"
	"github.com/bobuhiro11/gorkpm/pmu"
	"github.com/bobuhiro11/gorkpm/region"
	"github.com/sirupsen/logrus"
)

// CPU is the simulated boot core. It implements pm.CPU.
type CPU struct {
	soc *SoC

	// FallThrough makes the next retirements return without a wake.
	FallThrough bool
	// SkipFSM resumes without the PMU FSM having run, so the wake status
	// reads as zero.
	SkipFSM bool

	Retired int
	Halted  bool
	// Lost names the register sets dropped by the last retirement.
	Lost []string
}

var _ pm.CPU = (*CPU)(nil)

// Retire implements pm.CPU. The power domains the PMU was programmed to
// turn off lose their contents, the HPTimer counter moves on and the
// wake status is latched.
func (c *CPU) Retire() bool {
	s := c.soc
	c.Retired++
	c.Lost = c.Lost[:0]

	if c.FallThrough {
		return false
	}

	p := s.Block(pm.PMU)
	resumeSel := s.Block(pm.PMUSGRF).Peek(pmu.PMUSGRFSocCon(1)) >> 10 & 0x3
	pmuOff := p.Peek(pmu.PMU0PwrCon)&(1<<pmu.PwrMode0En) != 0

	c.lose(s.sets.Core, s.sets.PVTPLLCore)
	s.powerOffBlock(pm.GICD)
	s.powerOffBlock(pm.GICC)
	s.Block(pm.GICD).Poke(gic.GICDTyper, 0x1)

	if resumeSel == pmu.ResumeFromBootROM {
		c.lose(s.sets.Logic, s.sets.PVTPLLLogic)
		s.powerOffBlock(pm.UART0)
		s.dll, s.dlh = 0, 0
	}

	if pmuOff {
		c.lose(s.sets.PMU1)
	}

	s.count += SleepTicks

	st := uint32(0)

	if !c.SkipFSM {
		en := p.Peek(pmu.PMU1WakeupIntCon) & 0xffff

		st = s.WakeStatus & en
		if s.WakeStatus == 0 {
			st = en & -en
		}
	}

	p.Poke(pmu.PMU1WakeupIntSt, st)

	gp := s.Block(pm.GPIO0)
	gp.Poke(gpio.RegIntStatus, gp.Peek(gpio.RegIntStatus)|s.GPIO0Wake)

	s.log.WithFields(logrus.Fields{
		"resume_sel": resumeSel,
		"lost":       c.Lost,
	}).Debug("cpu retired")

	return true
}

func (c *CPU) lose(sets ...*region.Set) {
	for _, set := range sets {
		c.soc.powerOff(set)
		c.Lost = append(c.Lost, set.Name)
	}
}

// Halt implements pm.CPU.
func (c *CPU) Halt() {
	c.Halted = true
}
