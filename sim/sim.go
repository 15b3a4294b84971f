// Package sim is a scripted RV1103B register space. Every block of the
// platform resource map is an mmio.Sim; the handful of registers whose
// value is produced by hardware (PLL lock, DDR controller state, the HPTimer
// counter and handshakes, the UART line status, PMU wake status) are
// modelled with hooks, and CPU retirement drops the state of every power
// domain the programmed mode turns off.
package sim

import (
	"bytes"
	"math/rand"
	"sort"

	"github.com/bobuhiro11/gorkpm/clock"
	"github.com/bobuhiro11/gorkpm/gpio"
	"github.com/bobuhiro11/gorkpm/hptimer"
	"github.com/bobuhiro11/gorkpm/mmio"
	"github.com/bobuhiro11/gorkpm/pm"
	"github.com/bobuhiro11/gorkpm/pmu"
	"github.com/bobuhiro11/gorkpm/region"
	"github.com/bobuhiro11/gorkpm/serial"
	"github.com/sirupsen/logrus"
)

// SleepTicks is how far the HPTimer counter moves while the CPU is retired.
const SleepTicks = 24000000

// Reg names one register of the simulated space.
type Reg struct {
	Block string
	Off   uint32
}

// SoC is the simulated chip.
type SoC struct {
	Mapper  *mmio.SimMapper
	Log     *mmio.Log
	Console bytes.Buffer
	CPU     *CPU

	// Syncs holds every value written to the HPTimer sync request.
	Syncs []uint32

	sets  *pm.RegionSets
	log   logrus.FieldLogger
	count uint64
	dll   uint32
	dlh   uint32

	// Knobs a test flips before a cycle.
	PLLStuck   bool
	DDRCStuck  bool
	NoSync     bool
	LatchStuck bool
	// WakeStatus, if non-zero, is the PMU wake status raised on wake,
	// masked by the enabled sources. Zero picks the lowest enabled source.
	WakeStatus uint32
	GPIO0Wake  uint32
}

// New builds the register space of every block in pm.Resources.
func New(log logrus.FieldLogger) (*SoC, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	rm, err := pm.Resources()
	if err != nil {
		return nil, err
	}

	s := &SoC{Log: &mmio.Log{}, log: log.WithField("component", "sim")}
	s.Mapper = mmio.NewSimMapper(s.Log)

	blocks, err := rm.Blocks(s.Mapper)
	if err != nil {
		return nil, err
	}

	s.sets = pm.NewRegionSets(blocks)
	s.CPU = &CPU{soc: s}

	s.markHiword()
	s.hookCRU()
	s.hookDDRC()
	s.hookHPTimer()
	s.hookUART()
	s.hookGPIO()

	// 64 interrupt lines
	s.Block(pm.GICD).Poke(0x04, 0x1)

	return s, nil
}

// Block returns the simulated block name. It panics on an unknown name.
func (s *SoC) Block(name string) *mmio.Sim {
	b, ok := s.Mapper.Blocks[name]
	if !ok {
		panic("sim: unknown block " + name)
	}

	return b
}

// markHiword marks every register a region list restores with a write
// mask, unless another list restores it raw.
func (s *SoC) markHiword() {
	plain := make(map[Reg]bool)
	masked := make(map[Reg]bool)

	for _, set := range s.sets.All() {
		for _, r := range set.Regions {
			m := masked
			if r.WMask == 0 {
				m = plain
			}

			forRegion(r, func(reg Reg) { m[reg] = true })
		}
	}

	for reg := range masked {
		if !plain[reg] {
			s.Block(reg.Block).Hiword(reg.Off)
		}
	}

	for name, n := range map[string]uint32{
		pm.CRU: pm.CRUGateCount, pm.PMU0CRU: pm.PMU0CRUGateCount, pm.PMU1CRU: pm.PMU1CRUGateCount,
		pm.PeriCRU: pm.PeriCRUGateCount, pm.NPUCRU: pm.NPUCRUGateCount, pm.VencCRU: pm.VencCRUGateCount,
		pm.VICRU: pm.VICRUGateCount, pm.CoreCRU: pm.CoreCRUGateCount,
	} {
		s.Block(name).HiwordRange(clock.GateCon(0), clock.GateCon(n-1), 4)
	}

	s.Block(pm.CRU).Hiword(pm.CRUModeCon)
	s.Block(pm.PMU0CRU).Hiword(pmu.PMU0CRUClkSelCon(0))

	s.Block(pm.PMU).Hiword(
		pmu.PMU0PwrCon, pmu.PMU0InfoTxCon, pmu.PMU1PwrCon, pmu.PMU1IntMaskCon,
		pmu.PMU1PLLPdCon, pmu.PMU1DDRPwrCon, pmu.PMU1CRUPwrCon0, pmu.PMU1CRUPwrCon1,
		pmu.PMU2BusIdleCon, pmu.PMU2SCUPwrCon, pmu.PMU2ClusterIdleCon,
		pmu.PMU2CPUAutoPwrCon, pmu.PMU2SCUAutoPwrCon, pmu.PMU2NOCAutoCon,
	)
	s.Block(pm.PMUGRF).HiwordRange(pmu.PMUGRFSocCon(0), pmu.PMUGRFSocCon(7), 4)
	s.Block(pm.PMUSGRF).Hiword(pmu.PMUSGRFSocCon(0), pmu.PMUSGRFSocCon(1))
	s.Block(pm.DDRGRF).Hiword(pmu.DDRGRFCon(1), pmu.DDRGRFCon(5), pmu.DDRGRFCon(8))

	s.Block(pm.GPIO0).Hiword(gpio.RegSwportDRL, gpio.RegSwportDRH, gpio.RegSwportDDRL, gpio.RegSwportDDRH)
	s.Block(pm.IOC0).Hiword(0x0, 0x4, gpio.RegIOCPullLow)
	s.Block(pm.IOC1).Hiword(0x8, 0xc, gpio.RegIOCPullHigh)

	s.Block(pm.HPTimer).Hiword(hptimer.RegCtrl)
}

func (s *SoC) hookCRU() {
	cru := s.Block(pm.CRU)

	// The lock flag is status only; it never sticks in the stored value.
	for _, pll := range plls {
		con1 := clock.PLLCon(pll, 1)

		cru.Hiword(con1)
		cru.OnRead(con1, func(cur uint32) uint32 {
			if s.PLLStuck {
				return cur
			}

			return cur | clock.PLLCon1Lock
		})
		cru.OnWrite(con1, func(cur, val uint32) uint32 {
			return mmio.ApplyHiword(cur, val) &^ clock.PLLCon1Lock
		})
	}
}

func (s *SoC) hookDDRC() {
	s.Block(pm.DDRC).OnRead(pmu.DDRCStat, func(cur uint32) uint32 {
		if s.DDRCStuck {
			return cur &^ pmu.DDRCOpModeMask
		}

		return cur&^pmu.DDRCOpModeMask | pmu.DDRCOpModeNormal
	})
}

func (s *SoC) hookHPTimer() {
	t := s.Block(pm.HPTimer)

	t.OnRead(hptimer.RegCurrTimerValue0, func(uint32) uint32 {
		v := uint32(s.count)
		s.count++

		return v
	})
	t.OnRead(hptimer.RegCurrTimerValue1, func(uint32) uint32 { return uint32(s.count >> 32) })
	t.OnWrite(hptimer.RegIntrStatus, func(cur, val uint32) uint32 { return cur &^ val })
	t.OnRead(hptimer.RegBeginEndValid, func(uint32) uint32 {
		if s.LatchStuck {
			return 0
		}

		return 0x3
	})
	t.OnWrite(hptimer.RegBeginEndValid, func(uint32, uint32) uint32 { return 0 })
	t.OnWrite(hptimer.RegSyncReq, func(cur, val uint32) uint32 {
		s.Syncs = append(s.Syncs, val)

		if !s.NoSync {
			t.Poke(hptimer.RegIntrStatus, t.Peek(hptimer.RegIntrStatus)|1<<hptimer.IntSync)
		}

		return 0
	})
}

// hookUART models the divisor latch banking and an always-ready
// transmitter whose output lands in Console.
func (s *SoC) hookUART() {
	u := s.Block(pm.UART0)
	dlab := func() bool { return u.Peek(serial.RegLCR)&serial.LCRDLAB != 0 }

	u.OnRead(serial.RegLSR, func(uint32) uint32 { return 0x60 })
	u.OnWrite(serial.RegTHR, func(cur, val uint32) uint32 {
		if dlab() {
			s.dll = val

			return cur
		}

		s.Console.WriteByte(byte(val))

		return cur
	})
	u.OnRead(serial.RegTHR, func(cur uint32) uint32 {
		if dlab() {
			return s.dll
		}

		return cur
	})
	u.OnWrite(serial.RegIER, func(cur, val uint32) uint32 {
		if dlab() {
			s.dlh = val

			return cur
		}

		return val
	})
	u.OnRead(serial.RegIER, func(cur uint32) uint32 {
		if dlab() {
			return s.dlh
		}

		return cur
	})
}

func (s *SoC) hookGPIO() {
	// write one to clear
	s.Block(pm.GPIO0).OnWrite(gpio.RegIntStatus, func(cur, val uint32) uint32 { return cur &^ val })
}

// Covered returns every register the domain region lists cover, sorted.
func (s *SoC) Covered() []Reg {
	seen := make(map[Reg]bool)

	for _, set := range s.sets.All() {
		forEach(set, func(r Reg) { seen[r] = true })
	}

	regs := make([]Reg, 0, len(seen))
	for r := range seen {
		regs = append(regs, r)
	}

	sort.Slice(regs, func(i, j int) bool {
		if regs[i].Block != regs[j].Block {
			return regs[i].Block < regs[j].Block
		}

		return regs[i].Off < regs[j].Off
	})

	return regs
}

func forRegion(r region.Region, fn func(Reg)) {
	for off := r.Start; off <= r.End; off += r.Stride {
		fn(Reg{Block: r.Block.Name(), Off: off})
	}
}

func forEach(set *region.Set, fn func(Reg)) {
	for _, r := range set.Regions {
		forRegion(r, fn)
	}
}

var plls = []uint32{clock.DPLL, clock.GPLL}

// Seed fills every covered register with random contents. PLL status bits
// are left clear.
func (s *SoC) Seed(rnd *rand.Rand) {
	for _, r := range s.Covered() {
		s.Block(r.Block).Poke(r.Off, rnd.Uint32())
	}

	cru := s.Block(pm.CRU)
	for _, pll := range plls {
		con1 := clock.PLLCon(pll, 1)
		cru.Poke(con1, cru.Peek(con1)&^(clock.PLLCon1Lock|clock.PLLCon1PwrDown))
	}
}

// Values returns the stored value of every register in regs.
func (s *SoC) Values(regs []Reg) map[Reg]uint32 {
	out := make(map[Reg]uint32, len(regs))
	for _, r := range regs {
		out[r] = s.Block(r.Block).Peek(r.Off)
	}

	return out
}

func (s *SoC) powerOff(set *region.Set) {
	forEach(set, func(r Reg) { s.Block(r.Block).Poke(r.Off, 0) })
}

func (s *SoC) powerOffBlock(name string) {
	b := s.Block(name)
	for _, off := range b.Offsets() {
		b.Poke(off, 0)
	}
}
