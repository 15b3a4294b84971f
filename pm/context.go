// Package pm is the suspend/resume orchestrator of the RV1103B. A Context
// owns every register block handle and all cross-cycle state; it is built
// once at init and drives each suspend cycle as an ordered list of phases.
package pm

import (
	"errors"
	"fmt"
	"io"

	"github.com/bobuhiro11/gorkpm/clock"
	"github.com/bobuhiro11/gorkpm/config"
	"github.com/bobuhiro11/gorkpm/gic"
	"github.com/bobuhiro11/gorkpm/gpio"
	"github.com/bobuhiro11/gorkpm/hptimer"
	"github.com/bobuhiro11/gorkpm/mmio"
	"github.com/bobuhiro11/gorkpm/pmu"
	"github.com/bobuhiro11/gorkpm/poll"
	"github.com/bobuhiro11/gorkpm/region"
	"github.com/bobuhiro11/gorkpm/serial"
	"github.com/bobuhiro11/gorkpm/suspend"
	"github.com/sirupsen/logrus"
)

var (
	// ErrCPUSuspendFailed is returned when the CPU came back from its
	// low-power entry without a wake having occurred.
	ErrCPUSuspendFailed = errors.New("cpu returned from low-power entry without wake")

	// ErrEmergencyReset is returned once the system reset fallback has been
	// triggered. Real hardware never gets to see it.
	ErrEmergencyReset = errors.New("emergency system reset triggered")

	// ErrStateNotSupported is returned by Enter for any state but Mem.
	ErrStateNotSupported = errors.New("sleep state not supported")
)

// CPU is the boot core as seen by the orchestrator.
type CPU interface {
	// Retire flushes caches and executes the low-power instruction. It
	// returns true when the core came back through the resume entry after
	// a wake, false when the instruction fell through.
	Retire() bool
	// Halt parks the core for good.
	Halt()
}

// Options configure New.
type Options struct {
	Mapper   mmio.Mapper
	CPU      CPU
	Delay    poll.Delay
	Log      logrus.FieldLogger
	Provider config.Provider

	// ResumeEntry is the physical address of the kernel resume entry.
	ResumeEntry uint32
	// L2Ctlr is the L2 control word replayed by the resume code.
	L2Ctlr uint32

	// WakeupToSystemReset resets the whole system if the CPU falls through
	// its low-power entry.
	WakeupToSystemReset bool

	// OnPhase, if set, is called after every executed phase.
	OnPhase func(Phase)

	// DumpRegions, if set, receives a dump of every domain register list
	// right before the CPU retires and again after the core domain is back.
	DumpRegions io.Writer
}

// Context is the orchestrator state. It is single-owner: only the goroutine
// running Enter touches it or the hardware behind it.
type Context struct {
	blocks map[string]mmio.Block

	cru     mmio.Block
	pmu0cru mmio.Block
	pmugrf  mmio.Block
	pmusgrf mmio.Block
	pmuBlk  mmio.Block
	pmusram mmio.Block
	wdts    []mmio.Block

	cpu      CPU
	delay    poll.Delay
	log      logrus.FieldLogger
	provider config.Provider

	Timer *hptimer.Timer
	PMU   *pmu.Configurator
	Gates *clock.Gates
	GPIO0 *gpio.Bank
	GIC   *gic.Controller
	UART  *serial.Port
	Sets  *RegionSets

	arena   *region.Arena
	uartCtx serial.Context
	cruMode uint32
	cfg     *config.SleepConfig
	cycles  uint32

	WakeupToSystemReset bool
	OnPhase             func(Phase)
	DumpRegions         io.Writer

	// Outcome of the last cycle.
	Phases      []Phase
	Checkpoints []byte
	Timeouts    []error
}

// New resolves every register block from the resource map, declares the
// domain register lists, initialises the HPTimer and writes the resume
// boot data. Any failure here is fatal; no sleep cycle can run.
func New(opts Options) (*Context, error) {
	if opts.Mapper == nil || opts.CPU == nil {
		return nil, errors.New("pm: mapper and cpu are required")
	}

	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	rm, err := Resources()
	if err != nil {
		return nil, fmt.Errorf("resource map: %w", err)
	}

	blocks, err := rm.Blocks(opts.Mapper)
	if err != nil {
		return nil, fmt.Errorf("map blocks: %w", err)
	}

	c := &Context{
		blocks:              blocks,
		cru:                 blocks[CRU],
		pmu0cru:             blocks[PMU0CRU],
		pmugrf:              blocks[PMUGRF],
		pmusgrf:             blocks[PMUSGRF],
		pmuBlk:              blocks[PMU],
		pmusram:             blocks[PMUSRAM],
		wdts:                []mmio.Block{blocks[WDTNS], blocks[WDTS]},
		cpu:                 opts.CPU,
		delay:               opts.Delay,
		log:                 log.WithField("component", "pm"),
		provider:            opts.Provider,
		WakeupToSystemReset: opts.WakeupToSystemReset,
		OnPhase:             opts.OnPhase,
		DumpRegions:         opts.DumpRegions,
		cfg:                 config.Default(),
	}

	c.UART = serial.New(blocks[UART0])
	c.UART.Delay = opts.Delay

	c.Timer = hptimer.New(blocks[HPTimer], opts.Delay, c.UART, log)
	c.PMU = pmu.New(pmu.Blocks{
		PMU:     c.pmuBlk,
		PMUGRF:  c.pmugrf,
		PMUSGRF: c.pmusgrf,
		PMU0CRU: c.pmu0cru,
		DDRC:    blocks[DDRC],
		DDRGRF:  blocks[DDRGRF],
	}, c.Timer, opts.Delay, log)
	c.PMU.ResumeEntry = opts.ResumeEntry
	c.PMU.SystemResetOnWake = opts.WakeupToSystemReset

	c.Gates = clock.NewGates(
		clock.Bank{Block: blocks[CRU], Count: CRUGateCount},
		clock.Bank{Block: blocks[PMU0CRU], Count: PMU0CRUGateCount},
		clock.Bank{Block: blocks[PMU1CRU], Count: PMU1CRUGateCount},
		clock.Bank{Block: blocks[PeriCRU], Count: PeriCRUGateCount},
		clock.Bank{Block: blocks[NPUCRU], Count: NPUCRUGateCount},
		clock.Bank{Block: blocks[VencCRU], Count: VencCRUGateCount},
		clock.Bank{Block: blocks[VICRU], Count: VICRUGateCount},
		clock.Bank{Block: blocks[CoreCRU], Count: CoreCRUGateCount},
	)
	c.GPIO0 = gpio.New(blocks[GPIO0], blocks[IOC0], blocks[IOC1])
	c.GIC = gic.New(blocks[GICD], blocks[GICC], gic.Lines(blocks[GICD]))
	c.Sets = NewRegionSets(blocks)

	sets := append(c.Sets.All(), c.GIC.Sets()...)

	c.arena, err = region.NewArena(sets...)
	if err != nil {
		return nil, fmt.Errorf("region arena: %w", err)
	}

	c.initTimer()
	c.WriteBootData(BootData{
		ResumeEntry: opts.ResumeEntry,
		L2Ctlr:      opts.L2Ctlr,
	})

	// bus idle auto control
	c.pmuBlk.Write32(pmu.PMU2NOCAutoCon, 0x003f003f)
	// gpio0_a3 active low, gpio0_a4 active high, sleep function
	c.pmugrf.Write32(pmu.PMUGRFSocCon(1), mmio.WithWriteMask(0x10, 0x3f, 0))
	// timeout wakeup off until a cycle asks for it
	c.pmuBlk.Write32(pmu.PMU1WakeupTimeout, 0)

	c.log.WithFields(logrus.Fields{
		"blocks":      len(blocks),
		"region_regs": c.arena.Len(),
		"gic_lines":   gic.Lines(blocks[GICD]),
	}).Info("suspend path initialised")

	return c, nil
}

// Block returns a resolved register block by name.
func (c *Context) Block(name string) (mmio.Block, bool) {
	b, ok := c.blocks[name]

	return b, ok
}

// Config returns the sleep configuration of the current or last cycle.
func (c *Context) Config() *config.SleepConfig {
	return c.cfg
}

// Valid implements suspend.Ops.
func (c *Context) Valid(s suspend.State) bool {
	return suspend.ValidOnlyMem(s)
}

func (c *Context) initTimer() {
	if c.Timer.Mode() == hptimer.HardAdjust {
		return
	}

	// deep-slow from the oscillator divided 32k
	c.pmu0cru.Write32(pmu.PMU0CRUClkSelCon(0), mmio.WithWriteMask(0x0, 0x1, 2))
	c.pmu0cru.Write32(pmu.PMU0CRUClkSelCon(0), mmio.WithWriteMask(0x0, 0x3, 0))

	if err := c.Timer.ModeInit(hptimer.HardAdjust, 24000000); err != nil {
		c.log.WithError(err).Warn("hptimer init did not sync")
	}
}
