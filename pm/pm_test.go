package pm_test

import (
	"math/rand"
	"slices"
	"strings"
	"testing"

	"github.com/bobuhiro11/gorkpm/clock"
	"github.com/bobuhiro11/gorkpm/config"
	"github.com/bobuhiro11/gorkpm/gpio"
	"github.com/bobuhiro11/gorkpm/hptimer"
	"github.com/bobuhiro11/gorkpm/mmio"
	"github.com/bobuhiro11/gorkpm/pm"
	"github.com/bobuhiro11/gorkpm/pmu"
	"github.com/bobuhiro11/gorkpm/poll"
	"github.com/bobuhiro11/gorkpm/region"
	"github.com/bobuhiro11/gorkpm/serial"
	"github.com/bobuhiro11/gorkpm/sim"
	"github.com/bobuhiro11/gorkpm/suspend"
	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/arch/arm/armasm"
)

const resumeEntry = 0x00180000

type fixture struct {
	soc  *sim.SoC
	ctx  *pm.Context
	cfg  *config.SleepConfig
	hook *test.Hook
}

func newFixture(t *testing.T, cfg *config.SleepConfig, opts ...func(*pm.Options)) *fixture {
	t.Helper()

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	soc, err := sim.New(logger)
	require.NoError(t, err)

	o := pm.Options{
		Mapper:      soc.Mapper,
		CPU:         soc.CPU,
		Delay:       poll.None,
		Log:         logger,
		Provider:    config.Static{Config: cfg},
		ResumeEntry: resumeEntry,
		L2Ctlr:      0x1,
	}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, err := pm.New(o)
	require.NoError(t, err)

	soc.Console.Reset()
	hook.Reset()

	return &fixture{soc: soc, ctx: ctx, cfg: cfg, hook: hook}
}

func sleepConfig(mode config.Mode) *config.SleepConfig {
	return &config.SleepConfig{
		Mode: mode | config.Ext32k | config.PmuAlive32k,
		Wake: config.WakeGPIO0,
	}
}

var modes = []struct {
	name string
	mode config.Mode
	lost []string
}{
	{"arm power down", config.ArmPd, []string{"vd_core", "pvtpll_core"}},
	{"arm off", config.ArmOff, []string{"vd_core", "pvtpll_core"}},
	{"logic off", config.ArmOffLogOff, []string{"vd_core", "pvtpll_core", "vd_log", "pvtpll_logic"}},
	{"pmu off", config.ArmOffPmuOff, []string{"vd_core", "pvtpll_core", "vd_log", "pvtpll_logic", "pd_pmu1"}},
}

func split(t *testing.T, phases []pm.Phase) (down, up []pm.Phase) {
	t.Helper()

	for i, p := range phases {
		if p == pm.CPURetired {
			return phases[:i], phases[i+1:]
		}
	}

	t.Fatalf("no %v in %v", pm.CPURetired, phases)

	return nil, nil
}

// ---- phase sequence ----

func TestEnterRejectsOtherStates(t *testing.T) {
	t.Parallel()

	f := newFixture(t, sleepConfig(config.ArmOff))

	for _, s := range []suspend.State{suspend.ToIdle, suspend.Standby, suspend.Disk} {
		require.ErrorIs(t, f.ctx.Enter(s), pm.ErrStateNotSupported)
	}

	assert.Empty(t, f.ctx.Phases)
	assert.Zero(t, f.soc.CPU.Retired)
}

func TestPhaseSymmetry(t *testing.T) {
	t.Parallel()

	for _, m := range modes {
		t.Run(m.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, sleepConfig(m.mode))

			var seen []pm.Phase
			f.ctx.OnPhase = func(p pm.Phase) { seen = append(seen, p) }

			require.NoError(t, f.ctx.Enter(suspend.Mem))
			assert.Equal(t, f.ctx.Phases, seen)
			assert.Empty(t, f.ctx.Timeouts)

			down, up := split(t, f.ctx.Phases)
			require.Len(t, up, len(down))

			for i, p := range down {
				assert.Equal(t, p.Inverse(), up[len(up)-1-i], "phase %v", p)
			}

			assert.Equal(t, pm.ClocksGated, down[0])
			assert.Equal(t, pm.ClocksUngated, up[len(up)-1])
			assert.ElementsMatch(t, m.lost, f.soc.CPU.Lost)
		})
	}
}

func TestPhasesPerMode(t *testing.T) {
	t.Parallel()

	base := []pm.Phase{pm.ClocksGated, pm.PMUProgrammed, pm.IOConfigured, pm.CoreDomainSaved}
	tail := []pm.Phase{pm.CoreDomainRestored, pm.IORestored, pm.PMUCleared, pm.ClocksUngated}

	join := func(parts ...[]pm.Phase) []pm.Phase {
		var out []pm.Phase
		for _, p := range parts {
			out = append(out, p...)
		}

		return out
	}

	tests := []struct {
		mode config.Mode
		want []pm.Phase
	}{
		{config.ArmPd, join(base, []pm.Phase{pm.CPURetired}, tail)},
		{config.ArmOff, join(base, []pm.Phase{pm.CPURetired}, tail)},
		{config.ArmOffLogOff, join(base,
			[]pm.Phase{pm.LogicDomainSaved, pm.CPURetired, pm.LogicDomainRestored}, tail)},
		{config.ArmOffPmuOff, join(base,
			[]pm.Phase{
				pm.LogicDomainSaved, pm.PMUSubdomainSaved, pm.CPURetired,
				pm.PMUSubdomainRestored, pm.LogicDomainRestored,
			}, tail)},
	}

	for _, tt := range tests {
		f := newFixture(t, sleepConfig(tt.mode))

		require.NoError(t, f.ctx.Enter(suspend.Mem))

		if diff := cmp.Diff(tt.want, f.ctx.Phases); diff != "" {
			t.Errorf("%v phases (-want +got):\n%s", tt.mode, diff)
		}
	}
}

func TestCheckpointStream(t *testing.T) {
	t.Parallel()

	tests := []struct {
		mode config.Mode
		want string
	}{
		{config.ArmPd, "-0abcd12abcd3456" + "54abcdef32dcba10-"},
		{config.ArmOff, "-0abcd12abcd3456" + "54abcdef32dcba10-"},
		{config.ArmOffLogOff, "-0abcd12abcd3abcd456" + "5abcdef4abcdef32dcba10-"},
		{config.ArmOffPmuOff, "-0abcd12abcd3abcd4ab56" + "ab5abcdef4abcdef32dcba10-"},
	}

	for _, tt := range tests {
		f := newFixture(t, sleepConfig(tt.mode))

		require.NoError(t, f.ctx.Enter(suspend.Mem))
		assert.Equal(t, tt.want, string(f.ctx.Checkpoints), "%v", tt.mode)

		// everything but the WFI marker and the closing line goes out on
		// the port as emitted
		wfi := strings.IndexByte(tt.want, '6')
		want := tt.want[:wfi] + "-WFI-" + tt.want[wfi:] + "exit sleep\r\n"
		assert.Equal(t, want, f.soc.Console.String())
	}
}

func TestEachCycleStartsClean(t *testing.T) {
	t.Parallel()

	f := newFixture(t, sleepConfig(config.ArmOff))

	require.NoError(t, f.ctx.Enter(suspend.Mem))
	first := append([]pm.Phase(nil), f.ctx.Phases...)

	require.NoError(t, f.ctx.Enter(suspend.Mem))
	assert.Equal(t, first, f.ctx.Phases)
	assert.Equal(t, 2, f.soc.CPU.Retired)
}

// ---- register state ----

func TestRegionsSurvivePowerLoss(t *testing.T) {
	t.Parallel()

	for i, m := range modes {
		seed := int64(i + 1)

		t.Run(m.name, func(t *testing.T) {
			t.Parallel()

			cfg := sleepConfig(m.mode)
			cfg.Mode |= config.PmuDbg
			f := newFixture(t, cfg)

			f.soc.Seed(rand.New(rand.NewSource(seed)))

			regs := f.soc.Covered()
			want := f.soc.Values(regs)

			require.NoError(t, f.ctx.Enter(suspend.Mem))
			require.NotEmpty(t, f.soc.CPU.Lost)

			if diff := cmp.Diff(want, f.soc.Values(regs)); diff != "" {
				t.Errorf("registers differ after resume (-want +got):\n%s", diff)
			}
		})
	}
}

func TestClockGatesRestored(t *testing.T) {
	t.Parallel()

	f := newFixture(t, sleepConfig(config.ArmOffPmuOff))

	cru := f.soc.Block(pm.CRU)
	for i := uint32(0); i < pm.CRUGateCount; i++ {
		cru.Poke(clock.GateCon(i), 0x1234+i)
	}

	require.NoError(t, f.ctx.Enter(suspend.Mem))

	for i := uint32(0); i < pm.CRUGateCount; i++ {
		assert.Equal(t, 0x1234+i, cru.Peek(clock.GateCon(i)))
	}
}

// writeWindows runs one cycle and groups its register writes by the phase
// whose completion follows them. Debug port output is left out.
func writeWindows(t *testing.T, f *fixture) map[pm.Phase][]sim.Reg {
	t.Helper()

	win := make(map[pm.Phase][]sim.Reg)
	start := len(f.soc.Log.Writes)

	f.ctx.OnPhase = func(p pm.Phase) {
		for _, w := range f.soc.Log.Writes[start:] {
			if w.Block != pm.UART0 {
				win[p] = append(win[p], sim.Reg{Block: w.Block, Off: w.Off})
			}
		}

		start = len(f.soc.Log.Writes)
	}

	require.NoError(t, f.ctx.Enter(suspend.Mem))

	return win
}

// firstWrites returns the registers of want in the order writes first
// touches them.
func firstWrites(writes, want []sim.Reg) []sim.Reg {
	in := make(map[sim.Reg]bool, len(want))
	for _, r := range want {
		in[r] = true
	}

	var out []sim.Reg

	for _, r := range writes {
		if in[r] {
			out = append(out, r)
			delete(in, r)
		}
	}

	return out
}

func setRegs(sets ...*region.Set) []sim.Reg {
	var regs []sim.Reg

	seen := make(map[sim.Reg]bool)

	for _, s := range sets {
		for _, r := range s.Regions {
			for off := r.Start; off <= r.End; off += r.Stride {
				reg := sim.Reg{Block: r.Block.Name(), Off: off}
				if !seen[reg] {
					seen[reg] = true
					regs = append(regs, reg)
				}
			}
		}
	}

	return regs
}

func TestResumeWritesFollowCapture(t *testing.T) {
	t.Parallel()

	for _, m := range modes {
		t.Run(m.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, sleepConfig(m.mode))
			win := writeWindows(t, f)
			sets := f.ctx.Sets

			restores := []struct {
				phase pm.Phase
				lost  string
				sets  []*region.Set
			}{
				{pm.PMUSubdomainRestored, "pd_pmu1", []*region.Set{sets.PMU1}},
				{pm.LogicDomainRestored, "vd_log", []*region.Set{sets.PVTPLLLogic, sets.Logic}},
				{pm.CoreDomainRestored, "vd_core", []*region.Set{sets.PVTPLLCore, sets.Core}},
			}

			for _, r := range restores {
				if !slices.Contains(m.lost, r.lost) {
					assert.NotContains(t, f.ctx.Phases, r.phase)
					assert.Empty(t, win[r.phase], "%v", r.phase)

					continue
				}

				want := setRegs(r.sets...)
				if diff := cmp.Diff(want, firstWrites(win[r.phase], want)); diff != "" {
					t.Errorf("%v writes (-want +got):\n%s", r.phase, diff)
				}
			}

			// gate banks come back in the order they were forced
			var gates []sim.Reg

			for _, r := range win[pm.ClocksUngated] {
				if r.Block != pm.HPTimer {
					gates = append(gates, r)
				}
			}

			require.NotEmpty(t, win[pm.ClocksGated])

			if diff := cmp.Diff(win[pm.ClocksGated], gates); diff != "" {
				t.Errorf("gate writes (-suspend +resume):\n%s", diff)
			}

			// no pins configured, so GPIO0 is only read before sleep
			assert.Empty(t, win[pm.IOConfigured])
			assert.Equal(t, []sim.Reg{
				{Block: pm.GPIO0, Off: gpio.RegSwportDDRL},
				{Block: pm.GPIO0, Off: gpio.RegSwportDDRH},
				{Block: pm.GPIO0, Off: gpio.RegSwportDRL},
				{Block: pm.GPIO0, Off: gpio.RegSwportDRH},
				{Block: pm.IOC0, Off: 0x0},
				{Block: pm.IOC0, Off: 0x4},
				{Block: pm.IOC1, Off: 0x8},
				{Block: pm.IOC1, Off: 0xc},
				{Block: pm.IOC0, Off: gpio.RegIOCPullLow},
				{Block: pm.IOC1, Off: gpio.RegIOCPullHigh},
			}, win[pm.IORestored])
		})
	}
}

func TestUARTContextSurvivesLogicOff(t *testing.T) {
	t.Parallel()

	f := newFixture(t, sleepConfig(config.ArmOffLogOff))

	uart := f.soc.Block(pm.UART0)

	// 8N1, divisor 0x0d
	uart.Write32(serial.RegLCR, 0x83)
	uart.Write32(serial.RegTHR, 0x0d)
	uart.Write32(serial.RegLCR, 0x03)

	require.NoError(t, f.ctx.Enter(suspend.Mem))
	assert.Contains(t, f.soc.CPU.Lost, "vd_log")

	assert.Equal(t, uint32(0x03), uart.Peek(serial.RegLCR))

	uart.Write32(serial.RegLCR, 0x83)
	assert.Equal(t, uint32(0x0d), uart.Read32(serial.RegTHR))
}

func TestPMUStateCleared(t *testing.T) {
	t.Parallel()

	f := newFixture(t, sleepConfig(config.ArmOffLogOff))

	require.NoError(t, f.ctx.Enter(suspend.Mem))

	p := f.soc.Block(pm.PMU)
	assert.Zero(t, p.Peek(pmu.PMU1PwrCon))
	assert.Zero(t, p.Peek(pmu.PMU0PwrCon))
	assert.Equal(t, uint32(1<<pmu.WakeupGPIO), f.ctx.PMU.WakeStatus)
	assert.True(t, f.ctx.PMU.Workaround.EnteredPMUFSM)
}

func TestRunningWatchdogKicked(t *testing.T) {
	t.Parallel()

	f := newFixture(t, sleepConfig(config.ArmOffLogOff))

	ns := f.soc.Block(pm.WDTNS)
	ns.Poke(pm.WDTCR, pm.WDTCREn)

	require.NoError(t, f.ctx.Enter(suspend.Mem))

	assert.Equal(t, uint32(pm.WDTCREn), ns.Peek(pm.WDTCR))
	assert.Equal(t, uint32(pm.WDTKickVal), ns.Peek(pm.WDTCRR))
	assert.Zero(t, f.soc.Block(pm.WDTS).Peek(pm.WDTCRR))
}

// ---- hptimer and 32k ----

func TestHPTimerAcrossSleep(t *testing.T) {
	t.Parallel()

	var (
		latchOn  = mmio.WithWriteMask(0x1, 0x1, 8)
		latchOff = mmio.WithWriteMask(0x0, 0x1, 8)
		swSync   = mmio.WithWriteMask(1, 0x1, hptimer.ReqSWSync)
		hwSync   = mmio.WithWriteMask(1, 0x1, hptimer.ReqHWSync)
	)

	tests := []struct {
		name       string
		mode       config.Mode
		timer      hptimer.Mode
		latchStuck bool
		noSync     bool
		latch      []uint32
		syncs      []uint32
		timeouts   int
		oscStable  uint32
	}{
		{
			name:      "soft adjust on 32k",
			mode:      config.ArmOffLogOff | config.Ext32k | config.PmuAlive32k,
			timer:     hptimer.SoftAdjust,
			latch:     []uint32{latchOn, latchOff},
			syncs:     []uint32{swSync},
			oscStable: 32 * 4,
		},
		{
			name:       "soft adjust latch never valid",
			mode:       config.ArmOffLogOff | config.Ext32k | config.PmuAlive32k,
			timer:      hptimer.SoftAdjust,
			latchStuck: true,
			latch:      []uint32{latchOn, latchOff},
			timeouts:   2,
			oscStable:  32 * 4,
		},
		{
			name:      "soft adjust without 32k",
			mode:      config.ArmOffLogOff | config.Ext32k,
			timer:     hptimer.SoftAdjust,
			noSync:    true,
			latch:     []uint32{latchOff},
			oscStable: 24000 * 4,
		},
		{
			name:      "hard adjust on 32k",
			mode:      config.ArmOff | config.Ext32k | config.PmuAlive32k,
			timer:     hptimer.HardAdjust,
			latch:     []uint32{latchOff},
			syncs:     []uint32{hwSync},
			oscStable: 32 * 4,
		},
		{
			name:      "hard adjust without 32k",
			mode:      config.ArmOff | config.Ext32k,
			timer:     hptimer.HardAdjust,
			noSync:    true,
			latch:     []uint32{latchOff},
			oscStable: 24000 * 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, &config.SleepConfig{Mode: tt.mode, Wake: config.WakeGPIO0})

			if tt.timer == hptimer.SoftAdjust {
				require.NoError(t, f.ctx.Timer.ModeInit(hptimer.SoftAdjust, 24000000))
				require.NoError(t, f.ctx.Timer.WaitSync())
			}

			require.Equal(t, tt.timer, f.ctx.Timer.Mode())

			f.soc.LatchStuck = tt.latchStuck
			f.soc.NoSync = tt.noSync
			f.soc.Syncs = nil
			f.soc.Log.Reset()

			require.NoError(t, f.ctx.Enter(suspend.Mem))

			var latch []uint32

			for _, w := range f.soc.Log.Writes {
				if w.Block == pm.PMUSGRF && w.Off == pmu.PMUSGRFSocCon(0) {
					latch = append(latch, w.Val)
				}
			}

			assert.Equal(t, tt.latch, latch)
			assert.Equal(t, tt.syncs, f.soc.Syncs)
			require.Len(t, f.ctx.Timeouts, tt.timeouts)

			for _, err := range f.ctx.Timeouts {
				assert.ErrorIs(t, err, poll.ErrTimeout)
			}

			assert.Equal(t, pm.ClocksUngated, f.ctx.Phases[len(f.ctx.Phases)-1])
			assert.Equal(t, tt.oscStable, f.soc.Block(pm.PMU).Peek(pmu.PMU1OscStableCnt))
			assert.Equal(t, tt.timer, f.ctx.Timer.Mode())
		})
	}
}

func TestDivided32kWithoutRTC(t *testing.T) {
	t.Parallel()

	f := newFixture(t, &config.SleepConfig{Mode: config.ArmOff | config.PmuAlive32k, Wake: config.WakeGPIO0})

	require.NoError(t, f.ctx.Enter(suspend.Mem))

	assert.Equal(t, uint32(0x0010ee6b), f.soc.Block(pm.PMU0CRU).Peek(pmu.PMU0CRUClkSelCon(1)))
	// the oscillator-derived source is selected again on wake
	assert.Zero(t, f.soc.Block(pm.PMU0CRU).Peek(pmu.PMU0CRUClkSelCon(0))&0x7)
	assert.Empty(t, f.ctx.Timeouts)
}

func TestTimeoutWorkaroundFollowsEachCycle(t *testing.T) {
	t.Parallel()

	f := newFixture(t, sleepConfig(config.ArmOff|config.TimeoutWkup))
	hpt := f.soc.Block(pm.HPTimer)
	p := f.soc.Block(pm.PMU)

	var (
		armed bool
		wkup  uint32
	)

	f.ctx.OnPhase = func(ph pm.Phase) {
		if ph == pm.PMUProgrammed {
			armed = hpt.Peek(hptimer.RegIntEn)&(1<<hptimer.Int32KReach) != 0
			wkup = p.Peek(pmu.PMU1WakeupIntCon)
		}
	}

	cycles := []struct {
		skipFSM bool
		armed   bool
		entered bool
	}{
		{skipFSM: false, armed: true, entered: true},
		{skipFSM: true, armed: false, entered: false},
		{skipFSM: false, armed: true, entered: true},
	}

	for i, c := range cycles {
		f.soc.CPU.SkipFSM = c.skipFSM

		require.NoError(t, f.ctx.Enter(suspend.Mem))

		assert.Equal(t, c.armed, armed, "cycle %d", i)
		assert.Equal(t, c.armed, wkup&(1<<pmu.WakeupHPTimer) != 0, "cycle %d", i)
		assert.Equal(t, !c.armed, wkup&(1<<pmu.WakeupTimeout) != 0, "cycle %d", i)
		assert.Equal(t, c.entered, f.ctx.PMU.Workaround.EnteredPMUFSM, "cycle %d", i)
		assert.Zero(t, hpt.Peek(hptimer.RegIntEn)&(1<<hptimer.Int32KReach), "cycle %d", i)
	}
}

// ---- debug dump ----

type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }

func TestRegionDumpAroundWFI(t *testing.T) {
	t.Parallel()

	var (
		soc     *sim.SoC
		retired []int
		out     strings.Builder
	)

	f := newFixture(t, sleepConfig(config.ArmOffPmuOff), func(o *pm.Options) {
		o.DumpRegions = writerFunc(func(p []byte) (int, error) {
			if string(p) == "vd_core:\n" {
				retired = append(retired, soc.CPU.Retired)
			}

			return out.Write(p)
		})
	})
	soc = f.soc

	require.NoError(t, f.ctx.Enter(suspend.Mem))

	// once right before the CPU retires, once after the core domain is back
	assert.Equal(t, []int{0, 1}, retired)

	for _, s := range f.ctx.Sets.All() {
		assert.Equal(t, 2, strings.Count(out.String(), s.Name+":\n"), s.Name)
	}

	assert.NotContains(t, f.soc.Console.String(), "vd_core:")
}

// ---- failure paths ----

func TestPLLLockTimeoutIsNonFatal(t *testing.T) {
	t.Parallel()

	f := newFixture(t, sleepConfig(config.ArmOffLogOff))
	f.soc.PLLStuck = true

	require.NoError(t, f.ctx.Enter(suspend.Mem))

	require.Len(t, f.ctx.Timeouts, 1)
	assert.ErrorIs(t, f.ctx.Timeouts[0], poll.ErrTimeout)
	assert.Equal(t, pm.ClocksUngated, f.ctx.Phases[len(f.ctx.Phases)-1])
	assert.Contains(t, f.soc.Console.String(), "Can't wait pll lock: 00000002\r\n")

	var warned bool
	for _, e := range f.hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data["reg"] == "cru_pll_con1" {
			warned = true
		}
	}

	assert.True(t, warned)
}

func TestDDRCTimeoutIsNonFatal(t *testing.T) {
	t.Parallel()

	f := newFixture(t, sleepConfig(config.ArmOff))
	f.soc.DDRCStuck = true

	require.NoError(t, f.ctx.Enter(suspend.Mem))

	require.Len(t, f.ctx.Timeouts, 1)
	assert.ErrorIs(t, f.ctx.Timeouts[0], poll.ErrTimeout)
	assert.Equal(t, pm.ClocksUngated, f.ctx.Phases[len(f.ctx.Phases)-1])
}

func TestFallThroughRunsResume(t *testing.T) {
	t.Parallel()

	f := newFixture(t, sleepConfig(config.ArmOffLogOff))
	f.soc.CPU.FallThrough = true

	err := f.ctx.Enter(suspend.Mem)
	require.ErrorIs(t, err, pm.ErrCPUSuspendFailed)

	assert.False(t, f.soc.CPU.Halted)
	assert.Equal(t, pm.ClocksUngated, f.ctx.Phases[len(f.ctx.Phases)-1])
	assert.Contains(t, f.soc.Console.String(), "-WFI-Failed to suspend\r\n")
	assert.Contains(t, f.soc.Console.String(), "exit sleep")
}

func TestFallThroughEmergencyReset(t *testing.T) {
	t.Parallel()

	f := newFixture(t, sleepConfig(config.ArmOffLogOff), func(o *pm.Options) {
		o.WakeupToSystemReset = true
	})
	f.soc.CPU.FallThrough = true

	err := f.ctx.Enter(suspend.Mem)
	require.ErrorIs(t, err, pm.ErrEmergencyReset)

	assert.True(t, f.soc.CPU.Halted)
	assert.NotContains(t, f.ctx.Phases, pm.CPURetired)
	assert.NotContains(t, f.soc.Console.String(), "exit sleep")

	cru := f.soc.Block(pm.CRU)
	assert.Equal(t, uint32(pm.CRUGlbRstValue), cru.Peek(pm.CRUGlbRstCon))
	assert.Equal(t, uint32(pm.CRUGlbSrstFstV), cru.Peek(pm.CRUGlbSrstFst))

	grf := f.soc.Block(pm.PMUGRF)
	for n := uint32(4); n <= 6; n++ {
		assert.Zero(t, grf.Peek(pmu.PMUGRFSocCon(n)), "soc_con%d", n)
	}

	// The wake must not reenter the kernel resume path.
	assert.Zero(t, f.soc.Block(pm.PMUGRF).Peek(pmu.PMUGRFOsReg(pmu.OsRegResumeEntry)))
}

// ---- configuration ----

func TestConfigIsCopiedPerCycle(t *testing.T) {
	t.Parallel()

	cfg := sleepConfig(config.ArmOff)
	cfg.IOPins = []config.IOPin{{ID: 3, Output: true, Level: 1}}
	f := newFixture(t, cfg)

	require.NoError(t, f.ctx.Enter(suspend.Mem))

	cfg.Mode = config.ArmOffPmuOff
	cfg.IOPins[0].Level = 0

	got := f.ctx.Config()
	assert.NotSame(t, cfg, got)
	assert.True(t, got.Mode.Has(config.ArmOff))
	assert.False(t, got.Mode.Has(config.ArmOffPmuOff))
	assert.Equal(t, uint32(1), got.IOPins[0].Level)

	require.NoError(t, f.ctx.Enter(suspend.Mem))
	assert.True(t, f.ctx.Config().Mode.Has(config.ArmOffPmuOff))
}

func TestDebugOutput(t *testing.T) {
	t.Parallel()

	cfg := sleepConfig(config.ArmOff)
	cfg.Debug = true
	f := newFixture(t, cfg)
	f.soc.GPIO0Wake = 0x8

	require.NoError(t, f.ctx.Enter(suspend.Mem))

	out := f.soc.Console.String()
	assert.Contains(t, out, "armoff\r\n")
	assert.Contains(t, out, "GPIO0: ")
	assert.Contains(t, out, "wake up status:00000001\r\n")
	assert.Contains(t, out, "GPIO0 wakeup:00000008\r\n")
}

// ---- boot data ----

func TestTrampoline(t *testing.T) {
	t.Parallel()

	f := newFixture(t, sleepConfig(config.ArmOff))

	assert.Equal(t, pm.BootData{ResumeEntry: resumeEntry, L2Ctlr: 0x1}, f.ctx.ReadBootData())

	insns := pm.Disassemble(f.ctx.Trampoline(), pm.PMUSRAMBase)
	require.Len(t, insns, 2)

	assert.Equal(t, armasm.LDR, insns[0].Op)
	assert.Contains(t, insns[0].Text, "ldr")
	assert.Equal(t, uint32(pm.PMUSRAMBase), insns[0].Addr)
	assert.Equal(t, uint32(resumeEntry), insns[1].Word)

	sram := f.soc.Block(pm.PMUSRAM)
	assert.Equal(t, uint32(pm.CPUSP), sram.Peek(pm.SRAMCPUSP))
}
