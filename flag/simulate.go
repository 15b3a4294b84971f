package flag

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bobuhiro11/gorkpm/config"
	"github.com/bobuhiro11/gorkpm/pm"
	"github.com/bobuhiro11/gorkpm/poll"
	"github.com/bobuhiro11/gorkpm/sim"
	"github.com/bobuhiro11/gorkpm/suspend"
	"github.com/bobuhiro11/gorkpm/trace"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DefaultResumeEntry is the kernel resume entry the simulated SoC boots
// back into.
const DefaultResumeEntry = 0x00180000

// SimulateCMD runs suspend cycles against sim.SoC.
type SimulateCMD struct {
	Config      string   `short:"f" help:"Sleep configuration file (.yaml, .yml or .toml)." type:"existingfile"`
	Mode        []string `short:"m" help:"Mode flags, replacing those of the configuration." sep:","`
	Wake        []string `short:"w" help:"Wakeup sources, replacing those of the configuration." sep:","`
	Cycles      int      `short:"n" help:"Suspend cycles per run." default:"1"`
	AllModes    bool     `help:"Run every power mode concurrently, one simulated SoC each."`
	Trace       string   `short:"o" help:"Record every cycle to this file."`
	Console     bool     `short:"c" help:"Print the debug UART output of every run."`
	StuckPLL    bool     `help:"Never report PLL lock."`
	StuckDDRC   bool     `help:"Never let the DDR controller reach normal mode."`
	FallThrough bool     `help:"Return from the low-power entry without a wake."`
	SystemReset bool     `help:"Reset the system when the CPU falls through."`
	DumpRegions bool     `help:"Dump the domain register lists before WFI and after the core restore."`
}

// powerModes are the mutually exclusive power mode flags.
var powerModes = []config.Mode{
	config.ArmPd, config.ArmOff, config.ArmOffLogOff, config.ArmOffPmuOff,
}

const powerModeMask = config.ArmPd | config.ArmOff | config.ArmOffDDRPd | config.ArmOffLogOff | config.ArmOffPmuOff

func (s *SimulateCMD) Run() error {
	w := io.Writer(os.Stdout)

	if s.Trace == "" {
		return s.run(w, nil, logrus.StandardLogger())
	}

	f, err := os.Create(s.Trace)
	if err != nil {
		return err
	}

	if err := s.run(w, f, logrus.StandardLogger()); err != nil {
		f.Close()

		return err
	}

	return f.Close()
}

// sleepConfigs returns the configuration of every run.
func (s *SimulateCMD) sleepConfigs() ([]*config.SleepConfig, error) {
	cfg := config.Default()

	if s.Config != "" {
		c, err := config.Load(s.Config)
		if err != nil {
			return nil, err
		}

		cfg = c
	}

	if len(s.Mode) > 0 {
		m, err := config.ParseMode(s.Mode...)
		if err != nil {
			return nil, err
		}

		cfg.Mode = m
	}

	if len(s.Wake) > 0 {
		wk, err := config.ParseWake(s.Wake...)
		if err != nil {
			return nil, err
		}

		cfg.Wake = wk
	}

	if !s.AllModes {
		return []*config.SleepConfig{cfg}, nil
	}

	cfgs := make([]*config.SleepConfig, len(powerModes))
	for i, m := range powerModes {
		cfgs[i] = cfg.Clone()
		cfgs[i].Mode = cfg.Mode&^powerModeMask | m
	}

	return cfgs, nil
}

type runResult struct {
	cycles  []*trace.Cycle
	console string
	regions string
}

func (s *SimulateCMD) simulate(i int, cfg *config.SleepConfig, rec *trace.Recorder, log logrus.FieldLogger) (*runResult, error) {
	log = log.WithField("run", i)

	soc, err := sim.New(log)
	if err != nil {
		return nil, err
	}

	soc.PLLStuck = s.StuckPLL
	soc.DDRCStuck = s.StuckDDRC
	soc.CPU.FallThrough = s.FallThrough

	var dump *bytes.Buffer

	opts := pm.Options{
		Mapper:              soc.Mapper,
		CPU:                 soc.CPU,
		Delay:               poll.None,
		Log:                 log,
		Provider:            config.Static{Config: cfg},
		ResumeEntry:         DefaultResumeEntry,
		WakeupToSystemReset: s.SystemReset,
	}

	if s.DumpRegions {
		dump = &bytes.Buffer{}
		opts.DumpRegions = dump
	}

	ctx, err := pm.New(opts)
	if err != nil {
		return nil, err
	}

	d := suspend.NewDispatcher(log)
	d.SetOps(ctx)

	r := &runResult{}

	for seq := 0; seq < s.Cycles; seq++ {
		err := d.Suspend(suspend.Mem)

		c := trace.FromContext(i, seq, ctx, err)
		r.cycles = append(r.cycles, c)

		if rec != nil {
			if err := rec.Record(c); err != nil {
				return nil, err
			}
		}

		if errors.Is(err, pm.ErrEmergencyReset) {
			break
		}
	}

	r.console = soc.Console.String()

	if dump != nil {
		r.regions = dump.String()
	}

	return r, nil
}

func (s *SimulateCMD) run(w io.Writer, tw io.Writer, log logrus.FieldLogger) error {
	cfgs, err := s.sleepConfigs()
	if err != nil {
		return err
	}

	var rec *trace.Recorder

	if tw != nil {
		rec = trace.NewRecorder(tw)
		if err := rec.Begin(&trace.Header{Source: "sim", Runs: len(cfgs)}); err != nil {
			return err
		}
	}

	runs := make([]*runResult, len(cfgs))

	var g errgroup.Group

	for i, cfg := range cfgs {
		g.Go(func() error {
			r, err := s.simulate(i, cfg, rec, log)
			if err != nil {
				return fmt.Errorf("run %d (%v): %w", i, cfg.Mode, err)
			}

			runs[i] = r

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	for _, r := range runs {
		for _, c := range r.cycles {
			trace.Fprint(w, c)
		}

		if s.Console {
			fmt.Fprintf(w, "%s\n", r.console)
		}

		if s.DumpRegions {
			fmt.Fprint(w, r.regions)
		}
	}

	if rec != nil {
		return rec.End()
	}

	return nil
}
