// Package probe reports the live HPTimer and PMU wake state without
// touching any of it.
package probe

import (
	"fmt"
	"io"

	"github.com/bobuhiro11/gorkpm/config"
	"github.com/bobuhiro11/gorkpm/hptimer"
	"github.com/bobuhiro11/gorkpm/mmio"
	"github.com/bobuhiro11/gorkpm/pm"
	"github.com/bobuhiro11/gorkpm/pmu"
)

// wakeSources is the number of defined wakeup bits.
const wakeSources = pmu.WakeupTimeout + 1

// HPTimer is the observable state of the timer.
type HPTimer struct {
	Enabled   bool
	Mode      hptimer.Mode
	Count     uint64
	IntEn     uint32
	IntStatus uint32
}

// PMU is the programmed wake configuration and the last latched status.
type PMU struct {
	PwrCon0    uint32
	PwrCon1    uint32
	WakeEnable config.Wake
	WakeStatus config.Wake
	Timeout    uint32
}

// Report is one probe result.
type Report struct {
	HPTimer HPTimer
	PMU     PMU
}

// Collect maps the HPTimer and PMU blocks through mp and reads them.
func Collect(mp mmio.Mapper) (*Report, error) {
	rm, err := pm.Resources()
	if err != nil {
		return nil, err
	}

	block := func(name string) (mmio.Block, error) {
		r, err := rm.Lookup(name)
		if err != nil {
			return nil, err
		}

		return mp.Map(r)
	}

	hpt, err := block(pm.HPTimer)
	if err != nil {
		return nil, fmt.Errorf("map hptimer: %w", err)
	}

	p, err := block(pm.PMU)
	if err != nil {
		return nil, fmt.Errorf("map pmu: %w", err)
	}

	t := hptimer.New(hpt, nil, nil, nil)

	return &Report{
		HPTimer: HPTimer{
			Enabled:   t.IsEnabled(),
			Mode:      t.Mode(),
			Count:     t.Count(),
			IntEn:     hpt.Read32(hptimer.RegIntEn),
			IntStatus: hpt.Read32(hptimer.RegIntrStatus),
		},
		PMU: PMU{
			PwrCon0:    p.Read32(pmu.PMU0PwrCon),
			PwrCon1:    p.Read32(pmu.PMU1PwrCon),
			WakeEnable: config.Wake(p.Read32(pmu.PMU1WakeupIntCon)),
			WakeStatus: config.Wake(p.Read32(pmu.PMU1WakeupIntSt)),
			Timeout:    p.Read32(pmu.PMU1WakeupTimeout),
		},
	}, nil
}

// Fprint writes the report.
func (r *Report) Fprint(w io.Writer) {
	t := r.HPTimer

	fmt.Fprintf(w, "HPTimer.\n")
	fmt.Fprintf(w, "* Enabled: %v\n", t.Enabled)
	fmt.Fprintf(w, "* Mode: %v\n", t.Mode)
	fmt.Fprintf(w, "* Count: %d\n", t.Count)
	fmt.Fprintf(w, "* IntEn: %#x IntStatus: %#x\n\n", t.IntEn, t.IntStatus)

	p := r.PMU

	fmt.Fprintf(w, "PMU.\n")
	fmt.Fprintf(w, "* PwrCon0: %#x PwrCon1: %#x\n", p.PwrCon0, p.PwrCon1)
	fmt.Fprintf(w, "* Timeout: %d\n", p.Timeout)
	printWake(w, "Wakeup", p.WakeEnable)
	printWake(w, "Status", p.WakeStatus)
	fmt.Fprintf(w, "\n")
}

func printWake(w io.Writer, title string, v config.Wake) {
	var set, unset []config.Wake

	for i := uint32(0); i < wakeSources; i++ {
		f := config.Wake(1) << i
		if v.Has(f) {
			set = append(set, f)
		} else {
			unset = append(unset, f)
		}
	}

	fmt.Fprintf(w, "%s.\n", title)
	fmt.Fprintf(w, "* Set:")

	for _, f := range set {
		fmt.Fprintf(w, " %s", f)
	}

	fmt.Fprintf(w, "\n* Clear:")

	for _, f := range unset {
		fmt.Fprintf(w, " %s", f)
	}

	fmt.Fprintf(w, "\n")
}
