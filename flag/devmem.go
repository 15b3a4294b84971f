package flag

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bobuhiro11/gorkpm/mmio"
	"github.com/bobuhiro11/gorkpm/pm"
	"github.com/bobuhiro11/gorkpm/probe"
	"github.com/bobuhiro11/gorkpm/region"
)

// DumpCMD hex dumps the live values of the domain register lists.
type DumpCMD struct {
	Dev  string   `short:"D" help:"Physical memory device." default:"/dev/mem"`
	Sets []string `arg:"" optional:"" help:"Register sets to dump (vd_core, vd_log, pd_pmu1, pvtpll_core, pvtpll_logic); all when empty."`
}

// ProbeCMD reports the HPTimer and PMU wake state.
type ProbeCMD struct {
	Dev string `short:"D" help:"Physical memory device." default:"/dev/mem"`
}

func openDevMem(path string) (*mmio.DevMem, error) {
	return mmio.OpenDevMem(path, pm.DevRegBase, pm.DevRegSize)
}

func (d *DumpCMD) Run() error {
	dm, err := openDevMem(d.Dev)
	if err != nil {
		return err
	}
	defer dm.Close()

	return dump(os.Stdout, dm, d.Sets)
}

func (p *ProbeCMD) Run() error {
	dm, err := openDevMem(p.Dev)
	if err != nil {
		return err
	}
	defer dm.Close()

	r, err := probe.Collect(dm)
	if err != nil {
		return err
	}

	r.Fprint(os.Stdout)

	return nil
}

// dump writes the register sets named in names, or every set, read
// through mp.
func dump(w io.Writer, mp mmio.Mapper, names []string) error {
	rm, err := pm.Resources()
	if err != nil {
		return err
	}

	blocks, err := rm.Blocks(mp)
	if err != nil {
		return err
	}

	sets := pm.NewRegionSets(blocks).All()
	if len(names) == 0 {
		for _, s := range sets {
			region.Dump(w, s)
		}

		return nil
	}

	for _, n := range names {
		found := false

		for _, s := range sets {
			if strings.EqualFold(s.Name, n) {
				region.Dump(w, s)

				found = true
			}
		}

		if !found {
			return fmt.Errorf("unknown register set %q", n)
		}
	}

	return nil
}
