package flag

import (
	"fmt"
	"io"
	"os"

	"github.com/bobuhiro11/gorkpm/config"
	"github.com/bobuhiro11/gorkpm/pm"
	"github.com/bobuhiro11/gorkpm/poll"
	"github.com/bobuhiro11/gorkpm/sim"
	"github.com/bobuhiro11/gorkpm/trace"
	"github.com/sirupsen/logrus"
)

// InspectCMD prints a recording made by simulate --trace.
type InspectCMD struct {
	File string `arg:"" help:"Recorded trace." type:"existingfile"`
}

// DisasmCMD decodes ARM code. Without a file it decodes the resume
// trampoline as written into PMU SRAM.
type DisasmCMD struct {
	File        string `arg:"" optional:"" help:"Raw little-endian ARM image." type:"existingfile"`
	Addr        uint32 `help:"Load address of the image." default:"${pmusram}"`
	ResumeEntry uint32 `help:"Resume entry placed behind the trampoline." default:"${resume}"`
}

func (i *InspectCMD) Run() error {
	f, err := os.Open(i.File)
	if err != nil {
		return err
	}
	defer f.Close()

	return inspect(os.Stdout, f)
}

func inspect(w io.Writer, r io.Reader) error {
	h, cycles, err := trace.ReadAll(r)
	if h != nil {
		fmt.Fprintf(w, "source %s, %d runs, %d cycles\n", h.Source, h.Runs, len(cycles))
	}

	for _, c := range cycles {
		trace.Fprint(w, c)
	}

	return err
}

func (d *DisasmCMD) Run() error {
	return d.disasm(os.Stdout)
}

func (d *DisasmCMD) disasm(w io.Writer) error {
	var code []byte

	if d.File != "" {
		b, err := os.ReadFile(d.File)
		if err != nil {
			return err
		}

		code = b
	} else {
		b, err := trampoline(d.ResumeEntry)
		if err != nil {
			return err
		}

		code = b
	}

	for _, in := range pm.Disassemble(code, d.Addr) {
		fmt.Fprintln(w, in)
	}

	return nil
}

// trampoline builds the PMU SRAM contents on a simulated SoC and returns
// the trampoline bytes.
func trampoline(entry uint32) ([]byte, error) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	soc, err := sim.New(log)
	if err != nil {
		return nil, err
	}

	ctx, err := pm.New(pm.Options{
		Mapper:      soc.Mapper,
		CPU:         soc.CPU,
		Delay:       poll.None,
		Log:         log,
		Provider:    config.Static{Config: config.Default()},
		ResumeEntry: entry,
	})
	if err != nil {
		return nil, err
	}

	return ctx.Trampoline(), nil
}
