package flag

import (
	"os"
	"strconv"

	"github.com/alecthomas/kong"
	"github.com/bobuhiro11/gorkpm/pm"
	"github.com/sirupsen/logrus"
)

// CLI is the command line of gorkpm.
type CLI struct {
	LogLevel string `help:"Log level (${enum})." enum:"debug,info,warn,error" default:"warn"`

	Simulate SimulateCMD `cmd:"" help:"Run suspend cycles on the simulated SoC."`
	Dump     DumpCMD     `cmd:"" help:"Dump the domain register lists from /dev/mem."`
	Probe    ProbeCMD    `cmd:"" help:"Report HPTimer and PMU wake state from /dev/mem."`
	Inspect  InspectCMD  `cmd:"" help:"Print a recorded trace."`
	Disasm   DisasmCMD   `cmd:"" help:"Disassemble the resume trampoline or a raw ARM image."`
}

// vars are the interpolated defaults of the command line.
func vars() kong.Vars {
	return kong.Vars{
		"pmusram": strconv.FormatUint(pm.PMUSRAMBase, 10),
		"resume":  strconv.FormatUint(DefaultResumeEntry, 10),
	}
}

func Parse() error {
	c := CLI{}

	programName := "gorkpm"
	programDesc := "gorkpm drives and simulates the RV1103B suspend/resume path"

	ctx := kong.Parse(&c,
		kong.Name(programName),
		kong.Description(programDesc),
		kong.UsageOnError(),
		vars(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return err
	}

	logrus.SetLevel(level)
	logrus.SetOutput(os.Stderr)

	err = ctx.Run()

	return err
}
