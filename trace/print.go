package trace

import (
	"fmt"
	"io"
	"strings"
)

// Fprint writes a one-line summary of c, followed by one line per timeout.
func Fprint(w io.Writer, c *Cycle) {
	phases := make([]string, len(c.Phases))
	for i, p := range c.Phases {
		phases[i] = p.String()
	}

	status := "ok"
	if c.Err != "" {
		status = c.Err
	}

	fmt.Fprintf(w, "run %d cycle %d: mode=%v wake=%v wake_status=%#x gpio0=%#x %s\n",
		c.Run, c.Seq, c.Mode, c.Wake, c.WakeStatus, c.GPIO0Status, status)
	fmt.Fprintf(w, "\tcheckpoints %s\n", c.Checkpoints)
	fmt.Fprintf(w, "\tphases %s\n", strings.Join(phases, " "))

	for _, t := range c.Timeouts {
		fmt.Fprintf(w, "\ttimeout: %s\n", t)
	}
}
