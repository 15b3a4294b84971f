package region

import (
	"fmt"
	"io"
)

// Dump writes a hex dump of the live values of every register of s, four
// registers per line. It is a debug aid; production callers leave it off.
func Dump(w io.Writer, s *Set) {
	fmt.Fprintf(w, "%s:\n", s.Name)

	for _, r := range s.Regions {
		col := 0

		for off := r.Start; off <= r.End; off += r.Stride {
			if col == 0 {
				fmt.Fprintf(w, "%s %04x:", r.Block.Name(), off)
			}

			fmt.Fprintf(w, " %08x", r.Block.Read32(off))

			if col++; col == 4 {
				fmt.Fprintln(w)

				col = 0
			}
		}

		if col != 0 {
			fmt.Fprintln(w)
		}
	}
}
