// Package region captures and replays groups of memory-mapped registers.
//
// A Set is declared once per hardware domain. NewArena sizes one backing
// buffer for every set at init, so Save and Restore never allocate while a
// suspend cycle runs.
package region

import (
	"errors"
	"fmt"

	"github.com/bobuhiro11/gorkpm/mmio"
)

// ErrInvalidRegion is returned for a region whose bounds do not line up
// with its stride.
var ErrInvalidRegion = errors.New("invalid register region")

// Region is a contiguous or strided span of registers within one block.
// WMask, when non-zero, is the upper-half enable pattern ORed into the lower
// 16 bits of each captured value on restore.
type Region struct {
	Block  mmio.Block
	Start  uint32
	End    uint32
	Stride uint32
	WMask  uint32
}

// R declares a region.
func R(b mmio.Block, start, end, stride, wmask uint32) Region {
	return Region{Block: b, Start: start, End: end, Stride: stride, WMask: wmask}
}

// Validate checks the region invariants.
func (r Region) Validate() error {
	switch {
	case r.Block == nil:
		return fmt.Errorf("%#x-%#x: nil block: %w", r.Start, r.End, ErrInvalidRegion)
	case r.Stride == 0:
		return fmt.Errorf("%s %#x-%#x: zero stride: %w", r.Block.Name(), r.Start, r.End, ErrInvalidRegion)
	case r.Start > r.End:
		return fmt.Errorf("%s %#x-%#x: start after end: %w", r.Block.Name(), r.Start, r.End, ErrInvalidRegion)
	case (r.End-r.Start)%r.Stride != 0:
		return fmt.Errorf("%s %#x-%#x/%d: span not a multiple of stride: %w",
			r.Block.Name(), r.Start, r.End, r.Stride, ErrInvalidRegion)
	}

	return nil
}

// Count is the number of registers the region covers.
func (r Region) Count() int {
	return int((r.End-r.Start)/r.Stride) + 1
}

// Snapshot holds one captured value per register of a Set, in list order.
type Snapshot []uint32

// Set is the ordered region list of one hardware domain. Later regions may
// depend on earlier ones being restored first.
type Set struct {
	Name    string
	Regions []Region

	snap Snapshot
}

// Count is the number of registers the set covers.
func (s *Set) Count() int {
	n := 0
	for _, r := range s.Regions {
		n += r.Count()
	}

	return n
}

// Validate checks every region of the set.
func (s *Set) Validate() error {
	for i, r := range s.Regions {
		if err := r.Validate(); err != nil {
			return fmt.Errorf("%s[%d]: %w", s.Name, i, err)
		}
	}

	return nil
}

// Arena is the pre-allocated backing store of all snapshots.
type Arena struct {
	buf []uint32
}

// NewArena validates sets and carves one snapshot per set out of a single
// buffer sized to their total register count.
func NewArena(sets ...*Set) (*Arena, error) {
	total := 0

	for _, s := range sets {
		if err := s.Validate(); err != nil {
			return nil, err
		}

		total += s.Count()
	}

	a := &Arena{buf: make([]uint32, total)}

	off := 0
	for _, s := range sets {
		n := s.Count()
		s.snap = a.buf[off : off+n : off+n]
		off += n
	}

	return a, nil
}

// Len is the arena size in registers.
func (a *Arena) Len() int {
	return len(a.buf)
}

// Save reads every register of s, in list order, into its snapshot. s must
// have been carved by NewArena. The returned snapshot aliases the arena and
// is overwritten by the next Save of s.
func Save(s *Set) Snapshot {
	i := 0

	for _, r := range s.Regions {
		for off := r.Start; off <= r.End; off += r.Stride {
			s.snap[i] = r.Block.Read32(off)
			i++
		}
	}

	return s.snap
}

// Restore writes snap back register by register in the order Save read it.
func Restore(s *Set, snap Snapshot) {
	i := 0

	for _, r := range s.Regions {
		for off := r.Start; off <= r.End; off += r.Stride {
			v := snap[i]
			if r.WMask != 0 {
				v = v&0xffff | r.WMask
			}

			r.Block.Write32(off, v)
			i++
		}
	}
}

// Captured returns the snapshot most recently saved for s.
func (s *Set) Captured() Snapshot {
	return s.snap
}
