// Package clock saves, forces and restores clock gate words and waits for
// PLLs to lock.
package clock

import (
	"fmt"

	"github.com/bobuhiro11/gorkpm/mmio"
	"github.com/bobuhiro11/gorkpm/poll"
)

// GateBase is the offset of the first gate control register in every CRU.
const GateBase = 0x800

// GateCon returns the offset of gate control register i.
func GateCon(i uint32) uint32 {
	return GateBase + i*4
}

// GatePattern is the value written to every gate register while suspended.
const GatePattern = mmio.FullUpperMask

// Bank is the gate control registers of one CRU.
type Bank struct {
	Block mmio.Block
	Count uint32
}

// Gates holds the gate words of a list of banks across one suspend.
type Gates struct {
	banks []Bank
	saved []uint32
}

// NewGates sizes the save area for banks.
func NewGates(banks ...Bank) *Gates {
	n := uint32(0)
	for _, b := range banks {
		n += b.Count
	}

	return &Gates{banks: banks, saved: make([]uint32, n)}
}

// Suspend saves every gate word and forces the gating pattern.
func (g *Gates) Suspend() {
	i := 0

	for _, b := range g.banks {
		for n := uint32(0); n < b.Count; n++ {
			g.saved[i] = b.Block.Read32(GateCon(n))
			b.Block.Write32(GateCon(n), GatePattern)
			i++
		}
	}
}

// Resume writes back exactly the words Suspend saved.
func (g *Gates) Resume() {
	i := 0

	for _, b := range g.banks {
		for n := uint32(0); n < b.Count; n++ {
			b.Block.Write32(GateCon(n), mmio.WithFullUpperMask(g.saved[i]))
			i++
		}
	}
}

// Saved returns the words captured by the last Suspend.
func (g *Gates) Saved() []uint32 {
	return g.saved
}

// PLL register layout.
const (
	PLLConStride   = 0x20
	PLLCon1PwrDown = 1 << 13
	PLLCon1Lock    = 1 << 15
	PLLLockTimeout = 600000
)

// PLL identifiers in the top CRU.
const (
	DPLL = 1
	GPLL = 2
)

// PLLCon returns the offset of configuration register n of pll.
func PLLCon(pll, n uint32) uint32 {
	return pll*PLLConStride + n*4
}

// WaitLock polls for pll to report lock. A powered-down PLL is not waited
// for. On timeout the last raw value of the control register is reported
// along with poll.ErrTimeout.
func WaitLock(cru mmio.Block, pll uint32, delay poll.Delay) (uint32, error) {
	con1 := PLLCon(pll, 1)

	v := cru.Read32(con1)
	if v&PLLCon1PwrDown != 0 {
		return v, nil
	}

	err := poll.Until(func() bool {
		v = cru.Read32(con1)

		return v&PLLCon1Lock != 0
	}, PLLLockTimeout, delay)
	if err != nil {
		return v, fmt.Errorf("pll %d lock: %w", pll, err)
	}

	return v, nil
}
