// Package gic saves and restores the context of a GICv2 distributor and CPU
// interface across a power cycle of the core domain.
package gic

import (
	"github.com/bobuhiro11/gorkpm/mmio"
	"github.com/bobuhiro11/gorkpm/region"
)

// Distributor registers.
const (
	GICDCtlr       = 0x000
	GICDTyper      = 0x004
	GICDIGroupR    = 0x080
	GICDISEnableR  = 0x100
	GICDICEnableR  = 0x180
	GICDIPriorityR = 0x400
	GICDITargetsR  = 0x800
	GICDICfgR      = 0xc00
)

// CPU interface registers.
const (
	GICCCtlr = 0x00
	GICCPMR  = 0x04
	GICCBPR  = 0x08
)

// Lines returns the number of interrupt lines the distributor implements.
func Lines(gicd mmio.Block) uint32 {
	return (gicd.Read32(GICDTyper)&0x1f + 1) * 32
}

// Controller is one distributor and its CPU interface.
type Controller struct {
	gicd mmio.Block
	gicc mmio.Block
	n    uint32

	Dist *region.Set
	CPU  *region.Set
}

// New declares the context of a controller with n interrupt lines. Banked
// per-cpu lines 0..31 are included.
func New(gicd, gicc mmio.Block, n uint32) *Controller {
	word := func(base, bitsPerIRQ uint32) region.Region {
		return region.R(gicd, base, base+(n*bitsPerIRQ/32-1)*4, 4, 0)
	}

	return &Controller{
		gicd: gicd,
		gicc: gicc,
		n:    n,
		Dist: &region.Set{
			Name: "gicd",
			Regions: []region.Region{
				word(GICDIGroupR, 1),
				word(GICDICfgR, 2),
				word(GICDIPriorityR, 8),
				word(GICDITargetsR, 8),
				word(GICDISEnableR, 1),
				region.R(gicd, GICDCtlr, GICDCtlr, 4, 0),
			},
		},
		CPU: &region.Set{
			Name: "gicc",
			Regions: []region.Region{
				region.R(gicc, GICCPMR, GICCBPR, 4, 0),
				region.R(gicc, GICCCtlr, GICCCtlr, 4, 0),
			},
		},
	}
}

// Sets returns the region sets to size into the arena.
func (c *Controller) Sets() []*region.Set {
	return []*region.Set{c.Dist, c.CPU}
}

// Save captures the CPU interface, then the distributor.
func (c *Controller) Save() {
	region.Save(c.CPU)
	region.Save(c.Dist)
}

// Restore replays the distributor with forwarding off, then the CPU
// interface. Enable bits are set-only, so every line is cleared first.
func (c *Controller) Restore() {
	c.gicd.Write32(GICDCtlr, 0)

	for i := uint32(0); i < c.n/32; i++ {
		c.gicd.Write32(GICDICEnableR+i*4, 0xffffffff)
	}

	region.Restore(c.Dist, c.Dist.Captured())
	region.Restore(c.CPU, c.CPU.Captured())
}
