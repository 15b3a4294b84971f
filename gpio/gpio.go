// Package gpio parks the always-on GPIO0 bank for sleep and puts it back.
package gpio

import (
	"github.com/bobuhiro11/gorkpm/config"
	"github.com/bobuhiro11/gorkpm/mmio"
)

// GPIO controller register offsets.
const (
	RegSwportDRL    = 0x00
	RegSwportDRH    = 0x04
	RegSwportDDRL   = 0x08
	RegSwportDDRH   = 0x0c
	RegIntEnL       = 0x10
	RegIntEnH       = 0x14
	RegIntMaskL     = 0x18
	RegIntMaskH     = 0x1c
	RegIntStatus    = 0x50
	RegIntRawStatus = 0x58
)

// IOC pull registers: pins 0..7 in the low IOC, pins 8..15 in the high one.
const (
	RegIOCPullLow  = 0x200
	RegIOCPullHigh = 0x204
)

const (
	pinsPerIOC      = 8
	pinsPerHalfWord = 16
	iomuxPinsPerReg = 4
	iomuxBitsPerPin = 4
	pullBitsPerPin  = 2
	iomuxFieldMask  = 0xf
	pullFieldMask   = 0x3

	directionIn  = 0
	directionOut = 1

	debugPinIomuxReg = 0x8
)

// state is the pin configuration captured before parking.
type state struct {
	iomuxAL, iomuxAH, iomuxBL, iomuxBH uint32
	pullA, pullB                       uint32
	ddrL, ddrH, drL, drH               uint32
}

// Bank is GPIO0 and the two IOC blocks holding its iomux and pull fields.
// Pins 0..7 live in the low IOC, pins 8..15 in the high one.
type Bank struct {
	gpio  mmio.Block
	iocLo mmio.Block
	iocHi mmio.Block

	saved state
}

// New returns the bank over its register blocks.
func New(gpio, iocLo, iocHi mmio.Block) *Bank {
	return &Bank{gpio: gpio, iocLo: iocLo, iocHi: iocHi}
}

// SetIomux selects function fn for pin.
func (b *Bank) SetIomux(pin, fn uint32) {
	sft := pin % iomuxPinsPerReg * iomuxBitsPerPin
	off := pin / iomuxPinsPerReg * 4

	switch {
	case pin < pinsPerIOC:
		b.iocLo.Write32(off, mmio.WithWriteMask(fn, iomuxFieldMask, sft))
	case pin < 2*pinsPerIOC:
		b.iocHi.Write32(off, mmio.WithWriteMask(fn, iomuxFieldMask, sft))
	}
}

// SetPull programs the pull of pin.
func (b *Bank) SetPull(pin uint32, pull config.Pull) {
	sft := pin % pinsPerIOC * pullBitsPerPin

	switch {
	case pin < pinsPerIOC:
		b.iocLo.Write32(RegIOCPullLow, mmio.WithWriteMask(uint32(pull), pullFieldMask, sft))
	case pin < 2*pinsPerIOC:
		b.iocHi.Write32(RegIOCPullHigh, mmio.WithWriteMask(uint32(pull), pullFieldMask, sft))
	}
}

func (b *Bank) setBit(lo, hi, pin, v uint32) {
	off := lo
	if pin >= pinsPerHalfWord {
		off = hi
	}

	b.gpio.Write32(off, mmio.WithWriteMask(v, 0x1, pin%pinsPerHalfWord))
}

// SetDirection makes pin an output or an input.
func (b *Bank) SetDirection(pin uint32, out bool) {
	v := uint32(directionIn)
	if out {
		v = directionOut
	}

	b.setBit(RegSwportDDRL, RegSwportDDRH, pin, v)
}

// SetLevel drives pin to lvl.
func (b *Bank) SetLevel(pin, lvl uint32) {
	b.setBit(RegSwportDRL, RegSwportDRH, pin, lvl&0x1)
}

func (b *Bank) save() {
	b.saved = state{
		iomuxAL: b.iocLo.Read32(0x0),
		iomuxAH: b.iocLo.Read32(0x4),
		iomuxBL: b.iocHi.Read32(0x8),
		iomuxBH: b.iocHi.Read32(0xc),
		pullA:   b.iocLo.Read32(RegIOCPullLow),
		pullB:   b.iocHi.Read32(RegIOCPullHigh),
		ddrL:    b.gpio.Read32(RegSwportDDRL),
		ddrH:    b.gpio.Read32(RegSwportDDRH),
		drL:     b.gpio.Read32(RegSwportDRL),
		drH:     b.gpio.Read32(RegSwportDRH),
	}
}

// Configure captures the current pin state, then applies pins in order. A
// GPIO-function output pin gets its level before its direction so it never
// glitches.
func (b *Bank) Configure(pins []config.IOPin) {
	b.save()

	for _, p := range pins {
		if p.Iomux == config.IomuxGPIO {
			if p.Output {
				b.SetLevel(p.ID, p.Level)
			}

			b.SetDirection(p.ID, p.Output)
		}

		b.SetIomux(p.ID, p.Iomux)
		b.SetPull(p.ID, p.Pull)
	}
}

// RouteDebug muxes gpio0_b1 to the PMU state output.
func (b *Bank) RouteDebug() {
	b.iocHi.Write32(debugPinIomuxReg, mmio.WithWriteMask(0x5, iomuxFieldMask, 4))
}

// Restore replays the state captured by Configure.
func (b *Bank) Restore() {
	s := &b.saved

	b.gpio.Write32(RegSwportDDRL, mmio.WithFullUpperMask(s.ddrL))
	b.gpio.Write32(RegSwportDDRH, mmio.WithFullUpperMask(s.ddrH))
	b.gpio.Write32(RegSwportDRL, mmio.WithFullUpperMask(s.drL))
	b.gpio.Write32(RegSwportDRH, mmio.WithFullUpperMask(s.drH))

	b.iocLo.Write32(0x0, mmio.WithFullUpperMask(s.iomuxAL))
	b.iocLo.Write32(0x4, mmio.WithFullUpperMask(s.iomuxAH))
	b.iocHi.Write32(0x8, mmio.WithFullUpperMask(s.iomuxBL))
	b.iocHi.Write32(0xc, mmio.WithFullUpperMask(s.iomuxBH))
	b.iocLo.Write32(RegIOCPullLow, mmio.WithFullUpperMask(s.pullA))
	b.iocHi.Write32(RegIOCPullHigh, mmio.WithFullUpperMask(s.pullB))
}

// IntStatus returns the pending interrupt status of the bank.
func (b *Bank) IntStatus() uint32 {
	return b.gpio.Read32(RegIntStatus)
}

// IntRegs returns, in order, the interrupt enable low/high, mask low/high,
// status and raw status registers.
func (b *Bank) IntRegs() [6]uint32 {
	return [6]uint32{
		b.gpio.Read32(RegIntEnL),
		b.gpio.Read32(RegIntEnH),
		b.gpio.Read32(RegIntMaskL),
		b.gpio.Read32(RegIntMaskH),
		b.gpio.Read32(RegIntStatus),
		b.gpio.Read32(RegIntRawStatus),
	}
}
