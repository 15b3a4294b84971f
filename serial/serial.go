// Package serial drives the debug UART as a raw polling console. It is the
// only output that keeps working while interrupts are off in the middle of a
// suspend cycle.
package serial

import (
	"strconv"

	"github.com/bobuhiro11/gorkpm/mmio"
	"github.com/bobuhiro11/gorkpm/poll"
)

// 8250-compatible register offsets, 32-bit spaced.
const (
	RegTHR = 0x00 // DLL when DLAB is set
	RegIER = 0x04 // DLH when DLAB is set
	RegFCR = 0x08 // IIR on read
	RegLCR = 0x0c
	RegMCR = 0x10
	RegLSR = 0x14

	LCRDLAB       = 0x80
	LSRTxEmpty    = 0x40
	FCRFIFOEnable = 0x01

	txBudget = 100000
)

// Port is the debug UART. The zero Delay polls without pausing.
type Port struct {
	base  mmio.Block
	Delay poll.Delay
}

// New returns a console writing to the UART at base.
func New(base mmio.Block) *Port {
	return &Port{base: base}
}

func (p *Port) dlab() bool {
	return p.base.Read32(RegLCR)&LCRDLAB != 0
}

func (p *Port) txReady() bool {
	return p.base.Read32(RegLSR)&LSRTxEmpty != 0
}

func (p *Port) putRaw(c byte) {
	// A stuck transmitter still gets the byte; there is nowhere else to
	// report it.
	_ = poll.Until(p.txReady, txBudget, p.Delay)

	p.base.Write32(RegTHR, uint32(c))
}

// WriteByte implements io.ByteWriter. A line feed is preceded by a
// carriage return.
func (p *Port) WriteByte(c byte) error {
	if c == '\n' {
		p.putRaw('\r')
	}

	p.putRaw(c)

	return nil
}

// Write implements io.Writer.
func (p *Port) Write(b []byte) (int, error) {
	for _, c := range b {
		_ = p.WriteByte(c)
	}

	return len(b), nil
}

// PutChar emits a single checkpoint character.
func (p *Port) PutChar(c byte) {
	_ = p.WriteByte(c)
}

// PutString emits s.
func (p *Port) PutString(s string) {
	for i := 0; i < len(s); i++ {
		_ = p.WriteByte(s[i])
	}
}

// PutHex emits v as eight upper-case hex digits.
func (p *Port) PutHex(v uint32) {
	for shift := 28; shift >= 0; shift -= 4 {
		d := byte(v>>uint(shift)) & 0xf
		if d > 9 {
			d += 'A' - 10
		} else {
			d += '0'
		}

		p.putRaw(d)
	}
}

// PutDec emits v in decimal.
func (p *Port) PutDec(v uint32) {
	p.PutString(strconv.FormatUint(uint64(v), 10))
}
