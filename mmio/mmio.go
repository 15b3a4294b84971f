// Package mmio provides handles to memory-mapped 32-bit register blocks.
package mmio

// Block describes the interface a register block must implement regardless
// of whether it is backed by /dev/mem or by memory.
type Block interface {
	Name() string
	Read32(off uint32) uint32
	Write32(off uint32, val uint32)
}

// FullUpperMask enables every lower field of a hiword register.
const FullUpperMask = 0xffff0000

// WithWriteMask returns the hiword encoding that writes val into the field
// selected by mask at shift and leaves the other fields untouched.
func WithWriteMask(val, mask, shift uint32) uint32 {
	return (val&mask)<<shift | (mask<<shift)<<16
}

// WithFullUpperMask returns the hiword encoding that replays the lower 16 bits
// of val into every field.
func WithFullUpperMask(val uint32) uint32 {
	return val&0xffff | FullUpperMask
}

// Bit returns the value with bit n set.
func Bit(n uint32) uint32 {
	return 1 << n
}

// SetBits turns on bits in the register at off with a read-modify-write.
func SetBits(b Block, off, bits uint32) {
	b.Write32(off, b.Read32(off)|bits)
}

// ClearBits turns off bits in the register at off with a read-modify-write.
func ClearBits(b Block, off, bits uint32) {
	b.Write32(off, b.Read32(off)&^bits)
}

// HasBits reports whether all of bits are set in the register at off.
func HasBits(b Block, off, bits uint32) bool {
	return b.Read32(off)&bits == bits
}
