package pm

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/arch/arm/armasm"
)

// PMU SRAM layout. The boot ROM jumps to offset 0 on a wake from a
// BootROM-resume mode; the trampoline there loads the kernel resume entry
// stored in the word after it.
const (
	SRAMTrampoline = 0x00
	SRAMEntry      = 0x04
	SRAMCPUSP      = 0x08
	SRAMCPUCode    = 0x0c
	SRAML2CtlrF    = 0x10
	SRAML2Ctlr     = 0x14

	// ldr pc, [pc, #-4]
	trampolineInsn = 0xe51ff004

	// TrampolineSize covers the instruction and its literal.
	TrampolineSize = 8
)

// BootData is what the resume code needs before the MMU is back on.
type BootData struct {
	ResumeEntry uint32
	L2Ctlr      uint32
}

// CPUSP is the stack the resume code starts on: the top of PMU SRAM less
// one double word.
const CPUSP = PMUSRAMBase + pmuSRAMSize - 8

// WriteBootData copies the trampoline and the boot data into PMU SRAM.
func (c *Context) WriteBootData(d BootData) {
	c.pmusram.Write32(SRAMTrampoline, trampolineInsn)
	c.pmusram.Write32(SRAMEntry, d.ResumeEntry)
	c.pmusram.Write32(SRAMCPUSP, CPUSP)
	c.pmusram.Write32(SRAMCPUCode, d.ResumeEntry)
	c.pmusram.Write32(SRAML2CtlrF, 1)
	c.pmusram.Write32(SRAML2Ctlr, d.L2Ctlr)
}

// ReadBootData returns the boot data currently in PMU SRAM.
func (c *Context) ReadBootData() BootData {
	return BootData{
		ResumeEntry: c.pmusram.Read32(SRAMCPUCode),
		L2Ctlr:      c.pmusram.Read32(SRAML2Ctlr),
	}
}

// Trampoline returns the bytes of the resume trampoline as stored in PMU
// SRAM, little endian.
func (c *Context) Trampoline() []byte {
	code := make([]byte, TrampolineSize)
	for off := 0; off < TrampolineSize; off += 4 {
		binary.LittleEndian.PutUint32(code[off:], c.pmusram.Read32(uint32(off)))
	}

	return code
}

// Insn is one decoded word of ARM code.
type Insn struct {
	Addr uint32
	Word uint32
	Op   armasm.Op
	Text string
}

func (i Insn) String() string {
	return fmt.Sprintf("%08x:\t%08x\t%s", i.Addr, i.Word, i.Text)
}

// Disassemble decodes code as ARM-mode instructions loaded at addr. Words
// that do not decode are shown as literals.
func Disassemble(code []byte, addr uint32) []Insn {
	var out []Insn

	for off := 0; off+4 <= len(code); off += 4 {
		word := binary.LittleEndian.Uint32(code[off:])
		in := Insn{Addr: addr + uint32(off), Word: word}

		inst, err := armasm.Decode(code[off:off+4], armasm.ModeARM)
		if err != nil {
			in.Text = fmt.Sprintf(".word\t%#08x", word)
		} else {
			in.Op = inst.Op
			in.Text = armasm.GNUSyntax(inst)
		}

		out = append(out, in)
	}

	return out
}
