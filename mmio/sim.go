package mmio

import "sort"

// ReadHook computes the value presented by a read; cur is the stored value.
type ReadHook func(cur uint32) uint32

// WriteHook computes the value stored by a write of val over cur.
type WriteHook func(cur, val uint32) uint32

// Access is one logged register write.
type Access struct {
	Block string
	Off   uint32
	Val   uint32
}

// Log collects the writes of every Sim block sharing it, in issue order.
type Log struct {
	Writes []Access
}

// Reset drops the collected writes.
func (l *Log) Reset() {
	l.Writes = l.Writes[:0]
}

// ApplyHiword returns the stored value of a hiword register holding cur after
// val is written: the upper half of val selects which lower bits change, and
// the upper half always reads back as zero.
func ApplyHiword(cur, val uint32) uint32 {
	mask := val >> 16

	return (cur&^mask | val&mask) & 0xffff
}

// Sim is a register block backed by memory. Registers read as zero until
// written. It is not safe for concurrent use.
type Sim struct {
	name       string
	regs       map[uint32]uint32
	hiword     map[uint32]bool
	readHooks  map[uint32]ReadHook
	writeHooks map[uint32]WriteHook
	log        *Log
}

// NewSim returns an empty block. log may be nil.
func NewSim(name string, log *Log) *Sim {
	return &Sim{
		name:       name,
		regs:       make(map[uint32]uint32),
		hiword:     make(map[uint32]bool),
		readHooks:  make(map[uint32]ReadHook),
		writeHooks: make(map[uint32]WriteHook),
		log:        log,
	}
}

// Name implements Block.
func (s *Sim) Name() string {
	return s.name
}

// Hiword marks registers as following the write-enable mask convention.
func (s *Sim) Hiword(offs ...uint32) {
	for _, off := range offs {
		s.hiword[off] = true
	}
}

// HiwordRange marks every register from start to end inclusive.
func (s *Sim) HiwordRange(start, end, stride uint32) {
	for off := start; off <= end; off += stride {
		s.hiword[off] = true
	}
}

// OnRead installs a read hook on off.
func (s *Sim) OnRead(off uint32, h ReadHook) {
	s.readHooks[off] = h
}

// OnWrite installs a write hook on off.
func (s *Sim) OnWrite(off uint32, h WriteHook) {
	s.writeHooks[off] = h
}

// Read32 implements Block.
func (s *Sim) Read32(off uint32) uint32 {
	v := s.regs[off]
	if h, ok := s.readHooks[off]; ok {
		v = h(v)
	}

	return v
}

// Write32 implements Block.
func (s *Sim) Write32(off uint32, val uint32) {
	if s.log != nil {
		s.log.Writes = append(s.log.Writes, Access{Block: s.name, Off: off, Val: val})
	}

	cur := s.regs[off]

	switch {
	case s.writeHooks[off] != nil:
		s.regs[off] = s.writeHooks[off](cur, val)
	case s.hiword[off]:
		s.regs[off] = ApplyHiword(cur, val)
	default:
		s.regs[off] = val
	}
}

// Peek returns the stored value without hooks or logging.
func (s *Sim) Peek(off uint32) uint32 {
	return s.regs[off]
}

// Poke stores val without hooks or logging.
func (s *Sim) Poke(off uint32, val uint32) {
	if s.hiword[off] {
		val &= 0xffff
	}

	s.regs[off] = val
}

// Offsets returns the offsets holding a stored value, in ascending order.
func (s *Sim) Offsets() []uint32 {
	offs := make([]uint32, 0, len(s.regs))
	for off := range s.regs {
		offs = append(offs, off)
	}

	sort.Slice(offs, func(i, j int) bool { return offs[i] < offs[j] })

	return offs
}

// SimMapper hands out Sim blocks sharing one Log.
type SimMapper struct {
	Log    *Log
	Blocks map[string]*Sim
}

// NewSimMapper returns a mapper whose blocks log into log.
func NewSimMapper(log *Log) *SimMapper {
	return &SimMapper{
		Log:    log,
		Blocks: make(map[string]*Sim),
	}
}

// Map implements Mapper. Mapping a name twice returns the same block.
func (m *SimMapper) Map(r Resource) (Block, error) {
	if b, ok := m.Blocks[r.Name]; ok {
		return b, nil
	}

	b := NewSim(r.Name, m.Log)
	m.Blocks[r.Name] = b

	return b, nil
}
