//go:build linux

package mmio

import (
	"fmt"
	"os"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

// DevMemPath is the character device exposing physical memory.
const DevMemPath = "/dev/mem"

// DevMem maps the device register window of a ResourceMap through /dev/mem.
// The mapping is acquired once and lives until Close.
type DevMem struct {
	f   *os.File
	mem []byte
}

// OpenDevMem maps size bytes of physical address space starting at base.
// Failing here is the only fatal resource error and happens before any
// sleep cycle can run.
func OpenDevMem(path string, base, size uint64) (*DevMem, error) {
	pageSize := uint64(unix.Getpagesize())
	if base%pageSize != 0 || size%pageSize != 0 {
		return nil, fmt.Errorf("window %#x+%#x is not page aligned: %w", base, size, ErrOutOfRange)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, err
	}

	mem, err := unix.Mmap(int(f.Fd()), int64(base), int(size),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()

		return nil, fmt.Errorf("mmap %s at %#x: %w", path, base, err)
	}

	return &DevMem{f: f, mem: mem}, nil
}

// Map implements Mapper.
func (d *DevMem) Map(r Resource) (Block, error) {
	if r.end() > uint64(len(d.mem)) {
		return nil, fmt.Errorf("%s at %#x: %w", r.Name, r.Offset, ErrOutOfRange)
	}

	return &window{
		name: r.Name,
		mem:  d.mem[r.Offset:r.end():r.end()],
	}, nil
}

// Close unmaps the window.
func (d *DevMem) Close() error {
	if d.mem == nil {
		return nil
	}

	if err := unix.Munmap(d.mem); err != nil {
		return err
	}

	d.mem = nil

	return d.f.Close()
}

type window struct {
	name string
	mem  []byte
}

func (w *window) Name() string {
	return w.name
}

func (w *window) reg(off uint32) *uint32 {
	_ = w.mem[off+3]

	return (*uint32)(unsafe.Pointer(&w.mem[off]))
}

func (w *window) Read32(off uint32) uint32 {
	return atomic.LoadUint32(w.reg(off))
}

func (w *window) Write32(off uint32, val uint32) {
	atomic.StoreUint32(w.reg(off), val)
}
