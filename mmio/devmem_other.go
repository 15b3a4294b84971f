//go:build !linux

package mmio

import "errors"

// DevMemPath is the character device exposing physical memory.
const DevMemPath = "/dev/mem"

// ErrNoDevMem is returned on platforms without /dev/mem mappings.
var ErrNoDevMem = errors.New("/dev/mem mapping is only supported on linux")

// DevMem is unavailable on this platform.
type DevMem struct{}

// OpenDevMem always fails on this platform.
func OpenDevMem(path string, base, size uint64) (*DevMem, error) {
	return nil, ErrNoDevMem
}

// Map implements Mapper.
func (d *DevMem) Map(r Resource) (Block, error) {
	return nil, ErrNoDevMem
}

// Close is a no-op.
func (d *DevMem) Close() error {
	return nil
}
