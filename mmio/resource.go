package mmio

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrAddrSpaceOccupied is returned when two resources overlap.
	ErrAddrSpaceOccupied = errors.New("address space occupied")

	// ErrOutOfRange is returned when a resource falls outside its parent window.
	ErrOutOfRange = errors.New("resource out of range")

	// ErrUnknownResource is returned when a block is looked up by a name
	// that was never declared.
	ErrUnknownResource = errors.New("unknown resource")
)

// Resource is a named window of physical address space relative to the
// device register base.
type Resource struct {
	Name   string
	Offset uint64
	Size   uint32
}

func (r Resource) end() uint64 {
	return r.Offset + uint64(r.Size)
}

func (r Resource) overlaps(o Resource) bool {
	return r.Offset < o.end() && o.Offset < r.end()
}

// ResourceMap is the platform resource map: one device register window and
// the blocks declared inside it.
type ResourceMap struct {
	Base      uint64
	Size      uint64
	Resources []Resource
}

// NewResourceMap returns an empty map covering [base, base+size).
func NewResourceMap(base, size uint64) *ResourceMap {
	return &ResourceMap{
		Base: base,
		Size: size,
	}
}

// Add declares a block in the map.
func (m *ResourceMap) Add(r Resource) error {
	if r.end() > m.Size {
		return fmt.Errorf("%s at %#x: %w", r.Name, r.Offset, ErrOutOfRange)
	}

	for _, o := range m.Resources {
		if o.Name == r.Name || o.overlaps(r) {
			return fmt.Errorf("%s overlaps %s: %w", r.Name, o.Name, ErrAddrSpaceOccupied)
		}
	}

	m.Resources = append(m.Resources, r)

	return nil
}

// Lookup returns the resource declared with name.
func (m *ResourceMap) Lookup(name string) (Resource, error) {
	for _, r := range m.Resources {
		if r.Name == name {
			return r, nil
		}
	}

	return Resource{}, fmt.Errorf("%q: %w", name, ErrUnknownResource)
}

// Sorted returns the resources ordered by offset.
func (m *ResourceMap) Sorted() []Resource {
	rs := make([]Resource, len(m.Resources))
	copy(rs, m.Resources)

	sort.Slice(rs, func(i, j int) bool { return rs[i].Offset < rs[j].Offset })

	return rs
}

// Mapper resolves declared resources into register block handles.
type Mapper interface {
	Map(r Resource) (Block, error)
}

// Blocks resolves every resource of m through mp. The result is meant to be
// looked up once at init and never re-resolved per access.
func (m *ResourceMap) Blocks(mp Mapper) (map[string]Block, error) {
	blocks := make(map[string]Block, len(m.Resources))

	for _, r := range m.Resources {
		b, err := mp.Map(r)
		if err != nil {
			return nil, fmt.Errorf("map %s: %w", r.Name, err)
		}

		blocks[r.Name] = b
	}

	return blocks, nil
}
