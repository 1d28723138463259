// Package catalog builds the sets of known Vulkan type names that drive
// type classification.
package catalog

import (
	"sort"
	"strings"

	"github.com/chazu/vkgen/metadata"
)

const (
	flagBitsMarker = "FlagBits"
	flagsMarker    = "Flags"
)

type nameSet map[string]struct{}

func (s nameSet) add(names ...string) {
	for _, n := range names {
		s[n] = struct{}{}
	}
}

func (s nameSet) has(name string) bool {
	_, ok := s[name]
	return ok
}

func (s nameSet) sorted() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Catalog is the set of known type names. It is built once by Build and
// only read afterwards.
type Catalog struct {
	flags32         nameSet
	flags64         nameSet
	uint32          nameSet
	uint64          nameSet
	enums           nameSet
	unions          nameSet
	structs         nameSet
	basePrimitives  nameSet
	primitives      nameSet
	dispatchable    nameSet
	nonDispatchable nameSet
	platform        nameSet

	// flagBits maps a derived flags alias back to its *FlagBits enum.
	flagBits map[string]string
}

// Build derives the catalog from the metadata enums and structs plus the
// configured name lists.
func Build(enums []metadata.Enum, structs []metadata.Struct, cfg Config) *Catalog {
	c := &Catalog{
		flags32:         nameSet{},
		flags64:         nameSet{},
		uint32:          nameSet{},
		uint64:          nameSet{},
		enums:           nameSet{},
		unions:          nameSet{},
		structs:         nameSet{},
		basePrimitives:  nameSet{},
		primitives:      nameSet{},
		dispatchable:    nameSet{},
		nonDispatchable: nameSet{},
		platform:        nameSet{},
		flagBits:        make(map[string]string),
	}

	c.flags32.add("VkFlags")
	c.flags64.add("VkFlags64")
	for _, e := range enums {
		c.enums.add(e.Name)
		if !strings.Contains(e.Name, flagBitsMarker) {
			continue
		}
		flags := strings.ReplaceAll(e.Name, flagBitsMarker, flagsMarker)
		c.flagBits[flags] = e.Name
		if e.Size == 64 {
			c.flags64.add(flags)
		} else {
			c.flags32.add(flags)
		}
	}
	c.flags32.add(cfg.UndeclaredFlags...)

	c.uint32.add(uint32Aliases...)
	for n := range c.flags32 {
		c.uint32.add(n)
	}
	c.uint64.add(uint64Aliases...)
	for n := range c.flags64 {
		c.uint64.add(n)
	}

	for _, s := range structs {
		name := CanonicalStructName(s.Name)
		c.structs.add(name)
		if s.IsUnion() {
			c.unions.add(name)
		}
	}

	c.basePrimitives.add(basePrimitives...)
	for _, set := range []nameSet{c.enums, c.uint32, c.uint64, c.unions, c.basePrimitives} {
		for n := range set {
			c.primitives.add(n)
		}
	}

	c.dispatchable.add(cfg.DispatchableHandles...)
	c.nonDispatchable.add(cfg.NonDispatchableHandles...)
	c.platform.add(cfg.PlatformHandles...)

	return c
}

// CanonicalStructName strips the trailing underscores some metadata entries
// carry on struct names.
func CanonicalStructName(name string) string {
	return strings.TrimRight(name, "_")
}

func (c *Catalog) IsEnum(name string) bool      { return c.enums.has(name) }
func (c *Catalog) IsStruct(name string) bool    { return c.structs.has(name) }
func (c *Catalog) IsUnion(name string) bool     { return c.unions.has(name) }
func (c *Catalog) IsPrimitive(name string) bool { return c.primitives.has(name) }
func (c *Catalog) IsUint32(name string) bool    { return c.uint32.has(name) }
func (c *Catalog) IsUint64(name string) bool    { return c.uint64.has(name) }

// IsOpaqueHandle reports whether name is a dispatchable, non-dispatchable
// or platform handle.
func (c *Catalog) IsOpaqueHandle(name string) bool {
	return c.dispatchable.has(name) || c.nonDispatchable.has(name) || c.platform.has(name)
}

// FlagBits returns the *FlagBits enum a flags alias was derived from.
func (c *Catalog) FlagBits(flags string) (string, bool) {
	e, ok := c.flagBits[flags]
	return e, ok
}

func (c *Catalog) DispatchableHandles() []string    { return c.dispatchable.sorted() }
func (c *Catalog) NonDispatchableHandles() []string { return c.nonDispatchable.sorted() }

// Overlap is a name registered in more than one exclusive category.
type Overlap struct {
	Name       string
	Categories []string
}

// Overlaps lists names that belong to more than one of the enum, struct,
// base-primitive and handle sets. Classification still resolves them by
// precedence; overlaps point at metadata or configuration mistakes.
func (c *Catalog) Overlaps() []Overlap {
	groups := []struct {
		label string
		has   func(string) bool
	}{
		{"opaque handle", c.IsOpaqueHandle},
		{"enum", c.enums.has},
		{"primitive", func(n string) bool { return c.basePrimitives.has(n) || c.uint32.has(n) || c.uint64.has(n) }},
		{"struct", c.structs.has},
	}

	candidates := nameSet{}
	for _, s := range []nameSet{c.enums, c.structs, c.basePrimitives, c.uint32, c.uint64, c.dispatchable, c.nonDispatchable, c.platform} {
		for n := range s {
			candidates.add(n)
		}
	}

	var out []Overlap
	for _, n := range candidates.sorted() {
		var cats []string
		for _, g := range groups {
			if g.has(n) {
				cats = append(cats, g.label)
			}
		}
		if len(cats) > 1 {
			out = append(out, Overlap{Name: n, Categories: cats})
		}
	}
	return out
}
