// Package classify assigns generation categories to Vulkan type strings and
// derives the C++ wrapper names used by the generated code.
package classify

import (
	"sort"
	"strings"

	"github.com/tliron/commonlog"

	"github.com/chazu/vkgen/catalog"
	"github.com/chazu/vkgen/decl"
)

// Category is the classification of a type as consumed by the C++ argument
// info tables.
type Category int

const (
	Other Category = iota
	OpaqueHandle
	Enum
	PrimitiveType
	Struct
)

var categoryNames = map[Category]string{
	Other:         "OTHER",
	OpaqueHandle:  "OPAQUE_HANDLE",
	Enum:          "ENUM",
	PrimitiveType: "PRIMITIVE_TYPE",
	Struct:        "STRUCT",
}

func (c Category) String() string {
	if s, ok := categoryNames[c]; ok {
		return s
	}
	return "OTHER"
}

// Classifier answers type questions against one catalog. Unknown types are
// reported once each through the logger.
type Classifier struct {
	cat *catalog.Catalog
	log commonlog.Logger

	unknown map[string]struct{}
}

// New returns a classifier over cat. A nil log discards warnings.
func New(cat *catalog.Catalog, log commonlog.Logger) *Classifier {
	return &Classifier{
		cat:     cat,
		log:     log,
		unknown: make(map[string]struct{}),
	}
}

// Catalog returns the catalog the classifier was built over.
func (c *Classifier) Catalog() *catalog.Catalog { return c.cat }

// Classify returns the category of t. The first matching rule wins:
// handle, enum, primitive, struct. Anything else is Other.
func (c *Classifier) Classify(t string) Category {
	bare := decl.Undecorate(t)
	switch {
	case c.cat.IsOpaqueHandle(bare):
		return OpaqueHandle
	case c.cat.IsEnum(bare):
		return Enum
	case c.cat.IsPrimitive(bare):
		return PrimitiveType
	case c.cat.IsStruct(bare):
		return Struct
	case strings.Contains(t, "void*"):
		return Other
	}

	if _, seen := c.unknown[t]; !seen {
		c.unknown[t] = struct{}{}
		if c.log != nil {
			c.log.Warningf("type %s is of unknown category", t)
		}
	}
	return Other
}

// Unknown returns the unknown types seen so far, sorted.
func (c *Classifier) Unknown() []string {
	out := make([]string, 0, len(c.unknown))
	for t := range c.unknown {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// CType returns the C++ wrapper class for t, e.g. "Cfloat::CSArray" for
// "const float*". A non-empty wrapType is returned as is.
func (c *Classifier) CType(t, wrapType string) string {
	if wrapType != "" {
		return wrapType
	}
	bare := decl.Undecorate(t)
	switch {
	case strings.Contains(t, "*"):
		if c.cat.IsStruct(bare) {
			return "C" + bare
		}
		return "C" + bare + "::CSArray"
	case c.cat.IsUint32(bare):
		return "Cuint32_t"
	case c.cat.IsUint64(bare):
		return "Cuint64_t"
	}
	return "C" + bare
}

// NeedsAddressOf reports whether generated C code may have to take the
// address of a value of type t instead of passing its wrapper directly.
func (c *Classifier) NeedsAddressOf(t, wrapType string) bool {
	bare := decl.Undecorate(t)
	if c.cat.IsUnion(bare) && decl.PointerDepth(t) == 1 {
		return true
	}
	return c.cat.IsStruct(bare) && !strings.HasSuffix(wrapType, "Array")
}

// FlagBitsCast returns a C++ cast to the *FlagBits enum behind a flags
// type, "(VkFooFlagBits)" for "VkFooFlags", or "" when there is none.
// Pointers are never cast.
func (c *Classifier) FlagBitsCast(t string) string {
	if decl.PointerDepth(t) > 0 {
		return ""
	}
	enum, ok := c.cat.FlagBits(decl.Undecorate(t))
	if !ok {
		return ""
	}
	return "(" + enum + ")"
}
