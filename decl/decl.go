// Package decl separates array-size and bit-field annotations from C
// declarations and strips type qualifiers.
package decl

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	bitfieldRe = regexp.MustCompile(`[ \t]*:[ \t]*[0-9]+`)
	arrayRe    = regexp.MustCompile(`\[[0-9_]+\]`)
)

// Decomposed is a name/type pair with its annotations split off.
type Decomposed struct {
	Name     string
	Type     string
	Array    string // e.g. "[3][4]"
	Bitfield string // exactly as written, e.g. ":8" or " : 8"
}

// AnnotationError reports an array or bit-field annotation present on both
// the name and the type of one declaration.
type AnnotationError struct {
	Kind    string // "array" or "bit-field"
	RawName string
	RawType string
}

func (e *AnnotationError) Error() string {
	return fmt.Sprintf("%s annotation on both name %q and type %q", e.Kind, e.RawName, e.RawType)
}

// SplitBitfield removes a bit-field width annotation from s.
//
//	"uint32_t:24" -> ("uint32_t", ":24")
//	"mask : 8"    -> ("mask", " : 8")
func SplitBitfield(s string) (string, string) {
	width := bitfieldRe.FindString(s)
	if width == "" {
		return strings.TrimSpace(s), ""
	}
	return strings.TrimSpace(bitfieldRe.ReplaceAllString(s, "")), width
}

// SplitArrays removes every array-size group from s.
//
//	"baseAndCount [2]" -> ("baseAndCount", "[2]")
//	"matrix[3][4]"     -> ("matrix", "[3][4]")
func SplitArrays(s string) (string, string) {
	groups := arrayRe.FindAllString(s, -1)
	if len(groups) == 0 {
		return strings.TrimSpace(s), ""
	}
	return strings.TrimSpace(arrayRe.ReplaceAllString(s, "")), strings.Join(groups, "")
}

// Decompose splits the annotations off a raw name and type. Annotations of
// the same kind on both sides are malformed input.
func Decompose(rawName, rawType string) (Decomposed, error) {
	name, nameArray := SplitArrays(rawName)
	typ, typeArray := SplitArrays(rawType)
	if nameArray != "" && typeArray != "" {
		return Decomposed{}, &AnnotationError{Kind: "array", RawName: rawName, RawType: rawType}
	}

	name, nameBits := SplitBitfield(name)
	typ, typeBits := SplitBitfield(typ)
	if nameBits != "" && typeBits != "" {
		return Decomposed{}, &AnnotationError{Kind: "bit-field", RawName: rawName, RawType: rawType}
	}

	return Decomposed{
		Name:     name,
		Type:     typ,
		Array:    nameArray + typeArray,
		Bitfield: nameBits + typeBits,
	}, nil
}

// Undecorate strips const and pointer markers: "const float*" -> "float".
func Undecorate(t string) string {
	return strings.Trim(strings.ReplaceAll(t, "const", ""), "* ")
}

// PointerDepth counts the pointer markers in t.
func PointerDepth(t string) int {
	return strings.Count(t, "*")
}
