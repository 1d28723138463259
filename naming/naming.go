// Package naming formats identifiers and literals for generated C++ code.
package naming

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/chazu/vkgen/metadata"
)

var (
	camelBoundaryRe = regexp.MustCompile(`([a-z])([A-Z])`)
	dimensionRe     = regexp.MustCompile(`([0-9])D`)
)

// VersionSuffix returns "_V<n>" for versions above zero, "" otherwise.
func VersionSuffix(version int) string {
	if version <= 0 {
		return ""
	}
	return "_V" + strconv.Itoa(version)
}

// ID converts a function name to its token identifier.
// e.g., ("vkCmdDraw", 0) → "ID_VK_CMD_DRAW",
// ("vkCmdCopyImageToBuffer2", 1) → "ID_VK_CMD_COPY_IMAGE_TO_BUFFER2_V1",
// ("vkCmdSetViewportWScalingNV", 0) → "ID_VK_CMD_SET_VIEWPORT_WSCALING_NV"
func ID(name string, version int) string {
	id := camelBoundaryRe.ReplaceAllString(name, "${1}_${2}")
	id = dimensionRe.ReplaceAllString(id, "_${1}D_")
	id = strings.ToUpper(strings.TrimRight(id, "_"))
	return "ID_" + id + VersionSuffix(version)
}

// CName returns the recorder class name of a function version,
// e.g. ("vkCmdDraw", 1) → "CvkCmdDraw_V1".
func CName(name string, version int) string {
	return "C" + name + VersionSuffix(version)
}

// Hex formats v as a C hex literal. Negative values are written as the
// negated literal of the absolute value: -19 → "-(0x13)".
func Hex(v int64) string {
	if v < 0 {
		// -v overflows for MinInt64; format the magnitude as unsigned.
		return fmt.Sprintf("-(0x%x)", uint64(-(v+1))+1)
	}
	return fmt.Sprintf("0x%x", v)
}

// FuncTypeFlags joins the recorder API type flags of a function,
// e.g. "GITS_VULKAN_PARAM_APITYPE | GITS_VULKAN_QUEUE_SUBMIT_APITYPE".
func FuncTypeFlags(types []string) string {
	flags := make([]string, len(types))
	for i, t := range types {
		flags[i] = "GITS_VULKAN_" + t + "_APITYPE"
	}
	return strings.Join(flags, " | ")
}

// InheritType returns the recorder base class for a function with the given
// type flags. A function can only derive from one class.
func InheritType(types []string) (string, error) {
	if len(types) > 1 {
		return "", fmt.Errorf("function has %d types (%s), unclear what to inherit from",
			len(types), strings.Join(types, ", "))
	}
	if len(types) == 0 {
		return "CFunction", nil
	}
	switch types[0] {
	case metadata.TypeCreateBuffer:
		return "CBufferFunction", nil
	case metadata.TypeCreateImage:
		return "CImageFunction", nil
	case metadata.TypeQueueSubmit:
		return "CQueueSubmitFunction", nil
	}
	return "CFunction", nil
}
