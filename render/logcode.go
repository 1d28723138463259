package render

import (
	"fmt"
	"strings"

	"github.com/chazu/vkgen/classify"
)

const (
	fieldSep   = ` << ", " << `
	structsOpt = "isTraceDataOptPresent(TraceData::VK_STRUCTS)"
)

// structLogCode returns the body of the stream operator for a struct:
//
//	*this << "{ sType: " << c.sType << ", pNext: " << ... << " }";
func structLogCode(fields []FieldView, cls *classify.Classifier) string {
	var b strings.Builder
	b.WriteString(`*this << "{" << `)
	for _, f := range fields {
		b.WriteString(fieldLogCode(f, cls))
	}
	out := strings.TrimSuffix(b.String(), fieldSep)
	out += ` << " }";`

	out = strings.ReplaceAll(out, `", " << " `, `", `)
	out = strings.ReplaceAll(out, `"{" << " `, `"{ `)
	return out
}

func fieldLogCode(f FieldView, cls *classify.Classifier) string {
	out := fmt.Sprintf(`" %s: "`, f.Name)
	cast := cls.FlagBitsCast(f.Type)

	switch {
	case f.Name == "pNext":
		return out + ` << (PNextPointerTypeTag)c.pNext` + fieldSep
	case f.Count != "":
		cond := ""
		// Arrays on the stack are never null.
		if f.Array == "" {
			cond += fmt.Sprintf(" && (c.%s != nullptr)", f.Name)
		}
		if f.LogCondition != "" {
			cond += fmt.Sprintf(" && (%s)", f.LogCondition)
		}
		count := f.Count
		if !isDigits(count) {
			count = "c." + count
		}
		out += ";\n"
		out += fmt.Sprintf("  if ((%s)%s) {\n", structsOpt, cond)
		out += "    *this << \"{\";\n"
		out += fmt.Sprintf("    for (uint32_t i = 0; i < (uint32_t)%s; ++i) {\n", count)
		out += fmt.Sprintf("      *this << \" [\" << i << \"]:\" << %sc.%s[i];\n", cast, f.Name)
		out += "    }\n"
		out += "    *this << \" }\";\n"
		out += "  } else {\n"
		out += fmt.Sprintf("    *this << (void*)c.%s;\n", f.Name)
		out += "  }\n"
		return out + `  *this << ", " << `
	}
	return out + fmt.Sprintf(` << %sc.%s`, cast, f.Name) + fieldSep
}

// tokenLogCode returns the stream expression that logs a call's arguments:
//
//	"( VkDevice device=" << device << " )"
func tokenLogCode(args []*ArgView, cls *classify.Classifier) string {
	var logged []*ArgView
	for _, a := range args {
		if a.Type != "void" {
			logged = append(logged, a)
		}
	}
	if len(logged) == 0 {
		return `"( )"`
	}

	var b strings.Builder
	for _, a := range logged {
		countIsPointer := false
		if a.Count != "" {
			for _, other := range logged {
				if strings.Contains(other.Name, a.Count) && strings.Contains(other.Type, "*") {
					countIsPointer = true
				}
			}
		}
		b.WriteString(argLogCode(a, countIsPointer, cls))
	}
	return `"( ` + strings.TrimLeft(b.String(), `", `) + `" )"`
}

func argLogCode(a *ArgView, countIsPointer bool, cls *classify.Classifier) string {
	out := fmt.Sprintf(`", %s %s%s="`, a.Type, a.Name, a.Array)
	cast := cls.FlagBitsCast(a.Type)

	if a.Count == "" {
		return out + fmt.Sprintf(` << %s%s << `, cast, a.Name)
	}

	cond, deref := "", ""
	if a.Array == "" {
		cond = fmt.Sprintf(" && (%s != nullptr)", a.Name)
		if countIsPointer {
			cond += fmt.Sprintf(" && (%s != nullptr)", a.Count)
			deref = "*"
		}
	}
	out += ";\n"
	out += fmt.Sprintf("    if ((%s)%s) {\n", structsOpt, cond)
	out += "      VkLog(TRACE, RAW) << \"{\";\n"
	out += fmt.Sprintf("      for (uint32_t i = 0; i < (uint32_t)%s%s; ++i) {\n", deref, a.Count)
	out += fmt.Sprintf("        VkLog(TRACE, RAW) << \" [\" << i << \"]:\" << %s%s[i];\n", cast, a.Name)
	out += "      }\n"
	out += "      VkLog(TRACE, RAW) << \" }\";\n"
	out += "    } else {\n"
	out += fmt.Sprintf("      VkLog(TRACE, RAW) << %s;\n", a.Name)
	out += "    }\n"
	return out + "    VkLog(TRACE, RAW) << "
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
