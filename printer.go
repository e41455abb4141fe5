// printer.go — user-facing value rendering.
//
// Two flavours, matching the usual str/repr split:
//   - FormatValue: repr-style, used by the REPL and fixtures. Strings are
//     quoted; containers render their elements repr-style.
//   - Display: str-style, used by `print` and `str`. A top-level string is
//     rendered bare; everything else matches FormatValue.
package pithon

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatValue renders v repr-style.
func FormatValue(v Value) string {
	switch v.Tag {
	case VTNone:
		return "None"
	case VTBool:
		if v.Data.(bool) {
			return "True"
		}
		return "False"
	case VTNumber:
		return strconv.FormatFloat(v.Data.(float64), 'g', -1, 64)
	case VTString:
		return quoteString(v.Data.(string))
	case VTList:
		return renderSeq(v.Data.(*ListObject).Elems, "[", "]", false)
	case VTTuple:
		return renderSeq(v.Data.([]Value), "(", ")", true)
	case VTFunction:
		return fmt.Sprintf("<function %s>", v.Data.(*Closure).Def.Name)
	case VTMethod:
		m := v.Data.(*BoundMethod)
		return fmt.Sprintf("<bound method %s.%s>", m.Receiver.Class.Name, m.Fn.Def.Name)
	case VTClass:
		return fmt.Sprintf("<class %s>", v.Data.(*Class).Name)
	case VTObject:
		return fmt.Sprintf("<%s object>", v.Data.(*Object).Class.Name)
	case VTPrimitive:
		return fmt.Sprintf("<built-in function %s>", v.Data.(*Primitive).Name)
	default:
		return "<unknown>"
	}
}

// Display renders v str-style: bare for strings, FormatValue otherwise.
func Display(v Value) string {
	if v.Tag == VTString {
		return v.Data.(string)
	}
	return FormatValue(v)
}

func renderSeq(elems []Value, open, close string, tuple bool) string {
	var b strings.Builder
	b.WriteString(open)
	for i, e := range elems {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(FormatValue(e))
	}
	if tuple && len(elems) == 1 {
		b.WriteString(",")
	}
	b.WriteString(close)
	return b.String()
}

func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}
