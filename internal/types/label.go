package types

import (
	"strings"

	"pasres/internal/source"
)

// Label returns a user-friendly label for a TypeID.
func Label(typesIn *Interner, id TypeID) string {
	return labelDepth(typesIn, id, 0)
}

func labelDepth(typesIn *Interner, id TypeID, depth int) string {
	if id == NoTypeID || typesIn == nil {
		return "?"
	}
	if depth > 6 {
		return "..."
	}
	tt, ok := typesIn.Lookup(id)
	if !ok {
		return "?"
	}
	if tt.Name != 0 && typesIn.strings != nil {
		if name, ok := typesIn.strings.Lookup(tt.Name); ok {
			return name
		}
	}
	switch tt.Kind {
	case KindUnknown:
		return "<unknown>"
	case KindUntyped:
		return "<untyped>"
	case KindNil:
		return "nil"
	case KindVoid:
		return "<void>"
	case KindInteger:
		if tt.Has(FlagLiteral) {
			return "integer literal"
		}
		return tt.Low.String() + ".." + tt.High.String()
	case KindDecimal:
		return "real literal"
	case KindChar:
		if tt.Has(FlagSubrange) {
			return labelDepth(typesIn, tt.Elem, depth+1) + " subrange"
		}
		return "char literal"
	case KindText:
		return "string literal"
	case KindBoolean:
		return "boolean subrange"
	case KindEnum:
		if tt.Has(FlagSubrange) {
			return labelDepth(typesIn, tt.Elem, depth+1) + "[" + tt.Low.String() + ".." + tt.High.String() + "]"
		}
		info, _ := typesIn.EnumInfo(id)
		return typesIn.nameOf(info.Name, "enum")
	case KindArray:
		elem := labelDepth(typesIn, tt.Elem, depth+1)
		switch ArrayKind(tt.Sub) {
		case ArrayFixed:
			return "array[" + tt.Low.String() + ".." + tt.High.String() + "] of " + elem
		case ArrayOfConst:
			return "array of const"
		case ArrayConstructor:
			return "[" + elem + "]"
		default:
			return "array of " + elem
		}
	case KindSet:
		return "set of " + labelDepth(typesIn, tt.Elem, depth+1)
	case KindProcedural:
		return labelProc(typesIn, id, depth)
	case KindStruct:
		return labelStruct(typesIn, id, depth)
	case KindClassRef:
		return "class of " + labelDepth(typesIn, tt.Elem, depth+1)
	case KindFile:
		if !tt.Elem.IsValid() {
			return "file"
		}
		return "file of " + labelDepth(typesIn, tt.Elem, depth+1)
	case KindPointer:
		if !tt.Elem.IsValid() {
			return "Pointer"
		}
		return "^" + labelDepth(typesIn, tt.Elem, depth+1)
	case KindVariant:
		return "Variant"
	case KindTypeParam:
		info, _ := typesIn.TypeParamInfo(id)
		return typesIn.nameOf(info.Name, "T")
	default:
		return tt.Kind.String()
	}
}

func (in *Interner) nameOf(id source.StringID, fallback string) string {
	if id == source.NoStringID || in.strings == nil {
		return fallback
	}
	name, ok := in.strings.Lookup(id)
	if !ok {
		return fallback
	}
	return name
}

func labelProc(typesIn *Interner, id TypeID, depth int) string {
	info, ok := typesIn.ProcInfo(id)
	if !ok {
		return "procedure"
	}
	var sb strings.Builder
	if info.Kind == ProcReference {
		sb.WriteString("reference to ")
	}
	if info.Result.IsValid() {
		sb.WriteString("function")
	} else {
		sb.WriteString("procedure")
	}
	if len(info.Params) > 0 {
		sb.WriteByte('(')
		for i, p := range info.Params {
			if i > 0 {
				sb.WriteString("; ")
			}
			if m := p.Mode.String(); m != "" {
				sb.WriteString(m)
				sb.WriteByte(' ')
			}
			sb.WriteString(labelDepth(typesIn, p.Type, depth+1))
		}
		sb.WriteByte(')')
	}
	if info.Result.IsValid() {
		sb.WriteString(": ")
		sb.WriteString(labelDepth(typesIn, info.Result, depth+1))
	}
	if info.Kind == ProcOfObject {
		sb.WriteString(" of object")
	}
	return sb.String()
}

func labelStruct(typesIn *Interner, id TypeID, depth int) string {
	info, ok := typesIn.StructInfo(id)
	if !ok {
		return "struct"
	}
	name := typesIn.nameOf(info.Name, info.Kind.String())
	args := info.TypeArgs
	if len(args) == 0 {
		args = info.TypeParams
	}
	if len(args) == 0 {
		return name
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = labelDepth(typesIn, a, depth+1)
	}
	return name + "<" + strings.Join(parts, ", ") + ">"
}
