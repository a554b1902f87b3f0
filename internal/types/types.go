package types

import (
	"fmt"

	"pasres/internal/source"
)

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// IsValid reports whether the id refers to an interned type.
func (id TypeID) IsValid() bool { return id != NoTypeID }

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	// KindUnknown is the terminal sentinel: inference stops silently on it.
	KindUnknown
	// KindUntyped is the type of untyped formal parameters (`var X`, `const X`).
	KindUntyped
	KindNil
	KindVoid
	KindInteger
	KindDecimal
	KindChar
	KindText
	KindBoolean
	KindEnum
	KindArray
	KindSet
	KindProcedural
	KindStruct
	KindClassRef
	KindFile
	KindPointer
	KindVariant
	KindTypeParam
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindUnknown:
		return "unknown"
	case KindUntyped:
		return "untyped"
	case KindNil:
		return "nil"
	case KindVoid:
		return "void"
	case KindInteger:
		return "integer"
	case KindDecimal:
		return "decimal"
	case KindChar:
		return "char"
	case KindText:
		return "text"
	case KindBoolean:
		return "boolean"
	case KindEnum:
		return "enum"
	case KindArray:
		return "array"
	case KindSet:
		return "set"
	case KindProcedural:
		return "procedural"
	case KindStruct:
		return "struct"
	case KindClassRef:
		return "class reference"
	case KindFile:
		return "file"
	case KindPointer:
		return "pointer"
	case KindVariant:
		return "variant"
	case KindTypeParam:
		return "type parameter"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Sub-kinds live in Type.Sub; their meaning depends on Kind.

// DecimalKind distinguishes floating-point and fixed-point types.
type DecimalKind uint8

const (
	DecSingle DecimalKind = iota
	DecReal48
	DecDouble
	DecExtended
	DecComp
	DecCurrency
)

// CharKind distinguishes one-byte and two-byte characters.
type CharKind uint8

const (
	CharAnsi CharKind = iota
	CharWide
)

// TextKind distinguishes string flavours.
type TextKind uint8

const (
	TextShort TextKind = iota
	TextAnsi
	TextWide
	TextUnicode
)

// BoolKind distinguishes Boolean and the C-compatible boolean types.
type BoolKind uint8

const (
	BoolBoolean BoolKind = iota
	BoolByte
	BoolWord
	BoolLong
)

// ArrayKind distinguishes array shapes.
type ArrayKind uint8

const (
	ArrayFixed ArrayKind = iota
	ArrayDynamic
	ArrayOpen
	// ArrayOfConst is `array of const`: accepts any array constructor.
	ArrayOfConst
	// ArrayConstructor is the type of a `[a, b, c]` literal.
	ArrayConstructor
)

// ProcKind distinguishes procedural type flavours.
type ProcKind uint8

const (
	ProcPlain ProcKind = iota
	ProcOfObject
	ProcReference
)

// StructKind distinguishes structured types.
type StructKind uint8

const (
	StructClass StructKind = iota
	StructRecord
	StructObject
	StructInterface
	StructClassHelper
	StructRecordHelper
)

// IsHelper reports whether the struct kind extends another type.
func (k StructKind) IsHelper() bool {
	return k == StructClassHelper || k == StructRecordHelper
}

func (k StructKind) String() string {
	switch k {
	case StructClass:
		return "class"
	case StructRecord:
		return "record"
	case StructObject:
		return "object"
	case StructInterface:
		return "interface"
	case StructClassHelper:
		return "class helper"
	case StructRecordHelper:
		return "record helper"
	default:
		return fmt.Sprintf("StructKind(%d)", k)
	}
}

// VariantKind distinguishes Variant and OleVariant.
type VariantKind uint8

const (
	VariantNormal VariantKind = iota
	VariantOle
)

// Flags carries boolean attributes that participate in type identity.
type Flags uint8

const (
	// FlagLiteral marks the type of an untyped constant literal.
	FlagLiteral Flags = 1 << iota
	// FlagPointerMath enables pointer arithmetic and indexing on a pointer.
	FlagPointerMath
	// FlagSubrange marks an ordinal subrange of Elem.
	FlagSubrange
)

// Type is a compact descriptor for any supported type. All fields are
// comparable so the descriptor doubles as its own interning key.
type Type struct {
	Kind Kind
	Sub  uint8
	// Name is set for named distinct types: builtins and strong aliases.
	Name  source.StringID
	Elem  TypeID
	Index TypeID // index type of fixed arrays
	Low   Bound
	High  Bound
	Size  uint8
	Flags Flags
	// Payload indexes the kind's side table (procs, structs, enums, type params).
	Payload uint32
}

// Has reports whether all bits of f are set.
func (t Type) Has(f Flags) bool { return t.Flags&f == f }

// IsOrdinal reports whether values of t have an ordinal position.
func (t Type) IsOrdinal() bool {
	switch t.Kind {
	case KindInteger, KindChar, KindBoolean, KindEnum:
		return true
	default:
		return false
	}
}

// Descriptor helpers ---------------------------------------------------------

// MakeInteger describes an integer range occupying size bytes.
func MakeInteger(low, high Bound, size uint8) Type {
	return Type{Kind: KindInteger, Low: low, High: high, Size: size}
}

// MakeArray describes a dynamic, open, array-of-const or constructor array.
func MakeArray(elem TypeID, kind ArrayKind) Type {
	return Type{Kind: KindArray, Sub: uint8(kind), Elem: elem}
}

// MakeFixedArray describes `array[index] of elem`.
func MakeFixedArray(elem, index TypeID, low, high Bound) Type {
	return Type{Kind: KindArray, Sub: uint8(ArrayFixed), Elem: elem, Index: index, Low: low, High: high}
}

// MakeSet describes `set of elem`.
func MakeSet(elem TypeID) Type {
	return Type{Kind: KindSet, Elem: elem}
}

// MakePointer describes a typed pointer; elem == NoTypeID yields an untyped pointer.
func MakePointer(elem TypeID, pointerMath bool) Type {
	t := Type{Kind: KindPointer, Elem: elem}
	if pointerMath {
		t.Flags |= FlagPointerMath
	}
	return t
}

// MakeClassRef describes `class of elem`.
func MakeClassRef(elem TypeID) Type {
	return Type{Kind: KindClassRef, Elem: elem}
}

// MakeFile describes `file of elem`; elem == NoTypeID yields an untyped file.
func MakeFile(elem TypeID) Type {
	return Type{Kind: KindFile, Elem: elem}
}
