package symbols

import (
	"pasres/internal/source"
	"pasres/internal/types"
)

// SymbolKind classifies the semantic meaning of a symbol.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolUnit
	SymbolUnitImport
	SymbolType
	SymbolRoutine
	SymbolProperty
	SymbolVariable
	SymbolConstant
	SymbolParameter
	SymbolTypeParameter
	SymbolEnumElement
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolUnit:
		return "unit"
	case SymbolUnitImport:
		return "unit import"
	case SymbolType:
		return "type"
	case SymbolRoutine:
		return "routine"
	case SymbolProperty:
		return "property"
	case SymbolVariable:
		return "variable"
	case SymbolConstant:
		return "constant"
	case SymbolParameter:
		return "parameter"
	case SymbolTypeParameter:
		return "type parameter"
	case SymbolEnumElement:
		return "enum element"
	default:
		return "invalid"
	}
}

// SymbolFlags encode misc attributes for quick checks.
type SymbolFlags uint16

const (
	SymbolFlagBuiltin SymbolFlags = 1 << iota
	// SymbolFlagClass marks class (static) members.
	SymbolFlagClass
	// SymbolFlagField marks variables declared inside a structured type.
	SymbolFlagField
	// SymbolFlagForward marks a type parameter awaiting its constraints.
	SymbolFlagForward
	// SymbolFlagImplementation marks unit declarations outside the interface section.
	SymbolFlagImplementation
)

// Strings returns a slice of textual flag labels.
func (f SymbolFlags) Strings() []string {
	if f == 0 {
		return nil
	}
	labels := make([]string, 0, 4)
	if f&SymbolFlagBuiltin != 0 {
		labels = append(labels, "builtin")
	}
	if f&SymbolFlagClass != 0 {
		labels = append(labels, "class")
	}
	if f&SymbolFlagField != 0 {
		labels = append(labels, "field")
	}
	if f&SymbolFlagForward != 0 {
		labels = append(labels, "forward")
	}
	if f&SymbolFlagImplementation != 0 {
		labels = append(labels, "implementation")
	}
	return labels
}

// Visibility is the declared access level of a member. Order matters:
// higher values are visible from more places.
type Visibility uint8

const (
	VisStrictPrivate Visibility = iota
	VisPrivate
	VisStrictProtected
	VisProtected
	VisPublic
	VisPublished
)

func (v Visibility) String() string {
	switch v {
	case VisStrictPrivate:
		return "strict private"
	case VisPrivate:
		return "private"
	case VisStrictProtected:
		return "strict protected"
	case VisProtected:
		return "protected"
	case VisPublished:
		return "published"
	default:
		return "public"
	}
}

// Symbol describes a named entity available in a scope. Kind-specific data
// lives in the optional info pointers.
type Symbol struct {
	Name       source.StringID
	Kind       SymbolKind
	Scope      ScopeID
	Unit       SymbolID
	Span       source.Span
	Flags      SymbolFlags
	Visibility Visibility
	// Type is the Typed capability: the declared type of variables, constants,
	// parameters, properties and enum elements, the described type of type
	// symbols and the result type of routines.
	Type types.TypeID
	// Owner is the struct type declaring a member.
	Owner types.TypeID
	// Members is the member scope of struct types and the top scope of units.
	Members ScopeID

	Routine   *RoutineInfo   `msgpack:",omitempty"`
	Property  *PropertyInfo  `msgpack:",omitempty"`
	Import    *ImportInfo    `msgpack:",omitempty"`
	TypeParam *TypeParamInfo `msgpack:",omitempty"`
}

// Typed reports whether the symbol carries a type.
func (s *Symbol) Typed() bool {
	return s != nil && s.Type.IsValid()
}

// Invocable reports whether the symbol can be called: routines and indexed properties.
func (s *Symbol) Invocable() bool {
	if s == nil {
		return false
	}
	switch s.Kind {
	case SymbolRoutine:
		return s.Routine != nil
	case SymbolProperty:
		return s.Property != nil && len(s.Property.Params) > 0
	default:
		return false
	}
}

// Params returns the parameters of an invocable symbol.
func (s *Symbol) Params() []Param {
	switch {
	case s == nil:
		return nil
	case s.Routine != nil:
		return s.Routine.Params
	case s.Property != nil:
		return s.Property.Params
	default:
		return nil
	}
}

// Generic reports whether the symbol declares its own type parameters.
func (s *Symbol) Generic() bool {
	return s != nil && s.Routine != nil && len(s.Routine.TypeParams) > 0
}

// IsClassMember reports whether the symbol is a class member or constructor.
func (s *Symbol) IsClassMember() bool {
	return s != nil && s.Flags&SymbolFlagClass != 0
}
