package symbols

import (
	"fmt"

	"fortio.org/safecast"

	"pasres/internal/diag"
	"pasres/internal/source"
	"pasres/internal/types"
)

// BuilderOptions configures builder construction.
type BuilderOptions struct {
	Reporter diag.Reporter
}

// Builder is the declaration-collection API: a front end walks its syntax
// tree and calls Builder to populate the Table. It keeps a scope stack, so
// Begin*/End* calls must nest.
type Builder struct {
	table                 *Table
	reporter              diag.Reporter
	stack                 []ScopeID
	unit                  SymbolID
	visibility            Visibility
	implementation        bool
	scopeMismatchReported map[ScopeID]bool
}

// NewBuilder wires a builder to a table.
func NewBuilder(table *Table, opts BuilderOptions) *Builder {
	return &Builder{
		table:                 table,
		reporter:              opts.Reporter,
		stack:                 make([]ScopeID, 0, 8),
		visibility:            VisPublic,
		scopeMismatchReported: make(map[ScopeID]bool),
	}
}

// Table returns the table being populated.
func (b *Builder) Table() *Table { return b.table }

// CurrentScope returns the scope at the top of the stack.
func (b *Builder) CurrentScope() ScopeID {
	if len(b.stack) == 0 {
		return NoScopeID
	}
	return b.stack[len(b.stack)-1]
}

// CurrentUnit returns the unit being declared.
func (b *Builder) CurrentUnit() SymbolID { return b.unit }

// SetVisibility sets the visibility applied to following member declarations.
func (b *Builder) SetVisibility(v Visibility) { b.visibility = v }

// Implementation switches the current unit to its implementation section.
func (b *Builder) Implementation() { b.implementation = true }

func (b *Builder) enter(kind ScopeKind, span source.Span) ScopeID {
	parent := b.CurrentScope()
	scope := b.table.Scopes.New(kind, parent, span)
	if s := b.table.Scopes.Get(scope); s != nil {
		s.Unit = b.unit
	}
	b.stack = append(b.stack, scope)
	return scope
}

// Leave pops the current scope, validating against the expected one.
func (b *Builder) Leave(expected ScopeID) {
	if len(b.stack) == 0 {
		return
	}
	top := b.stack[len(b.stack)-1]
	if expected.IsValid() && top != expected {
		b.reportScopeMismatch(expected, top)
	}
	b.stack = b.stack[:len(b.stack)-1]
}

// BeginUnit declares a unit and enters its top scope. Unit names may be dotted.
func (b *Builder) BeginUnit(name string, span source.Span) SymbolID {
	b.stack = b.stack[:0]
	b.implementation = false
	b.visibility = VisPublic
	nameID := b.table.Strings.Intern(name)
	sym := Symbol{Name: nameID, Kind: SymbolUnit, Span: span, Visibility: VisPublic}
	id := b.table.Symbols.New(&sym)
	b.unit = id
	scope := b.enter(ScopeUnit, span)
	if s := b.table.Symbols.Get(id); s != nil {
		s.Members = scope
		s.Unit = id
		s.Scope = scope
	}
	b.table.addUnit(id, nameID)
	return id
}

// EndUnit leaves the unit scope.
func (b *Builder) EndUnit() {
	b.stack = b.stack[:0]
	b.unit = NoSymbolID
}

// Uses records a uses-clause entry. The imported unit must already exist.
func (b *Builder) Uses(name string, span source.Span) SymbolID {
	unitScope := b.table.Scopes.Get(b.table.UnitScope(b.unit))
	if unitScope == nil {
		return NoSymbolID
	}
	target := b.table.Unit(name)
	if !target.IsValid() {
		if b.reporter != nil {
			diag.ReportError(b.reporter, diag.TblUnknownUnitImport, span,
				fmt.Sprintf("unit '%s' not found", name)).Emit()
		}
		return NoSymbolID
	}
	nameID := b.table.Strings.Intern(name)
	sym := Symbol{
		Name:       nameID,
		Kind:       SymbolUnitImport,
		Span:       span,
		Visibility: VisPublic,
		Import:     &ImportInfo{Target: target, Scope: b.table.UnitScope(target)},
	}
	id := b.declareAt(b.table.UnitScope(b.unit), &sym)
	unitScope.Imports = append(unitScope.Imports, id)
	return id
}

// DeclareType declares a named type. Struct types get a member scope and are
// recorded as helpers when they extend another type.
func (b *Builder) DeclareType(name string, span source.Span, typ types.TypeID) SymbolID {
	sym := Symbol{Name: b.table.Strings.Intern(name), Kind: SymbolType, Span: span, Type: typ}
	id, ok := b.declare(&sym)
	if !ok {
		return NoSymbolID
	}
	if _, exists := b.table.typeSymbols[typ]; !exists {
		b.table.typeSymbols[typ] = id
	}
	return id
}

// BeginStruct registers a struct type, declares it and enters its member scope.
// Member visibility defaults to public.
func (b *Builder) BeginStruct(name string, span source.Span, info types.StructInfo) (SymbolID, types.TypeID) {
	if info.Name == source.NoStringID {
		info.Name = b.table.Strings.Intern(name)
	}
	typ := b.table.Types.RegisterStruct(info)
	id := b.DeclareType(name, span, typ)
	if info.Kind.IsHelper() {
		if unit := b.table.Scopes.Get(b.table.UnitScope(b.unit)); unit != nil {
			unit.Helpers = append(unit.Helpers, typ)
		}
	}
	scope := b.enter(ScopeType, span)
	if s := b.table.Scopes.Get(scope); s != nil {
		s.Type = typ
	}
	b.table.members[typ] = scope
	if sym := b.table.Symbols.Get(id); sym != nil {
		sym.Members = scope
	}
	b.visibility = VisPublic
	return id, typ
}

// EndStruct leaves the member scope of typ.
func (b *Builder) EndStruct(typ types.TypeID) {
	b.Leave(b.table.members[typ])
	b.visibility = VisPublic
}

// DeclareEnum registers an enumerated type and declares its elements in the
// current scope.
func (b *Builder) DeclareEnum(name string, span source.Span, elements []string) (SymbolID, types.TypeID) {
	count, err := safecast.Conv[uint32](len(elements))
	if err != nil {
		panic(fmt.Errorf("enum %s: %w", name, err))
	}
	typ := b.table.Types.RegisterEnum(b.table.Strings.Intern(name), count)
	id := b.DeclareType(name, span, typ)
	for _, el := range elements {
		sym := Symbol{Name: b.table.Strings.Intern(el), Kind: SymbolEnumElement, Span: span, Type: typ}
		b.declare(&sym)
	}
	return id, typ
}

// DeclareVariable declares a variable, or a field inside a struct scope.
func (b *Builder) DeclareVariable(name string, span source.Span, typ types.TypeID) SymbolID {
	sym := Symbol{Name: b.table.Strings.Intern(name), Kind: SymbolVariable, Span: span, Type: typ}
	id, _ := b.declare(&sym)
	return id
}

// DeclareConstant declares a typed or literal constant.
func (b *Builder) DeclareConstant(name string, span source.Span, typ types.TypeID) SymbolID {
	sym := Symbol{Name: b.table.Strings.Intern(name), Kind: SymbolConstant, Span: span, Type: typ}
	id, _ := b.declare(&sym)
	return id
}

// DeclareRoutine declares a routine or method. Overloads share a name.
func (b *Builder) DeclareRoutine(name string, span source.Span, info RoutineInfo, flags SymbolFlags) SymbolID {
	result := info.Result
	if !result.IsValid() {
		result = b.table.Types.Builtins().Void
	}
	info.Params = append([]Param(nil), info.Params...)
	info.TypeParams = append([]SymbolID(nil), info.TypeParams...)
	sym := Symbol{
		Name:    b.table.Strings.Intern(name),
		Kind:    SymbolRoutine,
		Span:    span,
		Flags:   flags,
		Type:    result,
		Routine: &info,
	}
	if info.Kind == RoutineConstructor {
		sym.Flags |= SymbolFlagClass
	}
	id, _ := b.declare(&sym)
	return id
}

// BeginRoutine enters the body scope of routine and declares its parameters
// (and Result for functions).
func (b *Builder) BeginRoutine(routine SymbolID, span source.Span) ScopeID {
	sym := b.table.Symbols.Get(routine)
	if sym == nil || sym.Routine == nil {
		return NoScopeID
	}
	scope := b.enter(ScopeRoutine, span)
	s := b.table.Scopes.Get(scope)
	s.Routine = routine
	sym.Routine.Body = scope
	for _, p := range sym.Routine.Params {
		param := Symbol{Name: p.Name, Kind: SymbolParameter, Span: p.Span, Type: p.Type}
		b.declare(&param)
	}
	if sym.Routine.Kind == RoutineFunction || sym.Routine.Kind == RoutineOperator {
		res := Symbol{Name: b.table.Strings.Intern("Result"), Kind: SymbolVariable, Span: span, Type: sym.Type}
		b.declare(&res)
	}
	return scope
}

// EndRoutine leaves the body scope.
func (b *Builder) EndRoutine(scope ScopeID) { b.Leave(scope) }

// BeginBlock enters a nested block scope.
func (b *Builder) BeginBlock(span source.Span) ScopeID { return b.enter(ScopeBlock, span) }

// DeclareProperty declares a property. Indexed properties are invocable.
func (b *Builder) DeclareProperty(name string, span source.Span, typ types.TypeID, info PropertyInfo) SymbolID {
	info.Params = append([]Param(nil), info.Params...)
	sym := Symbol{
		Name:     b.table.Strings.Intern(name),
		Kind:     SymbolProperty,
		Span:     span,
		Type:     typ,
		Property: &info,
	}
	id, _ := b.declare(&sym)
	return id
}

// DeclareTypeParameter declares a generic type parameter in the current scope.
// Forward parameters get their constraints later via Table.CompleteTypeParameter.
func (b *Builder) DeclareTypeParameter(name string, span source.Span, constraints []types.TypeID, forward bool) (SymbolID, types.TypeID) {
	nameID := b.table.Strings.Intern(name)
	typ := b.table.Types.RegisterTypeParam(nameID, constraints)
	sym := Symbol{
		Name:      nameID,
		Kind:      SymbolTypeParameter,
		Span:      span,
		Type:      typ,
		TypeParam: &TypeParamInfo{Complete: !forward},
	}
	if forward {
		sym.Flags |= SymbolFlagForward
	}
	id, _ := b.declare(&sym)
	return id, typ
}

// declare installs sym into the current scope.
func (b *Builder) declare(sym *Symbol) (SymbolID, bool) {
	return b.declareChecked(b.CurrentScope(), sym)
}

func (b *Builder) declareChecked(scopeID ScopeID, sym *Symbol) (SymbolID, bool) {
	scope := b.table.Scopes.Get(scopeID)
	if scope == nil {
		return NoSymbolID, false
	}
	folded := b.table.Strings.Fold(sym.Name)
	for _, existingID := range scope.NameIndex[folded] {
		existing := b.table.Symbols.Get(existingID)
		if existing == nil || canShareName(existing.Kind, sym.Kind) {
			continue
		}
		b.reportDuplicateSymbol(sym.Name, sym.Span, existing.Span, existing.Flags)
		return NoSymbolID, false
	}
	return b.declareAt(scopeID, sym), true
}

func (b *Builder) declareAt(scopeID ScopeID, sym *Symbol) SymbolID {
	scope := b.table.Scopes.Get(scopeID)
	if scope == nil {
		return NoSymbolID
	}
	sym.Scope = scopeID
	sym.Unit = b.unit
	if scope.Kind == ScopeType {
		sym.Owner = scope.Type
		sym.Visibility = b.visibility
		if sym.Kind == SymbolVariable {
			sym.Flags |= SymbolFlagField
		}
	} else {
		sym.Visibility = VisPublic
	}
	if scope.Kind == ScopeUnit && b.implementation {
		sym.Flags |= SymbolFlagImplementation
	}
	id := b.table.Symbols.New(sym)
	scope.Symbols = append(scope.Symbols, id)
	folded := b.table.Strings.Fold(sym.Name)
	scope.NameIndex[folded] = append(scope.NameIndex[folded], id)
	return id
}

func canShareName(existing, next SymbolKind) bool {
	return existing == SymbolRoutine && next == SymbolRoutine
}

func (b *Builder) reportDuplicateSymbol(name source.StringID, span, prevSpan source.Span, prevFlags SymbolFlags) {
	if b.reporter == nil {
		return
	}
	nameStr := b.table.Strings.MustLookup(name)
	msg := fmt.Sprintf("duplicate declaration of '%s'", nameStr)
	builder := diag.ReportError(b.reporter, diag.TblDuplicateSymbol, span, msg)
	if builder == nil {
		return
	}
	noteMsg := "previous declaration here"
	if prevFlags&SymbolFlagBuiltin != 0 {
		noteMsg = "built-in declaration here"
	}
	if prevSpan != (source.Span{}) {
		builder.WithNote(prevSpan, noteMsg)
	}
	builder.Emit()
}

func (b *Builder) reportScopeMismatch(expected, actual ScopeID) {
	if b.reporter == nil {
		return
	}
	if actual.IsValid() && b.scopeMismatchReported[actual] {
		return
	}
	if actual.IsValid() {
		b.scopeMismatchReported[actual] = true
	}
	var primary source.Span
	actualLabel := fmt.Sprintf("scope #%d", actual)
	if scope := b.table.Scopes.Get(actual); scope != nil {
		primary = scope.Span
		actualLabel = fmt.Sprintf("%s scope #%d", scope.Kind, actual)
	}
	expectedLabel := "unknown scope"
	if expectedScope := b.table.Scopes.Get(expected); expectedScope != nil {
		expectedLabel = fmt.Sprintf("%s scope #%d", expectedScope.Kind, expected)
	}
	msg := fmt.Sprintf("scope stack mismatch: closing %s while expecting %s", actualLabel, expectedLabel)
	builder := diag.ReportWarning(b.reporter, diag.TblScopeMismatch, primary, msg)
	if builder == nil {
		return
	}
	if expectedScope := b.table.Scopes.Get(expected); expectedScope != nil {
		builder.WithNote(expectedScope.Span, "expected scope declared here")
	}
	builder.Emit()
}
