package types

import (
	"fmt"
	"slices"

	"fortio.org/safecast"

	"pasres/internal/source"
)

// ParamMode is the passing mode of a routine parameter.
type ParamMode uint8

const (
	ParamValue ParamMode = iota
	ParamConst
	ParamVar
	ParamOut
	ParamConstRef
)

// ByReference reports whether the argument must be an assignable location
// of a compatible type.
func (m ParamMode) ByReference() bool {
	return m == ParamVar || m == ParamOut
}

func (m ParamMode) String() string {
	switch m {
	case ParamConst:
		return "const"
	case ParamVar:
		return "var"
	case ParamOut:
		return "out"
	case ParamConstRef:
		return "const [ref]"
	default:
		return ""
	}
}

// Param describes one parameter of a procedural type.
type Param struct {
	Type       TypeID
	Mode       ParamMode
	HasDefault bool
}

// ProcInfo stores metadata for procedural types.
type ProcInfo struct {
	Kind   ProcKind
	Params []Param
	Result TypeID // NoTypeID for procedures
}

// StructInfo stores metadata for classes, records, objects, interfaces and helpers.
type StructInfo struct {
	Name       source.StringID
	Kind       StructKind
	Super      TypeID
	Interfaces []TypeID
	// Extended is the type a helper extends.
	Extended TypeID
	// TypeParams is set on generic definitions.
	TypeParams []TypeID
	// Generic and TypeArgs are set on specializations.
	Generic  TypeID
	TypeArgs []TypeID
}

// EnumInfo stores metadata for enumerated types.
type EnumInfo struct {
	Name  source.StringID
	Count uint32
}

// TypeParamInfo stores metadata for generic type parameters.
type TypeParamInfo struct {
	Name        source.StringID
	Constraints []TypeID
}

func cloneIDs(ids []TypeID) []TypeID {
	if len(ids) == 0 {
		return nil
	}
	return slices.Clone(ids)
}

func cloneStructInfo(info StructInfo) StructInfo {
	info.Interfaces = cloneIDs(info.Interfaces)
	info.TypeParams = cloneIDs(info.TypeParams)
	info.TypeArgs = cloneIDs(info.TypeArgs)
	return info
}

func slot(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		panic(fmt.Errorf("type side table overflow: %w", err))
	}
	return v
}

// RegisterStruct allocates a nominal struct type and returns its TypeID.
func (in *Interner) RegisterStruct(info StructInfo) TypeID {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.registerStructLocked(info)
}

func (in *Interner) registerStructLocked(info StructInfo) TypeID {
	in.structs = append(in.structs, cloneStructInfo(info))
	return in.internRawLocked(Type{Kind: KindStruct, Sub: uint8(info.Kind), Payload: slot(len(in.structs) - 1)})
}

// StructInfo returns a copy of the struct metadata for id.
func (in *Interner) StructInfo(id TypeID) (StructInfo, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	info := in.structInfoLocked(id)
	if info == nil {
		return StructInfo{}, false
	}
	return cloneStructInfo(*info), true
}

// UpdateStruct applies fn to the struct metadata. The declaration pass uses it
// to fill in ancestors once they are known.
func (in *Interner) UpdateStruct(id TypeID, fn func(*StructInfo)) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	info := in.structInfoLocked(id)
	if info == nil {
		return false
	}
	fn(info)
	return true
}

func (in *Interner) structInfoLocked(id TypeID) *StructInfo {
	if id == NoTypeID || int(id) >= len(in.types) {
		return nil
	}
	tt := in.types[id]
	if tt.Kind != KindStruct || int(tt.Payload) >= len(in.structs) || tt.Payload == 0 {
		return nil
	}
	return &in.structs[tt.Payload]
}

// RegisterEnum allocates a nominal enumerated type with count elements.
func (in *Interner) RegisterEnum(name source.StringID, count uint32) TypeID {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.enums = append(in.enums, EnumInfo{Name: name, Count: count})
	high := Zero
	if count > 0 {
		high = Uint(uint64(count - 1))
	}
	size := uint8(1)
	switch {
	case count > 1<<16:
		size = 4
	case count > 1<<8:
		size = 2
	}
	return in.internRawLocked(Type{Kind: KindEnum, Low: Zero, High: high, Size: size, Payload: slot(len(in.enums) - 1)})
}

// EnumInfo returns the metadata of an enum (or of the base of an enum subrange).
func (in *Interner) EnumInfo(id TypeID) (EnumInfo, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if id == NoTypeID || int(id) >= len(in.types) {
		return EnumInfo{}, false
	}
	tt := in.types[id]
	if tt.Kind != KindEnum || tt.Payload == 0 || int(tt.Payload) >= len(in.enums) {
		return EnumInfo{}, false
	}
	return in.enums[tt.Payload], true
}

// RegisterTypeParam allocates a fresh generic type parameter.
func (in *Interner) RegisterTypeParam(name source.StringID, constraints []TypeID) TypeID {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.params = append(in.params, TypeParamInfo{Name: name, Constraints: cloneIDs(constraints)})
	return in.internRawLocked(Type{Kind: KindTypeParam, Payload: slot(len(in.params) - 1)})
}

// SetConstraints replaces the constraint list of a type parameter.
func (in *Interner) SetConstraints(id TypeID, constraints []TypeID) bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	if id == NoTypeID || int(id) >= len(in.types) || in.types[id].Kind != KindTypeParam {
		return false
	}
	in.params[in.types[id].Payload].Constraints = cloneIDs(constraints)
	return true
}

// TypeParamInfo returns the metadata for a type parameter.
func (in *Interner) TypeParamInfo(id TypeID) (TypeParamInfo, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if id == NoTypeID || int(id) >= len(in.types) || in.types[id].Kind != KindTypeParam {
		return TypeParamInfo{}, false
	}
	info := in.params[in.types[id].Payload]
	info.Constraints = cloneIDs(info.Constraints)
	return info, true
}

// RegisterProc creates or finds a procedural type.
func (in *Interner) RegisterProc(info ProcInfo) TypeID {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.registerProcLocked(info)
}

func (in *Interner) registerProcLocked(info ProcInfo) TypeID {
	key := procKey(info)
	if id, ok := in.procIndex[key]; ok {
		return id
	}
	in.procs = append(in.procs, ProcInfo{Kind: info.Kind, Params: slices.Clone(info.Params), Result: info.Result})
	id := in.internRawLocked(Type{Kind: KindProcedural, Sub: uint8(info.Kind), Payload: slot(len(in.procs) - 1)})
	in.procIndex[key] = id
	return id
}

// ProcInfo retrieves procedural type metadata.
func (in *Interner) ProcInfo(id TypeID) (ProcInfo, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if id == NoTypeID || int(id) >= len(in.types) || in.types[id].Kind != KindProcedural {
		return ProcInfo{}, false
	}
	info := in.procs[in.types[id].Payload]
	info.Params = slices.Clone(info.Params)
	return info, true
}

func procKey(info ProcInfo) string {
	key := fmt.Sprintf("%d:%d", info.Kind, info.Result)
	for _, p := range info.Params {
		key += fmt.Sprintf("|%d/%d/%t", p.Type, p.Mode, p.HasDefault)
	}
	return key
}
