package types

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrArity reports a specialization with the wrong number of type arguments.
var ErrArity = errors.New("type argument count mismatch")

// Subst maps type parameters to their bound arguments.
type Subst map[TypeID]TypeID

func specKey(generic TypeID, args []TypeID) string {
	var sb strings.Builder
	sb.WriteString(strconv.FormatUint(uint64(generic), 10))
	for _, a := range args {
		sb.WriteByte(',')
		sb.WriteString(strconv.FormatUint(uint64(a), 10))
	}
	return sb.String()
}

// Specialize instantiates a generic struct definition with args. The result
// is memoized, so equal argument lists yield the same TypeID.
func (in *Interner) Specialize(generic TypeID, args []TypeID) (TypeID, error) {
	def, ok := in.StructInfo(generic)
	if !ok || len(def.TypeParams) == 0 {
		return NoTypeID, fmt.Errorf("specialize %d: not a generic type", generic)
	}
	if len(def.TypeParams) != len(args) {
		return NoTypeID, fmt.Errorf("specialize %s: %w (want %d, got %d)",
			Label(in, generic), ErrArity, len(def.TypeParams), len(args))
	}
	key := specKey(generic, args)
	in.mu.RLock()
	id, ok := in.specs[key]
	in.mu.RUnlock()
	if ok {
		return id, nil
	}

	subst := make(Subst, len(args))
	for i, p := range def.TypeParams {
		subst[p] = args[i]
	}
	super := in.Substitute(def.Super, subst)
	ifaces := make([]TypeID, len(def.Interfaces))
	for i, it := range def.Interfaces {
		ifaces[i] = in.Substitute(it, subst)
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	if id, ok := in.specs[key]; ok {
		return id, nil
	}
	id = in.registerStructLocked(StructInfo{
		Name:       def.Name,
		Kind:       def.Kind,
		Super:      super,
		Interfaces: ifaces,
		Extended:   def.Extended,
		Generic:    generic,
		TypeArgs:   cloneIDs(args),
	})
	in.specs[key] = id
	return id, nil
}

// Origin returns the generic definition of a specialization, or id itself.
func (in *Interner) Origin(id TypeID) TypeID {
	if info, ok := in.StructInfo(id); ok && info.Generic.IsValid() {
		return info.Generic
	}
	return id
}

// SubstOf returns the substitution carried by a specialization.
func (in *Interner) SubstOf(id TypeID) Subst {
	info, ok := in.StructInfo(id)
	if !ok || !info.Generic.IsValid() {
		return nil
	}
	def, ok := in.StructInfo(info.Generic)
	if !ok || len(def.TypeParams) != len(info.TypeArgs) {
		return nil
	}
	subst := make(Subst, len(def.TypeParams))
	for i, p := range def.TypeParams {
		subst[p] = info.TypeArgs[i]
	}
	return subst
}

// Substitute replaces type parameters inside id according to subst.
func (in *Interner) Substitute(id TypeID, subst Subst) TypeID {
	if len(subst) == 0 || !id.IsValid() {
		return id
	}
	return in.substitute(id, subst, 0)
}

func (in *Interner) substitute(id TypeID, subst Subst, depth int) TypeID {
	if depth > 32 || !id.IsValid() {
		return id
	}
	if bound, ok := subst[id]; ok {
		return bound
	}
	tt, ok := in.Lookup(id)
	if !ok {
		return id
	}
	switch tt.Kind {
	case KindArray, KindSet, KindPointer, KindClassRef, KindFile:
		if !tt.Elem.IsValid() {
			return id
		}
		elem := in.substitute(tt.Elem, subst, depth+1)
		index := in.substitute(tt.Index, subst, depth+1)
		if elem == tt.Elem && index == tt.Index {
			return id
		}
		tt.Elem, tt.Index = elem, index
		tt.Name = 0
		return in.Intern(tt)
	case KindProcedural:
		info, ok := in.ProcInfo(id)
		if !ok {
			return id
		}
		changed := false
		for i := range info.Params {
			next := in.substitute(info.Params[i].Type, subst, depth+1)
			changed = changed || next != info.Params[i].Type
			info.Params[i].Type = next
		}
		res := in.substitute(info.Result, subst, depth+1)
		changed = changed || res != info.Result
		info.Result = res
		if !changed {
			return id
		}
		return in.RegisterProc(info)
	case KindStruct:
		info, ok := in.StructInfo(id)
		if !ok {
			return id
		}
		var args []TypeID
		var generic TypeID
		switch {
		case info.Generic.IsValid():
			generic, args = info.Generic, info.TypeArgs
		case len(info.TypeParams) > 0:
			// the bare definition names its own parameters
			generic, args = id, info.TypeParams
		default:
			return id
		}
		next := make([]TypeID, len(args))
		changed := false
		for i, a := range args {
			next[i] = in.substitute(a, subst, depth+1)
			changed = changed || next[i] != a
		}
		if !changed {
			return id
		}
		spec, err := in.Specialize(generic, next)
		if err != nil {
			return id
		}
		return spec
	default:
		return id
	}
}

// ContainsTypeParam reports whether id mentions a type parameter.
func (in *Interner) ContainsTypeParam(id TypeID) bool {
	return in.containsTypeParam(id, 0)
}

func (in *Interner) containsTypeParam(id TypeID, depth int) bool {
	if depth > 32 || !id.IsValid() {
		return false
	}
	tt, ok := in.Lookup(id)
	if !ok {
		return false
	}
	switch tt.Kind {
	case KindTypeParam:
		return true
	case KindArray, KindSet, KindPointer, KindClassRef, KindFile:
		return in.containsTypeParam(tt.Elem, depth+1) || in.containsTypeParam(tt.Index, depth+1)
	case KindProcedural:
		info, _ := in.ProcInfo(id)
		for _, p := range info.Params {
			if in.containsTypeParam(p.Type, depth+1) {
				return true
			}
		}
		return in.containsTypeParam(info.Result, depth+1)
	case KindStruct:
		info, _ := in.StructInfo(id)
		for _, a := range info.TypeArgs {
			if in.containsTypeParam(a, depth+1) {
				return true
			}
		}
	}
	return false
}
