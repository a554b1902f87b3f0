package sema

import (
	"pasres/internal/types"
)

// elementLevel compares constructor or array elements. The element type of
// an empty constructor is Untyped and fits anything.
func (c *Comparer) elementLevel(from, to types.TypeID, depth int) EqualityType {
	if c.types.Kind(from) == types.KindUntyped {
		return Equal
	}
	return c.compare(from, to, depth+1)
}

func (c *Comparer) toArray(ft, tt types.Type, depth int) EqualityType {
	if ft.Kind != types.KindArray {
		return Incompatible
	}
	from, to := types.ArrayKind(ft.Sub), types.ArrayKind(tt.Sub)
	switch to {
	case types.ArrayOpen:
		level := c.elementLevel(ft.Elem, tt.Elem, depth)
		if from == types.ArrayConstructor {
			return minLevel(level, Equal)
		}
		if level >= Equal {
			return Equal
		}
	case types.ArrayOfConst:
		if from == types.ArrayConstructor || from == types.ArrayOfConst {
			return Equal
		}
	case types.ArrayDynamic:
		if from == types.ArrayConstructor && c.elementLevel(ft.Elem, tt.Elem, depth) > Incompatible {
			return ConvertLevel1
		}
	}
	// fixed arrays and distinct dynamic arrays are identical-only
	return Incompatible
}

func (c *Comparer) toSet(ft, tt types.Type, depth int) EqualityType {
	switch ft.Kind {
	case types.KindSet:
		if !ft.Elem.IsValid() || c.types.Underlying(ft.Elem) == c.types.Underlying(tt.Elem) {
			return Equal
		}
	case types.KindArray:
		if types.ArrayKind(ft.Sub) == types.ArrayConstructor && c.elementLevel(ft.Elem, tt.Elem, depth) > Incompatible {
			return ConvertLevel1
		}
	}
	return Incompatible
}

func (c *Comparer) toProcedural(from, to types.TypeID, ft, tt types.Type, depth int) EqualityType {
	if ft.Kind == types.KindPointer {
		if !ft.Elem.IsValid() {
			return ConvertLevel5
		}
		return Incompatible
	}
	if ft.Kind != types.KindProcedural {
		return Incompatible
	}
	fi, ok := c.types.ProcInfo(from)
	if !ok {
		return Incompatible
	}
	ti, ok := c.types.ProcInfo(to)
	if !ok || !c.sameSignature(fi, ti, depth) {
		return Incompatible
	}
	if fi.Kind == ti.Kind {
		return Equal
	}
	if ti.Kind == types.ProcReference {
		return ConvertLevel1
	}
	return Incompatible
}

func (c *Comparer) sameSignature(a, b types.ProcInfo, depth int) bool {
	if len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		if a.Params[i].Mode != b.Params[i].Mode {
			return false
		}
		if c.compare(a.Params[i].Type, b.Params[i].Type, depth+1) < Equal {
			return false
		}
	}
	if a.Result.IsValid() != b.Result.IsValid() {
		return false
	}
	return !a.Result.IsValid() || c.compare(a.Result, b.Result, depth+1) >= Equal
}

// toStruct ranks by inheritance distance; records are identical-only.
func (c *Comparer) toStruct(from, to types.TypeID) EqualityType {
	target, ok := c.types.StructInfo(to)
	if !ok || target.Kind == types.StructRecord {
		return Incompatible
	}
	dist, ok := c.types.SubtypeDistance(from, to)
	if !ok {
		return Incompatible
	}
	if target.Kind == types.StructInterface {
		return ConvertLevel5
	}
	if dist == 0 {
		return Equal
	}
	return convertLevel(min(dist, 5))
}

func (c *Comparer) toPointer(ft, tt types.Type) EqualityType {
	switch ft.Kind {
	case types.KindPointer:
		switch {
		case ft.Elem == tt.Elem:
			return Equal
		case !tt.Elem.IsValid():
			return ConvertLevel1
		case !ft.Elem.IsValid():
			return ConvertLevel2
		}
	case types.KindText:
		if c.types.Kind(tt.Elem) == types.KindChar {
			return ConvertLevel5
		}
	}
	return Incompatible
}

func (c *Comparer) toFile(ft, tt types.Type) EqualityType {
	if ft.Kind != types.KindFile {
		return Incompatible
	}
	if ft.Elem == tt.Elem {
		return Equal
	}
	if !tt.Elem.IsValid() {
		return ConvertLevel1
	}
	return Incompatible
}
