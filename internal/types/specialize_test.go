package types

import (
	"errors"
	"testing"

	"pasres/internal/source"
)

func genericList(t *testing.T) (*Interner, *source.Interner, TypeID, TypeID) {
	t.Helper()
	strs := source.NewInterner()
	in := NewInterner(strs)
	param := in.RegisterTypeParam(strs.Intern("T"), nil)
	list := in.RegisterStruct(StructInfo{
		Name:       strs.Intern("TList"),
		Kind:       StructClass,
		TypeParams: []TypeID{param},
	})
	return in, strs, list, param
}

func TestSpecializeMemoizes(t *testing.T) {
	in, _, list, _ := genericList(t)
	b := in.Builtins()
	s1, err := in.Specialize(list, []TypeID{b.Integer})
	if err != nil {
		t.Fatalf("specialize: %v", err)
	}
	s2, _ := in.Specialize(list, []TypeID{b.Integer})
	if s1 != s2 {
		t.Fatalf("specializations must be memoized")
	}
	if in.Origin(s1) != list {
		t.Fatalf("origin must point at the definition")
	}
	if got := Label(in, s1); got != "TList<Integer>" {
		t.Fatalf("unexpected label %q", got)
	}
	if _, err := in.Specialize(list, []TypeID{b.Integer, b.Byte}); !errors.Is(err, ErrArity) {
		t.Fatalf("expected arity error, got %v", err)
	}
}

func TestSubstituteThroughShapes(t *testing.T) {
	in, _, list, param := genericList(t)
	b := in.Builtins()
	arr := in.Intern(MakeArray(param, ArrayDynamic))
	proc := in.RegisterProc(ProcInfo{Params: []Param{{Type: param}}, Result: arr})
	subst := Subst{param: b.Word}

	gotArr := in.Substitute(arr, subst)
	if gotArr != in.Intern(MakeArray(b.Word, ArrayDynamic)) {
		t.Fatalf("array element not substituted")
	}
	info, _ := in.ProcInfo(in.Substitute(proc, subst))
	if info.Params[0].Type != b.Word || info.Result != gotArr {
		t.Fatalf("procedural type not substituted: %+v", info)
	}
	spec := in.Substitute(list, subst)
	want, _ := in.Specialize(list, []TypeID{b.Word})
	if spec != want {
		t.Fatalf("definition must specialize under substitution")
	}
	if !in.ContainsTypeParam(arr) || in.ContainsTypeParam(gotArr) {
		t.Fatalf("ContainsTypeParam misreports")
	}
}

func TestSubtypeDistance(t *testing.T) {
	strs := source.NewInterner()
	in := NewInterner(strs)
	iface := in.RegisterStruct(StructInfo{Name: strs.Intern("IFoo"), Kind: StructInterface})
	base := in.RegisterStruct(StructInfo{Name: strs.Intern("TBase"), Kind: StructClass})
	mid := in.RegisterStruct(StructInfo{Name: strs.Intern("TMid"), Kind: StructClass, Super: base, Interfaces: []TypeID{iface}})
	leaf := in.RegisterStruct(StructInfo{Name: strs.Intern("TLeaf"), Kind: StructClass, Super: mid})
	helper := in.RegisterStruct(StructInfo{Name: strs.Intern("TMidHelper"), Kind: StructClassHelper, Extended: mid})

	if d, ok := in.SubtypeDistance(leaf, base); !ok || d != 2 {
		t.Fatalf("leaf->base distance = %d,%v", d, ok)
	}
	if _, ok := in.SubtypeDistance(base, leaf); ok {
		t.Fatalf("base must not descend from leaf")
	}
	if d, ok := in.SubtypeDistance(leaf, iface); !ok || d != 2 {
		t.Fatalf("leaf->iface distance = %d,%v", d, ok)
	}
	if !in.Extends(helper, leaf) || in.Extends(helper, base) {
		t.Fatalf("helper extension misreported")
	}
}
