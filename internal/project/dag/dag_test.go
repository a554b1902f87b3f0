package dag

import (
	"testing"

	"pasres/internal/diag"
	"pasres/internal/source"
	"pasres/internal/symbols"
)

func batchesToNames(idx UnitIndex, batches [][]UnitID) [][]string {
	out := make([][]string, len(batches))
	for i, batch := range batches {
		for _, id := range batch {
			out[i] = append(out[i], idx.IDToName[int(id)])
		}
	}
	return out
}

func TestBuildIndexFoldsNames(t *testing.T) {
	nodes := []UnitNode{
		{Name: "Main", Uses: []Use{{Name: "CLASSES"}}},
		{Name: "Classes"},
	}
	idx := BuildIndex(nodes)
	if len(idx.IDToName) != 2 {
		t.Fatalf("index = %v, want 2 names", idx.IDToName)
	}
	if _, ok := idx.Lookup("classes"); !ok {
		t.Fatalf("lookup must ignore case")
	}
}

func TestToposortKahnBatches(t *testing.T) {
	nodes := []UnitNode{
		{Name: "b", Uses: []Use{{Name: "c"}}},
		{Name: "a"},
		{Name: "c"},
	}
	idx := BuildIndex(nodes)
	graph, _ := BuildGraph(idx, nodes)

	topo := ToposortKahn(graph)
	if topo.Cyclic {
		t.Fatalf("expected acyclic graph")
	}
	batches := batchesToNames(idx, topo.Batches)
	want := [][]string{{"a", "b"}, {"c"}}
	if len(batches) != len(want) {
		t.Fatalf("batches = %v, want %v", batches, want)
	}
	for i := range want {
		if len(batches[i]) != len(want[i]) {
			t.Fatalf("batch[%d] = %v, want %v", i, batches[i], want[i])
		}
		for j := range want[i] {
			if batches[i][j] != want[i][j] {
				t.Fatalf("batch[%d][%d] = %q, want %q", i, j, batches[i][j], want[i][j])
			}
		}
	}
}

func TestReportCycles(t *testing.T) {
	spanA := source.Span{File: 1, Start: 0, End: 4}
	spanB := source.Span{File: 2, Start: 0, End: 4}
	bagA := diag.NewBag(10)
	bagB := diag.NewBag(10)
	nodes := []UnitNode{
		{Name: "A", Span: spanA, Uses: []Use{{Name: "B", Span: spanA}}, Reporter: diag.BagReporter{Bag: bagA}},
		{Name: "B", Span: spanB, Uses: []Use{{Name: "A", Span: spanB}}, Reporter: diag.BagReporter{Bag: bagB}},
	}
	idx := BuildIndex(nodes)
	graph, slots := BuildGraph(idx, nodes)

	topo := ToposortKahn(graph)
	if !topo.Cyclic || len(topo.Cycles) != 2 {
		t.Fatalf("expected cycle with two units, got %+v", topo)
	}
	ReportCycles(idx, slots, topo)
	if bagA.Len() != 1 || !bagA.Has(diag.TblUsesCycle) {
		t.Fatalf("unit A diagnostics = %v", bagA.Items())
	}
	if bagB.Len() != 1 || !bagB.Has(diag.TblUsesCycle) {
		t.Fatalf("unit B diagnostics = %v", bagB.Items())
	}
}

func TestReportBrokenDeps(t *testing.T) {
	bag := diag.NewBag(10)
	first := diag.NewError(diag.ResAmbiguousName, source.Span{File: 2}, "ambiguous")
	nodes := []UnitNode{
		{Name: "Main", Uses: []Use{{Name: "Lib"}, {Name: "lib"}}, Reporter: diag.BagReporter{Bag: bag}},
		{Name: "Lib", Broken: true, FirstErr: &first},
	}
	idx := BuildIndex(nodes)
	_, slots := BuildGraph(idx, nodes)
	ReportBrokenDeps(idx, slots)
	if bag.Len() != 1 || !bag.Has(diag.TblDependencyFailed) {
		t.Fatalf("diagnostics = %v", bag.Items())
	}
	if notes := bag.Items()[0].Notes; len(notes) != 1 {
		t.Fatalf("expected a note pointing at the first error, got %v", notes)
	}
}

func TestOrderPutsUsedUnitsFirst(t *testing.T) {
	table := symbols.NewTable(symbols.Hints{}, nil, nil)
	symbols.InstallSystem(table)
	b := symbols.NewBuilder(table, symbols.BuilderOptions{})
	base := b.BeginUnit("Base", source.Span{})
	b.EndUnit()
	mid := b.BeginUnit("Mid", source.Span{})
	b.Uses("Base", source.Span{})
	b.EndUnit()
	top := b.BeginUnit("Top", source.Span{})
	b.Uses("Mid", source.Span{})
	b.Implementation()
	b.Uses("Base", source.Span{})
	b.EndUnit()

	batches := Order(table, nil)
	want := [][]symbols.SymbolID{{base}, {mid}, {top}}
	if len(batches) != len(want) {
		t.Fatalf("batches = %v, want %v", batches, want)
	}
	for i := range want {
		if len(batches[i]) != 1 || batches[i][0] != want[i][0] {
			t.Fatalf("batch[%d] = %v, want %v", i, batches[i], want[i])
		}
	}
}
