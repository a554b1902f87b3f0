package dag

import (
	"pasres/internal/diag"
	"pasres/internal/symbols"
)

// FromTable lists the units of table with their interface uses clauses.
// System is implicit and left out; implementation uses may be circular and
// are not edges.
func FromTable(table *symbols.Table) []UnitNode {
	var nodes []UnitNode
	for _, unit := range table.Units() {
		if unit == table.System() {
			continue
		}
		sym := table.Symbol(unit)
		if sym == nil {
			continue
		}
		node := UnitNode{Name: table.Name(unit), Span: sym.Span}
		if sc := table.Scope(table.UnitScope(unit)); sc != nil {
			for _, imp := range sc.Imports {
				is := table.Symbol(imp)
				if is == nil || is.Import == nil || is.Flags&symbols.SymbolFlagImplementation != 0 {
					continue
				}
				node.Uses = append(node.Uses, Use{Name: table.Name(is.Import.Target), Span: is.Span})
			}
		}
		nodes = append(nodes, node)
	}
	return nodes
}

// Order sorts the units of table and reports circular interface uses to
// reporters (keyed by unit). It returns the batches, dependencies first.
func Order(table *symbols.Table, reporters map[symbols.SymbolID]diag.Reporter) [][]symbols.SymbolID {
	nodes := FromTable(table)
	for i := range nodes {
		if r, ok := reporters[table.Unit(nodes[i].Name)]; ok {
			nodes[i].Reporter = r
		}
	}
	idx := BuildIndex(nodes)
	graph, slots := BuildGraph(idx, nodes)
	topo := ToposortKahn(graph)
	ReportCycles(idx, slots, topo)

	out := make([][]symbols.SymbolID, 0, len(topo.Batches)+1)
	for i := len(topo.Batches) - 1; i >= 0; i-- {
		batch := make([]symbols.SymbolID, 0, len(topo.Batches[i]))
		for _, id := range topo.Batches[i] {
			batch = append(batch, table.Unit(slots[int(id)].Node.Name))
		}
		out = append(out, batch)
	}
	if len(topo.Cycles) > 0 {
		// юниты в цикле обрабатываются последней волной
		batch := make([]symbols.SymbolID, 0, len(topo.Cycles))
		for _, id := range topo.Cycles {
			batch = append(batch, table.Unit(slots[int(id)].Node.Name))
		}
		out = append(out, batch)
	}
	return out
}
