package dag

import (
	"fmt"
	"slices"
	"strings"

	"pasres/internal/diag"
	"pasres/internal/source"
)

// Graph holds uses-edges between units: Edges[from] lists the units from uses.
type Graph struct {
	Edges   [][]UnitID
	Indeg   []int  // входящие степени для Kahn (учитывает только присутствующие юниты)
	Present []bool // признак, что юнит реально объявлен (а не только упомянут в uses)
}

// Use is one entry of an interface uses clause.
type Use struct {
	Name string
	Span source.Span
}

// UnitNode describes one unit of the program.
type UnitNode struct {
	Name     string
	Span     source.Span
	Uses     []Use
	Reporter diag.Reporter
	Broken   bool
	FirstErr *diag.Diagnostic
}

type UnitSlot struct {
	Node    UnitNode
	Present bool
}

func BuildGraph(idx UnitIndex, nodes []UnitNode) (Graph, []UnitSlot) {
	nodeCount := len(idx.IDToName)
	g := Graph{
		Edges:   make([][]UnitID, nodeCount),
		Indeg:   make([]int, nodeCount),
		Present: make([]bool, nodeCount),
	}
	slots := make([]UnitSlot, nodeCount)
	for i, name := range idx.IDToName {
		slots[i].Node.Name = name
	}

	for _, node := range nodes {
		id, ok := idx.Lookup(node.Name)
		if !ok || slots[int(id)].Present {
			// дубликаты юнитов отсекает таблица символов
			continue
		}
		slots[int(id)] = UnitSlot{Node: node, Present: true}
		g.Present[int(id)] = true
	}

	for from := range slots {
		slot := &slots[from]
		if !slot.Present || len(slot.Node.Uses) == 0 {
			continue
		}
		seen := make(map[UnitID]struct{}, len(slot.Node.Uses))
		for _, use := range slot.Node.Uses {
			toID, ok := idx.Lookup(use.Name)
			if !ok || UnitID(from) == toID {
				continue
			}
			if _, dup := seen[toID]; dup {
				continue
			}
			seen[toID] = struct{}{}
			g.Edges[from] = append(g.Edges[from], toID)
			if g.Present[int(toID)] {
				g.Indeg[int(toID)]++
			}
		}
		if len(g.Edges[from]) > 1 {
			slices.Sort(g.Edges[from])
		}
	}

	return g, slots
}

// ReportCycles reports every unit left in a cycle of interface uses.
func ReportCycles(idx UnitIndex, slots []UnitSlot, topo *Topo) {
	if topo == nil || !topo.Cyclic || len(topo.Cycles) == 0 {
		return
	}
	names := make([]string, 0, len(topo.Cycles))
	for _, id := range topo.Cycles {
		names = append(names, slots[int(id)].Node.Name)
	}
	summary := strings.Join(names, " -> ")

	for _, id := range topo.Cycles {
		slot := slots[int(id)]
		if !slot.Present || slot.Node.Reporter == nil {
			continue
		}
		msg := fmt.Sprintf("unit '%s' participates in a circular unit reference: %s", slot.Node.Name, summary)
		slot.Node.Reporter.Report(diag.TblUsesCycle, diag.SevError, slot.Node.Span, msg, nil)
	}
}

// ReportBrokenDeps tells every unit which of its used units failed.
func ReportBrokenDeps(idx UnitIndex, slots []UnitSlot) {
	for i := range slots {
		from := &slots[i]
		if !from.Present || from.Node.Reporter == nil || len(from.Node.Uses) == 0 {
			continue
		}
		emitted := make(map[UnitID]struct{}, len(from.Node.Uses))
		for _, use := range from.Node.Uses {
			toID, ok := idx.Lookup(use.Name)
			if !ok {
				continue
			}
			dep := slots[int(toID)]
			if !dep.Node.Broken {
				continue
			}
			if _, seen := emitted[toID]; seen {
				continue
			}
			emitted[toID] = struct{}{}

			var notes []diag.Note
			if dep.Node.FirstErr != nil {
				notes = append(notes, diag.Note{
					Span: dep.Node.FirstErr.Primary,
					Msg:  fmt.Sprintf("first error in used unit: %s", dep.Node.FirstErr.Message),
				})
			}
			msg := fmt.Sprintf("used unit '%s' has errors", dep.Node.Name)
			from.Node.Reporter.Report(diag.TblDependencyFailed, diag.SevWarning, use.Span, msg, notes)
		}
	}
}
