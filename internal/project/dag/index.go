package dag

import (
	"sort"
	"strings"
)

type UnitID uint32

// UnitIndex maps folded unit names to dense IDs.
type UnitIndex struct {
	NameToID map[string]UnitID
	IDToName []string
}

func key(name string) string { return strings.ToLower(name) }

// собрать уникальные имена (без учёта регистра), отсортировать, раздать ID по порядку
func BuildIndex(nodes []UnitNode) UnitIndex {
	uniq := make(map[string]struct{}, len(nodes))
	for _, node := range nodes {
		if node.Name != "" {
			uniq[key(node.Name)] = struct{}{}
		}
		for _, use := range node.Uses {
			if use.Name == "" {
				continue
			}
			uniq[key(use.Name)] = struct{}{}
		}
	}

	names := make([]string, 0, len(uniq))
	for name := range uniq {
		names = append(names, name)
	}
	sort.Strings(names)

	nameToID := make(map[string]UnitID, len(names))
	for i, name := range names {
		nameToID[name] = UnitID(i)
	}

	return UnitIndex{
		NameToID: nameToID,
		IDToName: names,
	}
}

// Lookup returns the ID of a unit name.
func (idx UnitIndex) Lookup(name string) (UnitID, bool) {
	id, ok := idx.NameToID[key(name)]
	return id, ok
}
