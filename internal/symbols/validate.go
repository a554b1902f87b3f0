package symbols

import (
	"errors"
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// tableCheck collects structural problems of one table.
type tableCheck struct {
	t    *Table
	errs []error
}

func (c *tableCheck) failf(format string, args ...any) {
	c.errs = append(c.errs, fmt.Errorf(format, args...))
}

// Validate checks the arenas for broken links: scope parent and child
// backlinks, name index coverage, symbol placement and per-kind payloads.
// All problems are joined into one error.
func (t *Table) Validate() error {
	c := &tableCheck{t: t}
	for idx := 1; idx < len(t.Scopes.data); idx++ {
		id, err := toScopeID(idx)
		if err != nil {
			c.errs = append(c.errs, err)
			continue
		}
		c.scope(id, &t.Scopes.data[idx])
	}
	for idx := 1; idx < len(t.Symbols.data); idx++ {
		id, err := toSymbolID(idx)
		if err != nil {
			c.errs = append(c.errs, err)
			continue
		}
		c.symbol(id, &t.Symbols.data[idx])
	}
	return errors.Join(c.errs...)
}

func (c *tableCheck) validScope(id ScopeID) bool {
	return id.IsValid() && int(id) < len(c.t.Scopes.data)
}

func (c *tableCheck) scope(id ScopeID, s *Scope) {
	if s.Kind == ScopeInvalid {
		c.failf("%s has invalid kind", id)
	}
	if s.Parent.IsValid() {
		switch {
		case !c.validScope(s.Parent) || s.Parent == id:
			c.failf("%s has invalid parent %s", id, s.Parent)
		case !slices.Contains(c.t.Scopes.data[s.Parent].Children, id):
			c.failf("%s parent %s missing backlink", id, s.Parent)
		}
	}
	for _, child := range s.Children {
		switch {
		case !c.validScope(child) || child == id:
			c.failf("%s has invalid child %s", id, child)
		case c.t.Scopes.data[child].Parent != id:
			c.failf("%s child %s missing parent backlink", id, child)
		}
	}

	// каждый символ области должен быть ровно в индексе имён, и наоборот
	indexed := make(map[SymbolID]struct{}, len(s.Symbols))
	for name, bucket := range s.NameIndex {
		for _, sym := range bucket {
			if !slices.Contains(s.Symbols, sym) {
				c.failf("%s name index %d references missing %s", id, name, sym)
				continue
			}
			indexed[sym] = struct{}{}
		}
	}
	for _, sym := range s.Symbols {
		if _, ok := indexed[sym]; !ok {
			c.failf("%s: %s missing in name index", id, sym)
		}
	}
}

func (c *tableCheck) symbol(id SymbolID, sym *Symbol) {
	if sym.Kind == SymbolUnit {
		// units own their top scope instead of being declared in one
		if s := c.t.Scopes.Get(sym.Members); s == nil || s.Kind != ScopeUnit {
			c.failf("unit %s has invalid top scope %s", id, sym.Members)
		}
		return
	}
	if !c.validScope(sym.Scope) {
		c.failf("%s has invalid scope %s", id, sym.Scope)
		return
	}
	if !slices.Contains(c.t.Scopes.data[sym.Scope].Symbols, id) {
		c.failf("%s is missing from the %s list", id, sym.Scope)
	}
	c.errs = append(c.errs, c.t.validateSymbolInfo(id, sym)...)
}

func (t *Table) validateSymbolInfo(id SymbolID, sym *Symbol) []error {
	var errs []error
	switch sym.Kind {
	case SymbolRoutine:
		if sym.Routine == nil {
			errs = append(errs, fmt.Errorf("routine %s has no signature", id))
		} else if body := sym.Routine.Body; body.IsValid() {
			if s := t.Scopes.Get(body); s == nil || s.Kind != ScopeRoutine || s.Routine != id {
				errs = append(errs, fmt.Errorf("routine %s body %s does not link back", id, body))
			}
		}
	case SymbolUnitImport:
		if sym.Import == nil {
			errs = append(errs, fmt.Errorf("unit import %s has no target", id))
		} else if target := t.Symbols.Get(sym.Import.Target); target == nil || target.Kind != SymbolUnit {
			errs = append(errs, fmt.Errorf("unit import %s targets non-unit %s", id, sym.Import.Target))
		}
	case SymbolTypeParameter:
		if sym.TypeParam == nil {
			errs = append(errs, fmt.Errorf("type parameter %s has no state", id))
		} else if sym.TypeParam.Complete == (sym.Flags&SymbolFlagForward != 0) {
			errs = append(errs, fmt.Errorf("type parameter %s forward flag disagrees with completion", id))
		}
	case SymbolProperty:
		if sym.Property == nil {
			errs = append(errs, fmt.Errorf("property %s has no accessors", id))
		}
	}
	return errs
}

func toScopeID(idx int) (ScopeID, error) {
	v, err := safecast.Conv[uint32](idx)
	if err != nil {
		return NoScopeID, fmt.Errorf("scope %d: %w", idx, err)
	}
	return ScopeID(v), nil
}

func toSymbolID(idx int) (SymbolID, error) {
	v, err := safecast.Conv[uint32](idx)
	if err != nil {
		return NoSymbolID, fmt.Errorf("symbol %d: %w", idx, err)
	}
	return SymbolID(v), nil
}
