package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"pasres/internal/bundle"
	"pasres/internal/project"
	"pasres/internal/source"
	"pasres/internal/symbols"
	"pasres/internal/types"
)

// Current schema version - increment when UsageIndex changes.
const indexSchemaVersion uint16 = 1

// ErrIndexSchema is returned for indexes written with another schema version.
var ErrIndexSchema = errors.New("unsupported usage index schema")

// Location is a byte range inside a named file.
type Location struct {
	Path  string
	Start uint32
	End   uint32
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d-%d", l.Path, l.Start, l.End)
}

// Usage is one recorded occurrence of a declaration.
type Usage struct {
	Location
	// Implicit marks calls written without parentheses and implied Self.
	Implicit bool
}

// SymbolUsages lists the occurrences of one declaration.
type SymbolUsages struct {
	Name      string
	Qualified string
	Kind      string
	Decl      Location
	Usages    []Usage
}

// UsageIndex answers "find usages" queries without resolving again. Source
// identifies the bundle the index was built from.
type UsageIndex struct {
	Schema  uint16
	Source  project.Digest
	Symbols []SymbolUsages
}

// BuildUsageIndex collects the registries of every unit of prog. Call it
// after ResolveAll.
func BuildUsageIndex(prog *bundle.Program, digest project.Digest) *UsageIndex {
	paths := make(map[source.FileID]string)
	for _, file := range prog.Files() {
		if f := prog.Tree.Files.Get(file); f != nil {
			paths[f.Span.File] = f.Path
		}
	}
	locate := func(sp source.Span) Location {
		return Location{Path: paths[sp.File], Start: sp.Start, End: sp.End}
	}

	ix := &UsageIndex{Schema: indexSchemaVersion, Source: digest}
	for _, unit := range prog.Table.Units() {
		usages := prog.Table.Registry(unit).Snapshot()
		for start := 0; start < len(usages); {
			sym := usages[start].Symbol
			end := start
			for end < len(usages) && usages[end].Symbol == sym {
				end++
			}
			entry := describeSymbol(prog.Table, sym)
			entry.Decl = locate(declSpan(prog.Table, sym))
			entry.Usages = make([]Usage, 0, end-start)
			for _, u := range usages[start:end] {
				entry.Usages = append(entry.Usages, Usage{Location: locate(u.Span), Implicit: u.Implicit})
			}
			ix.Symbols = append(ix.Symbols, entry)
			start = end
		}
	}
	slices.SortStableFunc(ix.Symbols, func(a, b SymbolUsages) int {
		return strings.Compare(strings.ToLower(a.Qualified), strings.ToLower(b.Qualified))
	})
	return ix
}

func declSpan(table *symbols.Table, id symbols.SymbolID) source.Span {
	if sym := table.Symbol(id); sym != nil {
		return sym.Span
	}
	return source.Span{}
}

func describeSymbol(table *symbols.Table, id symbols.SymbolID) SymbolUsages {
	sym := table.Symbol(id)
	if sym == nil {
		return SymbolUsages{Name: "?", Qualified: "?"}
	}
	name := table.Name(id)
	parts := make([]string, 0, 3)
	if sym.Unit.IsValid() && sym.Kind != symbols.SymbolUnit {
		parts = append(parts, table.Name(sym.Unit))
	}
	if sym.Owner.IsValid() {
		parts = append(parts, types.Label(table.Types, sym.Owner))
	}
	parts = append(parts, name)
	return SymbolUsages{
		Name:      name,
		Qualified: strings.Join(parts, "."),
		Kind:      sym.Kind.String(),
	}
}

// Lookup finds declarations by simple or qualified name, ignoring case. A
// partially qualified name matches on a dotted suffix.
func (ix *UsageIndex) Lookup(name string) []SymbolUsages {
	if ix == nil {
		return nil
	}
	want := strings.ToLower(strings.TrimSpace(name))
	if want == "" {
		return nil
	}
	var out []SymbolUsages
	for _, s := range ix.Symbols {
		qualified := strings.ToLower(s.Qualified)
		if strings.ToLower(s.Name) == want || qualified == want || strings.HasSuffix(qualified, "."+want) {
			out = append(out, s)
		}
	}
	return out
}

// EncodeIndex writes ix to w.
func EncodeIndex(w io.Writer, ix *UsageIndex) error {
	return msgpack.NewEncoder(w).Encode(ix)
}

// DecodeIndex reads an index written by EncodeIndex.
func DecodeIndex(r io.Reader) (*UsageIndex, error) {
	var ix UsageIndex
	if err := msgpack.NewDecoder(r).Decode(&ix); err != nil {
		return nil, fmt.Errorf("decode usage index: %w", err)
	}
	if ix.Schema != indexSchemaVersion {
		return nil, fmt.Errorf("%w: %d (want %d)", ErrIndexSchema, ix.Schema, indexSchemaVersion)
	}
	return &ix, nil
}

// WriteIndex stores ix at path, replacing it atomically.
func WriteIndex(path string, ix *UsageIndex) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "index-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()
	if err = EncodeIndex(f, ix); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// ReadIndex loads an index from path.
func ReadIndex(path string) (*UsageIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ix, err := DecodeIndex(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ix, nil
}
