// Package bundle reads and writes the msgpack form of an analysed program:
// the front end hands over interned strings, types, the symbol table and the
// statement trees, and pasres resolves them.
package bundle

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"pasres/internal/ast"
	"pasres/internal/source"
	"pasres/internal/symbols"
	"pasres/internal/types"
	"pasres/internal/version"
)

const schemaVersion uint16 = version.BundleSchema

// ErrSchema is returned for bundles written with another schema version.
var ErrSchema = errors.New("unsupported bundle schema")

// Program is one decoded bundle. Table, Types and Strings are shared by all
// files of Tree.
type Program struct {
	Strings *source.Interner
	Types   *types.Interner
	Table   *symbols.Table
	Tree    *ast.Builder
}

// New wraps a table and a tree built in memory.
func New(table *symbols.Table, tree *ast.Builder) *Program {
	return &Program{Strings: table.Strings, Types: table.Types, Table: table, Tree: tree}
}

// Files returns every file of the program in ID order.
func (p *Program) Files() []ast.FileID {
	if p == nil || p.Tree == nil {
		return nil
	}
	n := p.Tree.Files.Arena.Len()
	out := make([]ast.FileID, 0, n)
	for i := uint32(1); i <= n; i++ {
		out = append(out, ast.FileID(i))
	}
	return out
}

// Path returns the source path recorded for file.
func (p *Program) Path(file ast.FileID) string {
	if f := p.Tree.Files.Get(file); f != nil {
		return f.Path
	}
	return ""
}

type envelope struct {
	Schema  uint16
	Strings *source.Interner
	Types   *types.Interner
	Table   *symbols.Table
	Tree    *ast.Builder
}

// Encode writes p to w.
func Encode(w io.Writer, p *Program) error {
	if p == nil || p.Table == nil || p.Tree == nil {
		return fmt.Errorf("encode bundle: incomplete program")
	}
	enc := msgpack.NewEncoder(w)
	return enc.Encode(&envelope{
		Schema:  schemaVersion,
		Strings: p.Strings,
		Types:   p.Types,
		Table:   p.Table,
		Tree:    p.Tree,
	})
}

// Decode reads a program written by Encode and re-links its parts.
func Decode(r io.Reader) (*Program, error) {
	var env envelope
	if err := msgpack.NewDecoder(r).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode bundle: %w", err)
	}
	if env.Schema != schemaVersion {
		return nil, fmt.Errorf("%w: %d (want %d)", ErrSchema, env.Schema, schemaVersion)
	}
	if env.Strings == nil || env.Types == nil || env.Table == nil || env.Tree == nil {
		return nil, fmt.Errorf("decode bundle: missing section")
	}
	env.Types.AttachStrings(env.Strings)
	env.Table.Attach(env.Strings, env.Types)
	return &Program{Strings: env.Strings, Types: env.Types, Table: env.Table, Tree: env.Tree}, nil
}

// WriteFile encodes p into path, replacing it atomically.
func WriteFile(path string, p *Program) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, "bundle-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()
	if err = Encode(f, p); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), path)
}

// ReadFile decodes the bundle stored at path.
func ReadFile(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	p, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}
