package ast

import (
	"pasres/internal/source"
	"pasres/internal/symbols"
)

// File is one compilation unit: its unit symbol, top scope and the blocks to resolve.
type File struct {
	Span  source.Span
	Path  string
	Unit  symbols.SymbolID
	Scope symbols.ScopeID
	Body  []StmtID
}

type Files struct {
	Arena *Arena[File]
}

func NewFiles(capHint uint) *Files {
	return &Files{
		Arena: NewArena[File](capHint),
	}
}

func (f *Files) New(sp source.Span, path string, unit symbols.SymbolID, scope symbols.ScopeID) FileID {
	return FileID(f.Arena.Allocate(File{
		Span:  sp,
		Path:  path,
		Unit:  unit,
		Scope: scope,
		Body:  make([]StmtID, 0),
	}))
}

func (f *Files) Get(id FileID) *File {
	return f.Arena.Get(uint32(id))
}
