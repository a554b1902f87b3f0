package project

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"
)

// Matcher selects bundle files by include and exclude glob patterns.
// Patterns use '/' as separator: `*` stays within a directory, `**` crosses.
type Matcher struct {
	include []glob.Glob
	exclude []glob.Glob
}

func compileGlobs(patterns []string, label string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid %s pattern %q: %w", label, p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

// NewMatcher compiles the patterns. An empty include list matches nothing.
func NewMatcher(include, exclude []string) (*Matcher, error) {
	in, err := compileGlobs(include, "include")
	if err != nil {
		return nil, err
	}
	ex, err := compileGlobs(exclude, "exclude")
	if err != nil {
		return nil, err
	}
	return &Matcher{include: in, exclude: ex}, nil
}

// Match reports whether rel (relative to the project root) is selected.
func (m *Matcher) Match(rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, g := range m.exclude {
		if g.Match(rel) {
			return false
		}
	}
	for _, g := range m.include {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// Collect walks root and returns the selected files, sorted.
func (m *Matcher) Collect(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if m.Match(rel) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

// Matcher builds the file matcher of the config.
func (c Config) Matcher() (*Matcher, error) {
	return NewMatcher(c.Files.Include, c.Files.Exclude)
}
