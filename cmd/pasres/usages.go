package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"pasres/internal/bundle"
	"pasres/internal/driver"
	"pasres/internal/project"
)

var usagesCmd = &cobra.Command{
	Use:   "usages [flags] <bundle.pbundle|index.pidx> <name>",
	Short: "List the usages of a declaration",
	Long: `List every recorded occurrence of the declarations named <name>. The name
may be simple (Put), partially qualified (TList.Add) or fully qualified
(Lib.TList.Add). Bundles are resolved once; their index is cached under
$XDG_CACHE_HOME/pasres.`,
	Args: cobra.ExactArgs(2),
	RunE: runUsages,
}

func init() {
	usagesCmd.Flags().Bool("no-cache", false, "ignore and do not update the usage index cache")
	usagesCmd.Flags().Bool("implicit", true, "include implicit occurrences (calls without parentheses, implied Self)")
}

func runUsages(cmd *cobra.Command, args []string) error {
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	implicit, err := cmd.Flags().GetBool("implicit")
	if err != nil {
		return fmt.Errorf("failed to get implicit flag: %w", err)
	}

	path, name := args[0], args[1]
	var ix *driver.UsageIndex
	if strings.HasSuffix(path, ".pidx") {
		ix, err = driver.ReadIndex(path)
	} else {
		ix, err = indexForBundle(cmd.Context(), path, noCache)
	}
	if err != nil {
		return err
	}

	found := ix.Lookup(name)
	if len(found) == 0 {
		return fmt.Errorf("no usages of %q", name)
	}
	printUsages(cmd.OutOrStdout(), found, implicit)
	return nil
}

// indexForBundle returns the usage index of a bundle, resolving it on a
// cache miss.
func indexForBundle(ctx context.Context, path string, noCache bool) (*driver.UsageIndex, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	key := project.HashBytes(data)

	var cache *driver.IndexCache
	if !noCache {
		if cache, err = driver.OpenIndexCache("pasres"); err != nil {
			return nil, fmt.Errorf("usage index cache: %w", err)
		}
		if ix, ok, err := cache.Get(key); err != nil {
			return nil, fmt.Errorf("usage index cache: %w", err)
		} else if ok {
			return ix, nil
		}
	}

	prog, err := bundle.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg, err := loadProjectConfig()
	if err != nil {
		return nil, err
	}
	if _, err := driver.ResolveAll(ctx, prog, driver.Options{
		Jobs:           cfg.Analysis.Jobs,
		MaxDiagnostics: cfg.Analysis.MaxDiagnostics,
		UnitScopeNames: cfg.Units.ScopeNames,
		UnitAliases:    cfg.Units.Aliases,
	}); err != nil {
		return nil, err
	}
	ix := driver.BuildUsageIndex(prog, key)
	if cache != nil {
		if err := cache.Put(key, ix); err != nil {
			return nil, fmt.Errorf("usage index cache: %w", err)
		}
	}
	return ix, nil
}

func printUsages(out io.Writer, found []driver.SymbolUsages, implicit bool) {
	const maxName = 48
	width := 0
	for _, s := range found {
		width = max(width, runewidth.StringWidth(s.Qualified))
	}
	width = min(width, maxName)

	for _, s := range found {
		name := runewidth.FillRight(runewidth.Truncate(s.Qualified, width, "..."), width)
		fmt.Fprintf(out, "%s  %-10s %s\n", okColor.Sprint(name), s.Kind, s.Decl)
		for _, u := range s.Usages {
			if u.Implicit && !implicit {
				continue
			}
			mark := ""
			if u.Implicit {
				mark = noteColor.Sprint(" (implicit)")
			}
			fmt.Fprintf(out, "  %s%s\n", u.Location, mark)
		}
	}
}
