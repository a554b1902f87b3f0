package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"pasres/internal/bundle"
	"pasres/internal/diag"
	"pasres/internal/driver"
	"pasres/internal/source"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	infoColor    = color.New(color.FgCyan)
	noteColor    = color.New(color.Faint)
	okColor      = color.New(color.FgGreen, color.Bold)
)

// diagPrinter печатает диагностики в виде `path:start-end: SEV CODE: message`.
type diagPrinter struct {
	out   io.Writer
	paths map[source.FileID]string
	notes bool
}

func newDiagPrinter(out io.Writer, prog *bundle.Program, notes bool) *diagPrinter {
	p := &diagPrinter{out: out, paths: make(map[source.FileID]string), notes: notes}
	if prog != nil {
		for _, file := range prog.Files() {
			if f := prog.Tree.Files.Get(file); f != nil {
				p.paths[f.Span.File] = f.Path
			}
		}
	}
	return p
}

func (p *diagPrinter) location(sp source.Span) string {
	path, ok := p.paths[sp.File]
	if !ok {
		if sp == (source.Span{}) {
			return ""
		}
		path = fmt.Sprintf("file#%d", sp.File)
	}
	return fmt.Sprintf("%s:%d-%d", path, sp.Start, sp.End)
}

func severityColor(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError, diag.SevFatal:
		return errorColor
	case diag.SevWarning:
		return warningColor
	default:
		return infoColor
	}
}

func (p *diagPrinter) print(d diag.Diagnostic) {
	prefix := ""
	if loc := p.location(d.Primary); loc != "" {
		prefix = loc + ": "
	}
	fmt.Fprintf(p.out, "%s%s %s: %s\n", prefix, severityColor(d.Severity).Sprint(d.Severity.String()), d.Code.ID(), d.Message)
	if !p.notes {
		return
	}
	for _, n := range d.Notes {
		loc := p.location(n.Span)
		if loc != "" {
			loc += ": "
		}
		fmt.Fprintf(p.out, "  %s %s%s\n", noteColor.Sprint("note:"), loc, n.Msg)
	}
}

func (p *diagPrinter) printBag(bag *diag.Bag) {
	if bag == nil {
		return
	}
	bag.Sort()
	for _, d := range bag.Items() {
		p.print(d)
	}
}

// printReport prints file diagnostics in file order, then unit diagnostics.
func (p *diagPrinter) printReport(report *driver.Report) {
	for i := range report.Files {
		p.printBag(report.Files[i].Bag)
	}
	p.printBag(report.Units)
}

func printSummary(out io.Writer, path string, report *driver.Report) {
	var errs, fatal, warns int
	count := func(bag *diag.Bag) {
		if bag == nil {
			return
		}
		for _, d := range bag.Items() {
			switch {
			case d.Severity >= diag.SevError:
				errs++
				if d.Severity.Stops() {
					fatal++
				}
			case d.Severity == diag.SevWarning:
				warns++
			}
		}
	}
	for i := range report.Files {
		count(report.Files[i].Bag)
	}
	count(report.Units)

	status := okColor.Sprint("ok")
	if report.HasErrors() {
		status = errorColor.Sprint("failed")
	}
	fmt.Fprintf(out, "%s: %s, %d files, %d errors (%d stopped), %d warnings\n", path, status, len(report.Files), errs, fatal, warns)
}
