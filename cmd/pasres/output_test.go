package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"pasres/internal/diag"
	"pasres/internal/driver"
	"pasres/internal/source"
)

func TestReadUIMode(t *testing.T) {
	for in, want := range map[string]uiMode{"": uiModeAuto, "AUTO": uiModeAuto, " on ": uiModeOn, "off": uiModeOff} {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Fatalf("readUIMode(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Fatalf("unknown ui mode must fail")
	}
	if shouldUseTUI(uiModeOff, false, 100) || !shouldUseTUI(uiModeOn, true, 1) {
		t.Fatalf("explicit ui modes must win")
	}
	if shouldUseTUI(uiModeAuto, false, minProgressFiles-1) {
		t.Fatalf("auto mode must skip the progress view for tiny bundles")
	}
	if _, err := parseMode("color", "blue"); err == nil || !strings.Contains(err.Error(), "--color") {
		t.Fatalf("invalid color mode must name its flag, got %v", err)
	}
}

func TestDiagPrinter(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	p := newDiagPrinter(&buf, nil, true)
	p.paths[2] = "main.pas"

	d := diag.New(diag.SevFatal, diag.ResAmbiguousOverload, source.Span{File: 2, Start: 10, End: 13}, "ambiguous reference to 'Foo'").
		WithNote(source.Span{File: 2, Start: 1, End: 4}, "candidate: Foo(Integer)")
	p.print(d)

	want := "main.pas:10-13: FATAL RES3003: ambiguous reference to 'Foo'\n" +
		"  note: main.pas:1-4: candidate: Foo(Integer)\n"
	if buf.String() != want {
		t.Fatalf("output:\n%s\nwant:\n%s", buf.String(), want)
	}

	buf.Reset()
	p.print(diag.NewError(diag.ProjNoInputs, source.Span{}, "no bundles"))
	if got := buf.String(); got != "ERROR PRJ5002: no bundles\n" {
		t.Fatalf("spanless diagnostic = %q", got)
	}
}

func TestPrintUsages(t *testing.T) {
	color.NoColor = true
	found := []driver.SymbolUsages{{
		Name:      "Put",
		Qualified: "Lib.Put",
		Kind:      "routine",
		Decl:      driver.Location{Path: "lib.pas", Start: 20, End: 24},
		Usages: []driver.Usage{
			{Location: driver.Location{Path: "main.pas", Start: 100, End: 104}},
			{Location: driver.Location{Path: "main.pas", Start: 200, End: 203}, Implicit: true},
		},
	}}

	var buf bytes.Buffer
	printUsages(&buf, found, false)
	out := buf.String()
	if !strings.Contains(out, "Lib.Put") || !strings.Contains(out, "lib.pas:20-24") {
		t.Fatalf("header missing: %q", out)
	}
	if !strings.Contains(out, "main.pas:100-104") || strings.Contains(out, "main.pas:200-203") {
		t.Fatalf("implicit usages must be filtered: %q", out)
	}

	buf.Reset()
	printUsages(&buf, found, true)
	if !strings.Contains(buf.String(), "main.pas:200-203 (implicit)") {
		t.Fatalf("implicit usage must be marked: %q", buf.String())
	}
}
