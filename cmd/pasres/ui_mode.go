package main

import (
	"fmt"
	"os"
	"strings"
)

// uiMode is the value of the auto|on|off flags: --ui and --color.
type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

// minProgressFiles is the bundle size below which auto mode skips the
// progress view: such bundles resolve before it would draw.
const minProgressFiles = 4

func parseMode(flag, value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	}
	return "", errInvalidFlag(flag, value, "auto|on|off")
}

func readUIMode(value string) (uiMode, error) { return parseMode("ui", value) }

// shouldUseTUI decides on the per-file progress view for a bundle of files
// source files. Auto mode wants a terminal, no --quiet and a bundle worth
// watching.
func shouldUseTUI(mode uiMode, quiet bool, files int) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	}
	return !quiet && files >= minProgressFiles && isTerminal(os.Stdout)
}

func errInvalidFlag(name, value, expected string) error {
	return fmt.Errorf("invalid --%s value %q (expected %s)", name, value, expected)
}
