package driver

import (
	"encoding/json"
	"fmt"

	"pasres/internal/diag"
	"pasres/internal/observ"
	"pasres/internal/source"
)

// resolveTimings is the JSON note of the ObsTimings diagnostic.
type resolveTimings struct {
	TotalMS     float64              `json:"total_ms"`
	Files       int                  `json:"files"`
	Waves       int                  `json:"waves"`
	Jobs        int                  `json:"jobs"`
	Ambiguities int                  `json:"ambiguities"`
	Duplicates  int                  `json:"suppressed_duplicates"`
	Slowest     string               `json:"slowest,omitempty"`
	SlowestMS   float64              `json:"slowest_ms,omitempty"`
	Phases      []observ.PhaseReport `json:"phases"`
}

func summarizeTimings(report *Report, waves, jobs int) resolveTimings {
	out := resolveTimings{
		TotalMS:     report.Timing.TotalMS,
		Files:       len(report.Files),
		Waves:       waves,
		Jobs:        jobs,
		Ambiguities: len(report.Ambiguities()),
		Phases:      report.Timing.Phases,
	}
	for i := range report.Files {
		f := &report.Files[i]
		out.Duplicates += f.Suppressed
		if ms := float64(f.Elapsed.Microseconds()) / 1000; ms > out.SlowestMS {
			out.Slowest, out.SlowestMS = f.Path, ms
		}
	}
	return out
}

// appendTimingDiagnostic adds an info diagnostic to the unit bag. The bag
// limit does not apply to it.
func appendTimingDiagnostic(bag *diag.Bag, t resolveTimings) {
	if bag == nil {
		return
	}
	data, err := json.Marshal(t)
	if err != nil {
		return
	}
	msg := fmt.Sprintf("resolved %d files in %d waves: %.2f ms", t.Files, t.Waves, t.TotalMS)
	if t.Slowest != "" {
		msg += fmt.Sprintf(", slowest %s (%.2f ms)", t.Slowest, t.SlowestMS)
	}
	entry := diag.New(diag.SevInfo, diag.ObsTimings, source.Span{}, msg).
		WithNote(source.Span{}, string(data))
	if bag.Add(entry) {
		return
	}
	overflow := diag.NewBag(1)
	overflow.Add(entry)
	bag.Merge(overflow)
}
