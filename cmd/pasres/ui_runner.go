package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"pasres/internal/bundle"
	"pasres/internal/driver"
	"pasres/internal/ui"
)

type resolveOutcome struct {
	report *driver.Report
	err    error
}

func runResolveWithUI(ctx context.Context, title string, prog *bundle.Program, opts driver.Options) (*driver.Report, error) {
	files := make([]string, 0, len(prog.Files()))
	for _, file := range prog.Files() {
		files = append(files, prog.Path(file))
	}
	events := make(chan driver.Event, 256)
	outcomeCh := make(chan resolveOutcome, 1)

	go func() {
		opts.Progress = driver.ChannelSink{Ch: events}
		report, err := driver.ResolveAll(ctx, prog, opts)
		outcomeCh <- resolveOutcome{report: report, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.report, uiErr
	}
	return outcome.report, outcome.err
}
