// Package ui renders terminal progress for resolve runs.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"pasres/internal/driver"
)

const (
	labelQueued = "queued"
	labelDone   = "done"
	labelError  = "error"

	statusColumn = 12
	minNameWidth = 20
)

// stageWeight is the share of a file's bar a stage stands for while it runs.
var stageWeight = map[driver.Stage]float64{
	driver.StageLoad:    0.1,
	driver.StageOrder:   0.2,
	driver.StageResolve: 0.5,
	driver.StageIndex:   0.9,
}

var stageNames = map[driver.Stage]string{
	driver.StageLoad:    "loading",
	driver.StageOrder:   "ordering",
	driver.StageResolve: "resolving",
	driver.StageIndex:   "indexing",
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	footerStyle  = lipgloss.NewStyle().Faint(true)
	queuedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	workingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	doneStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

type fileRow struct {
	path    string
	status  string
	stage   driver.Stage
	elapsed time.Duration
}

func (r fileRow) finished() bool { return r.status == labelDone || r.status == labelError }

type progressModel struct {
	title      string
	events     <-chan driver.Event
	spinner    spinner.Model
	bar        progress.Model
	rows       []fileRow
	byPath     map[string]int
	stageLabel string
	width      int
	done       bool
}

type eventMsg driver.Event

type doneMsg struct{}

// NewProgressModel returns a Bubble Tea model showing one row per file.
// The model quits once events is closed.
func NewProgressModel(title string, files []string, events <-chan driver.Event) tea.Model {
	m := &progressModel{
		title:  title,
		events: events,
		bar:    progress.New(progress.WithDefaultGradient()),
		rows:   make([]fileRow, len(files)),
		byPath: make(map[string]int, len(files)),
		width:  80,
	}
	m.spinner = spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(workingStyle))
	m.bar.Width = m.width - 4
	for i, path := range files {
		m.rows[i] = fileRow{path: path, status: labelQueued}
		m.byPath[path] = i
	}
	return m
}

func (m *progressModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.next())
}

// next waits for the following driver event.
func (m *progressModel) next() tea.Cmd {
	return func() tea.Msg {
		if ev, ok := <-m.events; ok {
			return eventMsg(ev)
		}
		return doneMsg{}
	}
}

func (m *progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		return m, tea.Batch(m.apply(driver.Event(msg)), m.next())
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
			m.bar.Width = msg.Width - 4
		}
	case progress.FrameMsg:
		bar, cmd := m.bar.Update(msg)
		m.bar = bar.(progress.Model)
		return m, cmd
	}
	return m, nil
}

// apply folds ev into the rows. Events without a file name set the
// header label; events for files outside the list are dropped.
func (m *progressModel) apply(ev driver.Event) tea.Cmd {
	label := statusLabel(ev.Stage, ev.Status)
	if ev.File == "" {
		if label != "" {
			m.stageLabel = label
		}
		return nil
	}
	i, ok := m.byPath[ev.File]
	if !ok {
		return nil
	}
	row := &m.rows[i]
	if label != "" {
		row.status, row.stage = label, ev.Stage
	}
	if ev.Elapsed > 0 {
		row.elapsed = ev.Elapsed
	}
	return m.bar.SetPercent(m.percent())
}

func (m *progressModel) percent() float64 {
	if len(m.rows) == 0 {
		return 0
	}
	var sum float64
	for _, row := range m.rows {
		if row.finished() {
			sum++
			continue
		}
		sum += stageWeight[row.stage]
	}
	return sum / float64(len(m.rows))
}

func (m *progressModel) View() string {
	if len(m.rows) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render(m.header()))
	b.WriteString("\n\n")

	nameWidth := max(m.width-statusColumn-4, minNameWidth)
	finished, failed := 0, 0
	for _, row := range m.rows {
		fmt.Fprintf(&b, "  %s %s", styleFor(row.status).Render(fmt.Sprintf("%*s", statusColumn, row.status)), truncate(row.path, nameWidth))
		if row.finished() {
			finished++
			if row.status == labelError {
				failed++
			}
			if row.elapsed > 0 {
				fmt.Fprintf(&b, " (%.1f ms)", float64(row.elapsed)/float64(time.Millisecond))
			}
		}
		b.WriteByte('\n')
	}

	b.WriteByte('\n')
	if m.done {
		b.WriteString(m.bar.ViewAs(1))
	} else {
		b.WriteString(m.bar.View())
	}
	b.WriteByte('\n')
	b.WriteString(footerStyle.Render(fmt.Sprintf("%d/%d files, %d failed", finished, len(m.rows), failed)))
	b.WriteByte('\n')
	return b.String()
}

func (m *progressModel) header() string {
	h := m.title
	if m.stageLabel != "" {
		h += " (" + m.stageLabel + ")"
	}
	if m.done {
		return "done: " + h
	}
	return m.spinner.View() + " " + h
}

func statusLabel(stage driver.Stage, status driver.Status) string {
	switch status {
	case driver.StatusQueued:
		return labelQueued
	case driver.StatusDone:
		return labelDone
	case driver.StatusError:
		return labelError
	case driver.StatusWorking:
		return stageLabel(stage)
	}
	return ""
}

func stageLabel(stage driver.Stage) string { return stageNames[stage] }

func styleFor(status string) lipgloss.Style {
	switch status {
	case labelDone:
		return doneStyle
	case labelError:
		return errorStyle
	case labelQueued, "":
		return queuedStyle
	}
	return workingStyle
}

// truncate shortens value to width display cells, marking the cut with "...".
func truncate(value string, width int) string {
	if width <= 0 || runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}
