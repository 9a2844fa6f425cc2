// internal/tui/board.go
//
// Status board for a taskflow project. It lists the tasks waiting for a plan
// and the plans in flight, shows the latest activity log entries, and can run
// an orchestrator sweep on demand.
//
// The board follows The Elm Architecture used by bubbletea: data is loaded by
// commands that return messages, Update folds messages into the model, View
// renders it.

package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/taskflow/internal/console"
	"github.com/kingrea/taskflow/internal/logbook"
	"github.com/kingrea/taskflow/internal/orchestrator"
	"github.com/kingrea/taskflow/internal/skill"
	"github.com/kingrea/taskflow/internal/workflow"
)

const (
	boardRefreshInterval = 3 * time.Second
	activityLimit        = 8
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FAFAFA")).Background(lipgloss.Color("#7D56F4")).Padding(0, 1)
	sectionStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	activityStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#444444")).Padding(0, 1)
	stampStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575"))
	errStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

type boardKeys struct {
	Sweep   key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

func defaultKeys() boardKeys {
	return boardKeys{
		Sweep:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sweep")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

type snapshotMsg struct {
	snap    workflow.Snapshot
	entries []logbook.Entry
	total   int
	err     error
}

type sweepDoneMsg struct {
	report orchestrator.Report
	err    error
}

type tickMsg time.Time

// recordItem implements list.Item for tasks and plans.
type recordItem struct {
	record workflow.Record
	kind   string
}

func (i recordItem) Title() string { return i.record.Name }
func (i recordItem) Description() string {
	desc := fmt.Sprintf("%s · %s", i.kind, i.record.Stage.FriendlyName())
	switch {
	case i.record.Unreadable:
		desc += " · could not read status"
	case i.record.Status != "":
		desc += " · status: " + i.record.Status
	}
	return desc
}
func (i recordItem) FilterValue() string { return i.record.Name }

// Board is the status board model.
type Board struct {
	sctx *skill.Context
	orch *orchestrator.Orchestrator
	keys boardKeys

	records  list.Model
	snap     workflow.Snapshot
	entries  []logbook.Entry
	total    int
	status   string
	err      error
	sweeping bool

	width  int
	height int
}

// NewBoard builds the board. Skill output is discarded so sweeps do not write
// over the alternate screen.
func NewBoard(sctx *skill.Context) *Board {
	quiet := sctx.WithOutput(console.Discard())
	records := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	records.Title = "Pipeline"
	records.SetShowStatusBar(false)
	records.SetFilteringEnabled(false)
	records.SetShowHelp(false)
	return &Board{
		sctx:    quiet,
		orch:    orchestrator.New(quiet),
		keys:    defaultKeys(),
		records: records,
	}
}

// Run opens the board in the terminal and blocks until the user quits.
func Run(sctx *skill.Context) error {
	_, err := tea.NewProgram(NewBoard(sctx), tea.WithAltScreen()).Run()
	return err
}

// Init loads the first snapshot and starts the refresh timer.
func (b *Board) Init() tea.Cmd {
	return tea.Batch(b.refresh(), b.tick())
}

// Update folds a message into the model.
func (b *Board) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		b.width = msg.Width
		b.height = msg.Height
		b.records.SetSize(max(0, msg.Width-4), max(0, msg.Height-activityLimit-8))
		return b, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, b.keys.Quit):
			return b, tea.Quit
		case key.Matches(msg, b.keys.Refresh):
			return b, b.refresh()
		case key.Matches(msg, b.keys.Sweep):
			if b.sweeping {
				return b, nil
			}
			b.sweeping = true
			b.status = "Sweeping..."
			return b, b.sweep()
		}

	case snapshotMsg:
		b.applySnapshot(msg)
		return b, nil

	case sweepDoneMsg:
		b.sweeping = false
		if msg.err != nil {
			b.err = msg.err
			b.status = ""
		} else {
			b.err = nil
			b.status = fmt.Sprintf("Sweep %s: planned %d, closed %d",
				shortID(msg.report.RunID), msg.report.Planned.Processed, msg.report.Closed.Processed)
		}
		return b, b.refresh()

	case tickMsg:
		return b, tea.Batch(b.refresh(), b.tick())
	}

	var cmd tea.Cmd
	b.records, cmd = b.records.Update(msg)
	return b, cmd
}

// View renders the board.
func (b *Board) View() string {
	var sections []string
	sections = append(sections, titleStyle.Render("taskflow · "+b.sctx.Config.ProjectDir))
	sections = append(sections, b.records.View())
	sections = append(sections, b.renderActivity())
	sections = append(sections, b.renderFooter())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (b *Board) applySnapshot(msg snapshotMsg) {
	if msg.err != nil {
		b.err = msg.err
		return
	}
	b.snap = msg.snap
	b.entries = msg.entries
	b.total = msg.total
	items := make([]list.Item, 0, len(msg.snap.Tasks)+len(msg.snap.Plans))
	for _, task := range msg.snap.Tasks {
		items = append(items, recordItem{record: task, kind: "task"})
	}
	for _, plan := range msg.snap.Plans {
		items = append(items, recordItem{record: plan, kind: "plan"})
	}
	b.records.SetItems(items)
	b.records.Title = fmt.Sprintf("Pipeline · %d tasks · %d open plans", len(msg.snap.Tasks), msg.snap.Open())
}

func (b *Board) renderActivity() string {
	lines := []string{sectionStyle.Render(fmt.Sprintf("Recent Activity (%d)", b.total))}
	if len(b.entries) == 0 {
		lines = append(lines, stampStyle.Render("No activity yet."))
	}
	for _, entry := range b.entries {
		lines = append(lines, stampStyle.Render("["+entry.Timestamp+"]")+" "+entry.Message)
	}
	style := activityStyle
	if b.width > 4 {
		style = style.Width(b.width - 4)
	}
	return style.Render(strings.Join(lines, "\n"))
}

func (b *Board) renderFooter() string {
	var status string
	switch {
	case b.err != nil:
		status = errStyle.Render("✗ " + b.err.Error())
	case b.status != "":
		status = okStyle.Render(b.status)
	}
	help := helpStyle.Render(strings.Join([]string{
		helpEntry(b.keys.Sweep), helpEntry(b.keys.Refresh), helpEntry(b.keys.Quit),
	}, " · "))
	if status == "" {
		return help
	}
	return status + "\n" + help
}

func helpEntry(binding key.Binding) string {
	h := binding.Help()
	return h.Key + " " + h.Desc
}

func (b *Board) refresh() tea.Cmd {
	sctx := b.sctx
	return func() tea.Msg {
		snap, err := workflow.Detect(sctx.Store)
		if err != nil {
			return snapshotMsg{err: err}
		}
		entries, total := sctx.Logbook.Tail(activityLimit)
		return snapshotMsg{snap: snap, entries: entries, total: total}
	}
}

func (b *Board) sweep() tea.Cmd {
	orch := b.orch
	return func() tea.Msg {
		report, err := orch.Sweep(context.Background())
		return sweepDoneMsg{report: report, err: err}
	}
}

func (b *Board) tick() tea.Cmd {
	return tea.Tick(boardRefreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
