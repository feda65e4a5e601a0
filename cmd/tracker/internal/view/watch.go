package view

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/GregMSThompson/transaction-tracker/internal/dto"
	"github.com/GregMSThompson/transaction-tracker/internal/syncpoll"
)

// Poller is the part of syncpoll.Poller the watch view drives.
type Poller interface {
	SetRange(r *dto.DateRange)
	Refresh()
}

// SnapshotMsg carries a poller update into the bubbletea loop.
type SnapshotMsg syncpoll.Snapshot

type WatchModel struct {
	poller Poller
	table  table.Model
	snap   syncpoll.Snapshot

	rng    dto.DateRange
	preset RangePreset
	sort   SortOption
	now    func() time.Time
}

func NewWatchModel(p Poller, r dto.DateRange, sort SortOption) WatchModel {
	columns := []table.Column{
		{Title: Headers[0], Width: 12},
		{Title: Headers[1], Width: 40},
		{Title: Headers[2], Width: 14},
		{Title: Headers[3], Width: 12},
		{Title: Headers[4], Width: 9},
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(15),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return WatchModel{
		poller: p,
		table:  t,
		rng:    r,
		sort:   sort,
		now:    time.Now,
	}
}

func (m WatchModel) ShortHelp() string {
	return "s: sort | d: date range | r: refresh | q: quit"
}

func (m WatchModel) Init() tea.Cmd {
	return m.setRangeCmd()
}

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case SnapshotMsg:
		m.snap = syncpoll.Snapshot(msg)
		m.refreshTable()
		return m, nil

	case tea.WindowSizeMsg:
		m.table.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "s":
			m.sort = m.sort.Next()
			m.refreshTable()
			return m, nil
		case "d":
			m.preset = m.preset.Next()
			m.rng = m.preset.Range(m.now())
			return m, m.setRangeCmd()
		case "r":
			return m, m.refreshCmd()
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m WatchModel) View() string {
	header := fmt.Sprintf(
		"[d] Range: %s | [s] Sort: %s",
		activeStyle(m.rng.Start+" → "+m.rng.End),
		activeStyle(m.sort.Label()),
	)
	if label := SyncLabel(m.snap.Status); label != "" {
		header += " | " + lipgloss.NewStyle().Faint(true).Render(label)
	}

	var body string
	switch {
	case m.snap.Loading() || m.snap.Range == nil:
		body = lipgloss.NewStyle().Padding(2).Render("Loading transactions...")
	case len(m.snap.Transactions) == 0 && m.snap.Err == nil:
		body = lipgloss.NewStyle().Padding(2).Render("No transactions found.")
	default:
		body = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Render(m.table.View())
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.NewStyle().PaddingBottom(1).Render(header),
		body,
	)

	if m.snap.Err != nil {
		errLine := lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render(fmt.Sprintf("Error: %v (r to retry)", m.snap.Err))
		content = errLine + "\n" + content
	}

	footer := lipgloss.NewStyle().Faint(true).Render(m.ShortHelp())
	return lipgloss.NewStyle().Padding(1).Render(content + "\n" + footer)
}

func activeStyle(s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Render(s)
}

func (m *WatchModel) refreshTable() {
	sorted := Sort(m.snap.Transactions, m.sort)
	rows := make([]table.Row, 0, len(sorted))
	for _, tx := range sorted {
		rows = append(rows, table.Row(Row(tx)))
	}
	m.table.SetRows(rows)
}

// Poller calls run off the bubbletea loop so an in-flight update can be
// delivered while the poller switches ranges.

func (m WatchModel) setRangeCmd() tea.Cmd {
	p, r := m.poller, m.rng
	return func() tea.Msg {
		p.SetRange(&r)
		return nil
	}
}

func (m WatchModel) refreshCmd() tea.Cmd {
	p := m.poller
	return func() tea.Msg {
		p.Refresh()
		return nil
	}
}
