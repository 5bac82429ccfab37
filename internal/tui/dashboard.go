package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"grimm.is/rampart/internal/model"
	"grimm.is/rampart/internal/store"
)

// DashboardModel shows the system singleton and its update list.
type DashboardModel struct {
	System  store.SystemState
	Updates TableModel
}

func NewDashboardModel() DashboardModel {
	return DashboardModel{
		Updates: newTable(model.KindSystem, []table.Column{
			{Title: "ID", Width: 6},
			{Title: "Version", Width: 9},
			{Title: "Released", Width: 10},
			{Title: "Size", Width: 8},
			{Title: "Installed", Width: 9},
			{Title: "Description", Width: 40},
		}),
	}
}

func (m *DashboardModel) fill(s store.SystemState) {
	m.System = s
	rows := make([]table.Row, len(s.Updates))
	m.Updates.ids = make([]string, len(s.Updates))
	m.Updates.enabled = make([]bool, len(s.Updates))
	for i, u := range s.Updates {
		rows[i] = table.Row{u.ID, u.Version, u.ReleaseDate, u.Size, yesNo(u.Installed), u.Description}
		m.Updates.ids[i] = u.ID
		m.Updates.enabled[i] = u.Installed
	}
	m.Updates.Table.SetRows(rows)
	m.Updates.err = s.Error
	m.Updates.loading = s.Loading
}

func (m DashboardModel) Update(msg tea.Msg) (DashboardModel, tea.Cmd) {
	var cmd tea.Cmd
	m.Updates, cmd = m.Updates.Update(msg)
	return m, cmd
}

func (m DashboardModel) View() string {
	info := m.System.Info
	if info == nil {
		msg := "No system information yet (r: fetch)"
		if m.System.Error != "" {
			msg = theme.Bad.Render("! " + m.System.Error)
		}
		return theme.Card.Render(msg)
	}

	host := info.Hostname
	if info.Domain != "" {
		host += "." + info.Domain
	}
	statusBlock := theme.Card.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			theme.Title.Render(host),
			fmt.Sprintf("Version %s", info.Version),
			theme.Subtitle.Render(fmt.Sprintf("Uptime: %s", info.Uptime)),
		),
	)

	cpu := fmt.Sprintf("CPU:  %s", progressBar(info.CPU.Usage/100))
	if info.CPU.Temperature > 0 {
		cpu += fmt.Sprintf(" %.0f°C", info.CPU.Temperature)
	}
	usageBlock := theme.Card.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			theme.Title.Render(info.CPU.Model),
			cpu,
			fmt.Sprintf("RAM:  %s", capacityBar(info.Memory)),
			fmt.Sprintf("Disk: %s", capacityBar(info.Disk)),
		),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, statusBlock, usageBlock),
		m.Updates.View("UPDATES (i: install)"),
	)
}

func capacityBar(c model.Capacity) string {
	if c.Total <= 0 {
		return progressBar(0)
	}
	return progressBar(float64(c.Used) / float64(c.Total))
}

// progressBar renders a fraction in [0, 1].
func progressBar(fraction float64) string {
	fraction = min(max(fraction, 0), 1)
	w := 20
	filled := int(float64(w) * fraction)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", w-filled)
	return fmt.Sprintf("[%s] %3.0f%%", bar, fraction*100)
}
