package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/message"

	"grimm.is/rampart/internal/i18n"
	"grimm.is/rampart/internal/model"
	"grimm.is/rampart/internal/store"
)

// TableModel lists the records of one collection.
type TableModel struct {
	Kind  model.Kind
	Table table.Model

	ids     []string
	enabled []bool
	err     string
	loading bool
}

func newTable(kind model.Kind, columns []table.Column) TableModel {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(colors.slate).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(colors.accent).
		Background(colors.dark).
		Bold(false)
	t.SetStyles(s)

	return TableModel{Kind: kind, Table: t}
}

// Selected returns the id and enabled state of the highlighted row.
func (m TableModel) Selected() (id string, enabled bool, ok bool) {
	i := m.Table.Cursor()
	if i < 0 || i >= len(m.ids) {
		return "", false, false
	}
	return m.ids[i], m.enabled[i], true
}

// Len is the number of rows.
func (m TableModel) Len() int {
	return len(m.ids)
}

func (m TableModel) Update(msg tea.Msg) (TableModel, tea.Cmd) {
	if size, ok := msg.(tea.WindowSizeMsg); ok {
		m.Table.SetHeight(max(size.Height-12, 3))
		return m, nil
	}
	var cmd tea.Cmd
	m.Table, cmd = m.Table.Update(msg)
	return m, cmd
}

func (m TableModel) View(title string) string {
	parts := []string{
		theme.Header.Render(fmt.Sprintf("%s (%d)", title, len(m.ids))),
		theme.Card.Render(m.Table.View()),
	}
	if m.err != "" {
		parts = append(parts, theme.Bad.Render("! "+m.err))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// fill replaces the rows with items.
func fill[T model.Record[T]](m *TableModel, c store.Collection[T], row func(T) table.Row, enabled func(T) bool) {
	rows := make([]table.Row, len(c.Items))
	m.ids = make([]string, len(c.Items))
	m.enabled = make([]bool, len(c.Items))
	for i, rec := range c.Items {
		rows[i] = row(rec)
		m.ids[i] = rec.RecordID()
		m.enabled[i] = enabled(rec)
	}
	m.Table.SetRows(rows)
	if m.Table.Cursor() >= len(rows) {
		m.Table.SetCursor(max(len(rows)-1, 0))
	}
	m.err = c.Error
	m.loading = c.Loading
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func newFirewallTable() TableModel {
	return newTable(model.KindFirewall, []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Action", Width: 7},
		{Title: "Proto", Width: 6},
		{Title: "Source", Width: 18},
		{Title: "Destination", Width: 18},
		{Title: "Port", Width: 11},
		{Title: "On", Width: 4},
		{Title: "Description", Width: 30},
	})
}

func fillFirewall(m *TableModel, c store.Collection[model.FirewallRule]) {
	fill(m, c, func(r model.FirewallRule) table.Row {
		return table.Row{r.ID, string(r.Action), string(r.Protocol), r.Source, r.Destination, r.DestinationPort, yesNo(r.Enabled), r.Description}
	}, func(r model.FirewallRule) bool { return r.Enabled })
}

func newVPNTable() TableModel {
	return newTable(model.KindVPN, []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Name", Width: 16},
		{Title: "Type", Width: 10},
		{Title: "Status", Width: 9},
		{Title: "Local", Width: 18},
		{Title: "Remote", Width: 18},
		{Title: "Description", Width: 24},
	})
}

func fillVPN(m *TableModel, c store.Collection[model.VPNTunnel]) {
	fill(m, c, func(t model.VPNTunnel) table.Row {
		return table.Row{t.ID, t.Name, string(t.Type), string(t.Status), t.LocalNetwork, t.RemoteNetwork, t.Description}
	}, func(t model.VPNTunnel) bool { return t.Status == model.TunnelActive })
}

func newNetworkTable() TableModel {
	return newTable(model.KindNetwork, []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Name", Width: 8},
		{Title: "Type", Width: 5},
		{Title: "Address", Width: 15},
		{Title: "Subnet", Width: 15},
		{Title: "Gateway", Width: 15},
		{Title: "Link", Width: 5},
		{Title: "MAC", Width: 17},
		{Title: "MTU", Width: 5},
	})
}

func fillNetwork(m *TableModel, c store.Collection[model.NetworkInterface]) {
	fill(m, c, func(n model.NetworkInterface) table.Row {
		return table.Row{n.ID, n.Name, string(n.Type), n.IPAddress, n.Subnet, n.Gateway, string(n.Status), n.MAC, strconv.Itoa(n.MTU)}
	}, func(n model.NetworkInterface) bool { return n.Enabled })
}

func newUsersTable() TableModel {
	return newTable(model.KindUsers, []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Username", Width: 12},
		{Title: "Name", Width: 18},
		{Title: "Email", Width: 24},
		{Title: "Role", Width: 9},
		{Title: "On", Width: 4},
		{Title: "Last login", Width: 19},
	})
}

func fillUsers(m *TableModel, c store.Collection[model.UserAccount], p *message.Printer) {
	fill(m, c, func(u model.UserAccount) table.Row {
		return table.Row{u.ID, u.Username, u.FullName, u.Email, string(u.Role), yesNo(u.Enabled), lastLogin(p, u.LastLogin)}
	}, func(u model.UserAccount) bool { return u.Enabled })
}

func lastLogin(p *message.Printer, stamp string) string {
	if stamp == model.NeverLoggedIn {
		return i18n.Text(p, i18n.MsgNeverLoggedIn)
	}
	return stamp
}
