// Package tui is the terminal console. It renders store snapshots and
// dispatches operations through a Backend.
package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/message"

	"grimm.is/rampart/internal/brand"
	"grimm.is/rampart/internal/i18n"
	"grimm.is/rampart/internal/model"
	"grimm.is/rampart/internal/store"
)

// View represents the currently active screen
type View int

const (
	ViewDashboard View = iota
	ViewFirewall
	ViewVPN
	ViewNetwork
	ViewUsers
	viewCount
)

// pollInterval is how often the console re-reads the snapshot.
const pollInterval = time.Second

var menus = []struct {
	View  View
	Label string
	Key   string
	Kind  model.Kind
}{
	{ViewDashboard, "System", "1", model.KindSystem},
	{ViewFirewall, "Firewall", "2", model.KindFirewall},
	{ViewVPN, "VPN", "3", model.KindVPN},
	{ViewNetwork, "Network", "4", model.KindNetwork},
	{ViewUsers, "Users", "5", model.KindUsers},
}

type (
	snapshotMsg struct {
		state   store.State
		version uint64
	}
	snapshotErrMsg struct{ err error }
	tickMsg        time.Time
	opDoneMsg      struct {
		label string
		err   error
	}
)

// Model is the main application state
type Model struct {
	Backend Backend
	Printer *message.Printer // locale for display text

	ActiveView View
	Width      int
	Height     int

	Dashboard DashboardModel
	Firewall  TableModel
	VPN       TableModel
	Network   TableModel
	Users     TableModel

	version   uint64
	spinner   spinner.Model
	inFlight  int
	status    string
	statusBad bool

	form  *huh.Form
	draft *ruleForm
}

// NewModel creates a new initial model
func NewModel(backend Backend) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colors.accent)

	return Model{
		Backend:    backend,
		Printer:    i18n.NewCLIPrinter(),
		ActiveView: ViewDashboard,
		Dashboard:  NewDashboardModel(),
		Firewall:   newFirewallTable(),
		VPN:        newVPNTable(),
		Network:    newNetworkTable(),
		Users:      newUsersTable(),
		spinner:    sp,
	}
}

// Init loads every collection and starts polling the snapshot.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, m.loadSnapshot(), tick()}
	for _, menu := range menus {
		cmds = append(cmds, m.fetch(menu.Kind))
	}
	return tea.Batch(cmds...)
}

func tick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) loadSnapshot() tea.Cmd {
	return func() tea.Msg {
		s, v, err := m.Backend.Snapshot(context.Background())
		if err != nil {
			return snapshotErrMsg{err}
		}
		return snapshotMsg{state: s, version: v}
	}
}

func (m Model) run(label string, op func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		return opDoneMsg{label: label, err: op(context.Background())}
	}
}

func (m Model) fetch(kind model.Kind) tea.Cmd {
	return m.run("fetch "+string(kind), func(ctx context.Context) error {
		return m.Backend.Fetch(ctx, kind)
	})
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.Dashboard, _ = m.Dashboard.Update(msg)
		m.Firewall, _ = m.Firewall.Update(msg)
		m.VPN, _ = m.VPN.Update(msg)
		m.Network, _ = m.Network.Update(msg)
		m.Users, _ = m.Users.Update(msg)
		if m.form != nil {
			m.form = m.form.WithWidth(msg.Width - 4)
		}
		return m, nil

	case snapshotMsg:
		if msg.version != m.version || m.version == 0 {
			m.apply(msg.state, msg.version)
		}
		return m, nil

	case snapshotErrMsg:
		m.setStatus(fmt.Sprintf("snapshot: %v", msg.err), true)
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.loadSnapshot(), tick())

	case opDoneMsg:
		m.inFlight = max(m.inFlight-1, 0)
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("%s: %v", msg.label, msg.err), true)
		} else {
			m.setStatus(msg.label+": done", false)
		}
		return m, m.loadSnapshot()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.form != nil {
		return m.updateForm(msg)
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		if next, cmd, handled := m.handleKey(key); handled {
			return next, cmd
		}
	}

	var cmd tea.Cmd
	switch m.ActiveView {
	case ViewDashboard:
		m.Dashboard, cmd = m.Dashboard.Update(msg)
	case ViewFirewall:
		m.Firewall, cmd = m.Firewall.Update(msg)
	case ViewVPN:
		m.VPN, cmd = m.VPN.Update(msg)
	case ViewNetwork:
		m.Network, cmd = m.Network.Update(msg)
	case ViewUsers:
		m.Users, cmd = m.Users.Update(msg)
	}
	return m, cmd
}

func (m Model) handleKey(key tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch key.String() {
	case "q", "ctrl+c":
		return m, tea.Quit, true
	case "tab":
		m.ActiveView = (m.ActiveView + 1) % viewCount
		return m, nil, true
	case "shift+tab":
		m.ActiveView = (m.ActiveView + viewCount - 1) % viewCount
		return m, nil, true
	case "r":
		m.inFlight++
		return m, m.fetch(menus[m.ActiveView].Kind), true
	}

	for _, menu := range menus {
		if key.String() == menu.Key {
			m.ActiveView = menu.View
			return m, nil, true
		}
	}

	if m.ActiveView == ViewDashboard {
		if key.String() == "i" {
			id, installed, ok := m.Dashboard.Updates.Selected()
			if !ok || installed {
				return m, nil, true
			}
			m.inFlight++
			return m, m.run("install update "+id, func(ctx context.Context) error {
				return m.Backend.InstallUpdate(ctx, id)
			}), true
		}
		return m, nil, false
	}

	table := m.activeTable()
	switch key.String() {
	case " ", "t":
		id, enabled, ok := table.Selected()
		if !ok {
			return m, nil, true
		}
		m.inFlight++
		kind := table.Kind
		return m, m.run(fmt.Sprintf("toggle %s %s", kind, id), func(ctx context.Context) error {
			return m.Backend.Toggle(ctx, kind, id, !enabled)
		}), true
	case "d", "delete":
		id, _, ok := table.Selected()
		if !ok {
			return m, nil, true
		}
		m.inFlight++
		kind := table.Kind
		return m, m.run(fmt.Sprintf("delete %s %s", kind, id), func(ctx context.Context) error {
			return m.Backend.Delete(ctx, kind, id)
		}), true
	case "n":
		if m.ActiveView != ViewFirewall {
			return m, nil, true
		}
		m.draft = newRuleForm()
		m.form = m.draft.Form()
		if m.Width > 0 {
			m.form = m.form.WithWidth(m.Width - 4)
		}
		return m, m.form.Init(), true
	}
	return m, nil, false
}

func (m Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		m.form, m.draft = nil, nil
		return m, nil
	}

	next, cmd := m.form.Update(msg)
	if f, ok := next.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateAborted:
		m.form, m.draft = nil, nil
		return m, nil
	case huh.StateCompleted:
		rule, err := m.draft.Rule()
		m.form, m.draft = nil, nil
		if err != nil {
			m.setStatus(fmt.Sprintf("invalid rule: %v", err), true)
			return m, nil
		}
		m.inFlight++
		return m, m.run("create rule", func(ctx context.Context) error {
			return m.Backend.CreateRule(ctx, rule)
		})
	}
	return m, cmd
}

func (m *Model) apply(s store.State, version uint64) {
	m.version = version
	m.Dashboard.fill(s.System)
	fillFirewall(&m.Firewall, s.Firewall)
	fillVPN(&m.VPN, s.VPN)
	fillNetwork(&m.Network, s.Network)
	fillUsers(&m.Users, s.Users, m.Printer)
}

func (m *Model) setStatus(s string, bad bool) {
	m.status, m.statusBad = s, bad
}

func (m *Model) activeTable() *TableModel {
	switch m.ActiveView {
	case ViewFirewall:
		return &m.Firewall
	case ViewVPN:
		return &m.VPN
	case ViewNetwork:
		return &m.Network
	case ViewUsers:
		return &m.Users
	}
	return &m.Dashboard.Updates
}

func (m Model) loading() bool {
	return m.inFlight > 0 || m.activeTable().loading
}

// View renders the application
func (m Model) View() string {
	doc := m.ViewTopBar() + "\n"

	if m.form != nil {
		doc += theme.Header.Render("NEW FIREWALL RULE (esc: cancel)") + "\n" + m.form.View()
		return theme.App.Render(doc)
	}

	switch m.ActiveView {
	case ViewDashboard:
		doc += m.Dashboard.View()
	case ViewFirewall:
		doc += m.Firewall.View("FIREWALL RULES (n: new)")
	case ViewVPN:
		doc += m.VPN.View("VPN TUNNELS")
	case ViewNetwork:
		doc += m.Network.View("NETWORK INTERFACES")
	case ViewUsers:
		doc += m.Users.View("USER ACCOUNTS")
	}

	doc += "\n" + m.statusLine()
	doc += "\n" + theme.Help.Render("tab/1-5: views  r: refresh  space: toggle  d: delete  q: quit")
	return theme.App.Render(doc)
}

func (m Model) statusLine() string {
	line := ""
	if m.loading() {
		line = m.spinner.View() + " "
	}
	switch {
	case m.status == "":
	case m.statusBad:
		line += theme.Bad.Render(m.status)
	default:
		line += theme.Good.Render(m.status)
	}
	return line
}

// ViewTopBar renders the top navigation menu
func (m Model) ViewTopBar() string {
	items := []string{theme.Title.Render(brand.Name + " ")}
	for _, menu := range menus {
		key := theme.MenuKey.Render("[" + menu.Key + "]")
		if m.ActiveView == menu.View {
			items = append(items, theme.MenuActive.Render(key+" "+menu.Label))
		} else {
			items = append(items, theme.Menu.Render(key+" "+menu.Label))
		}
	}
	return theme.TopBar.Render(lipgloss.JoinHorizontal(lipgloss.Top, items...))
}
