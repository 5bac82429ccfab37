package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/rampart/internal/dispatch"
	"grimm.is/rampart/internal/i18n"
	"grimm.is/rampart/internal/metrics"
	"grimm.is/rampart/internal/model"
	"grimm.is/rampart/internal/provider"
	"grimm.is/rampart/internal/provider/fixtures"
	"grimm.is/rampart/internal/provider/stub"
	"grimm.is/rampart/internal/store"
)

func newTestModel(t *testing.T) (Model, *store.Store, *provider.Faults) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	st := store.New(store.Options{})
	go func() { _ = st.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-st.Done()
	})

	faults := provider.NewFaults(0)
	d := dispatch.New(st, faults.Wrap(stub.New(fixtures.MustDefault())), dispatch.Options{Metrics: metrics.NewIsolated()})
	return NewModel(NewLocalBackend(d)), st, faults
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press sends key and then completes the operation it started, feeding the
// result and the refreshed snapshot back into the model.
func press(t *testing.T, m Model, key tea.KeyMsg) Model {
	t.Helper()
	next, cmd := m.Update(key)
	m = next.(Model)
	if cmd == nil {
		return m
	}
	done, ok := cmd().(opDoneMsg)
	require.True(t, ok, "key %q did not start an operation", key.String())
	next, cmd = m.Update(done)
	m = next.(Model)
	require.NotNil(t, cmd)
	next, _ = m.Update(cmd())
	return next.(Model)
}

func TestModel_FirewallOperations(t *testing.T) {
	m, st, _ := newTestModel(t)
	m.ActiveView = ViewFirewall

	m = press(t, m, runes("r"))
	require.Equal(t, 2, m.Firewall.Len())
	id, enabled, ok := m.Firewall.Selected()
	require.True(t, ok)
	assert.Equal(t, "1", id)
	assert.True(t, enabled)

	m = press(t, m, runes("d"))
	assert.Equal(t, 1, m.Firewall.Len())

	m = press(t, m, tea.KeyMsg{Type: tea.KeySpace})
	rules := st.Snapshot().Firewall.Items
	require.Len(t, rules, 1)
	assert.Equal(t, "2", rules[0].ID)
	assert.False(t, rules[0].Enabled)

	_, enabled, _ = m.Firewall.Selected()
	assert.False(t, enabled)
	assert.Contains(t, m.View(), "FIREWALL RULES")
}

func TestModel_InstallUpdate(t *testing.T) {
	m, st, _ := newTestModel(t)
	require.Equal(t, ViewDashboard, m.ActiveView)

	m = press(t, m, runes("r"))
	require.NotNil(t, m.Dashboard.System.Info)
	assert.Equal(t, 2, m.Dashboard.Updates.Len())

	m = press(t, m, runes("i"))
	info := st.Snapshot().System.Info
	require.NotNil(t, info)
	assert.Equal(t, "2.7.1", info.Version)
	assert.Contains(t, m.View(), "2.7.1")

	// The selected update is now installed, so i does nothing.
	_, cmd := m.Update(runes("i"))
	assert.Nil(t, cmd)
}

func TestModel_OperationError(t *testing.T) {
	m, st, faults := newTestModel(t)
	m.ActiveView = ViewUsers
	m = press(t, m, runes("r"))
	require.Equal(t, 3, m.Users.Len())

	faults.Fail(model.KindUsers, provider.OpDelete, "account is locked")
	m = press(t, m, runes("d"))

	assert.True(t, m.statusBad)
	assert.Contains(t, m.status, "account is locked")
	assert.Len(t, st.Snapshot().Users.Items, 3)
}

func TestModel_Navigation(t *testing.T) {
	m, _, _ := newTestModel(t)

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)
	assert.Equal(t, ViewFirewall, m.ActiveView)

	next, _ = m.Update(runes("5"))
	m = next.(Model)
	assert.Equal(t, ViewUsers, m.ActiveView)

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)
	assert.Equal(t, ViewDashboard, m.ActiveView)

	next, _ = m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(Model)
	assert.Equal(t, 120, m.Width)

	_, cmd := m.Update(runes("q"))
	require.NotNil(t, cmd)
	assert.Equal(t, tea.QuitMsg{}, cmd())
}

func TestModel_RuleForm(t *testing.T) {
	m, _, _ := newTestModel(t)

	// Only the firewall view creates records.
	next, _ := m.Update(runes("n"))
	m = next.(Model)
	assert.Nil(t, m.form)

	m.ActiveView = ViewFirewall
	next, _ = m.Update(runes("n"))
	m = next.(Model)
	require.NotNil(t, m.form)
	assert.Contains(t, m.View(), "NEW FIREWALL RULE")

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = next.(Model)
	assert.Nil(t, m.form)
}

func TestRuleForm_Rule(t *testing.T) {
	f := newRuleForm()
	f.Protocol = model.ProtocolICMP
	f.DestinationPort = "53"
	_, err := f.Rule()
	require.Error(t, err, "icmp has no ports")

	f.Description = "  Allow DNS "
	f.Protocol = model.ProtocolUDP
	rule, err := f.Rule()
	require.NoError(t, err)
	assert.Equal(t, "Allow DNS", rule.Description)
	assert.Equal(t, model.ProtocolUDP, rule.Protocol)
	assert.Empty(t, rule.ID)
}

func TestRuleForm_Validators(t *testing.T) {
	for _, ok := range []string{"any", "10.0.0.1", "192.168.1.0/24", " fd00::/8 "} {
		assert.NoError(t, validEndpoint(ok), ok)
	}
	for _, bad := range []string{"", "10.0.0.256", "lan"} {
		assert.Error(t, validEndpoint(bad), bad)
	}

	for _, ok := range []string{"any", "443", "8000-8080", "65535"} {
		assert.NoError(t, validPort(ok), ok)
	}
	for _, bad := range []string{"", "0", "70000", "1-2-3", "80-", "http"} {
		assert.Error(t, validPort(bad), bad)
	}
}

func TestProgressBar(t *testing.T) {
	assert.Contains(t, progressBar(0.5), " 50%")
	assert.Contains(t, progressBar(2), "100%")
	assert.Contains(t, progressBar(-1), "  0%")
	assert.Equal(t, progressBar(0), capacityBar(model.Capacity{}))
}

func TestFillUsers_LastLoginLocalized(t *testing.T) {
	users := store.Collection[model.UserAccount]{Items: []model.UserAccount{
		{ID: "1", Username: "new", LastLogin: model.NeverLoggedIn},
		{ID: "2", Username: "old", LastLogin: "2023-03-15 14:30:00"},
	}}

	m := newUsersTable()
	fillUsers(&m, users, i18n.ForLanguage("tr"))
	rows := m.Table.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "Hiç giriş yapılmadı", rows[0][6])
	assert.Equal(t, "2023-03-15 14:30:00", rows[1][6])

	fillUsers(&m, users, i18n.ForLanguage("en"))
	assert.Equal(t, "Never logged in", m.Table.Rows()[0][6])
}
