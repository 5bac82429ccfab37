package store

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/rampart/internal/events"
	"grimm.is/rampart/internal/logging"
	"grimm.is/rampart/internal/metrics"
	"grimm.is/rampart/internal/model"
)

func startStore(t *testing.T, opts Options) *Store {
	t.Helper()
	s := New(opts)
	ctx, cancel := context.WithCancel(context.Background())
	go s.Run(ctx)
	t.Cleanup(func() {
		cancel()
		<-s.Done()
	})
	return s
}

func TestStore_DispatchApplies(t *testing.T) {
	s := startStore(t, Options{})
	ctx := context.Background()

	require.NoError(t, s.Dispatch(ctx, FetchPending[model.FirewallRule]{}))
	assert.True(t, s.Snapshot().Firewall.Loading)

	require.NoError(t, s.Dispatch(ctx, FetchFulfilled[model.FirewallRule]{Items: []model.FirewallRule{rule("1", model.ActionAllow)}}))
	snap, version := s.View()
	assert.Len(t, snap.Firewall.Items, 1)
	assert.False(t, snap.Firewall.Loading)
	assert.Equal(t, uint64(2), version)
	assert.Equal(t, version, s.Version())
}

func TestStore_SnapshotsAreStable(t *testing.T) {
	s := startStore(t, Options{})
	ctx := context.Background()

	require.NoError(t, s.Dispatch(ctx, FetchFulfilled[model.FirewallRule]{Items: []model.FirewallRule{rule("1", model.ActionAllow), rule("2", model.ActionBlock)}}))
	held := s.Snapshot()

	require.NoError(t, s.Dispatch(ctx, Toggled[model.FirewallRule]{ID: "1", Enabled: false}))
	require.NoError(t, s.Dispatch(ctx, Deleted[model.FirewallRule]{ID: "2"}))

	assert.Len(t, held.Firewall.Items, 2)
	assert.True(t, held.Firewall.Items[0].Enabled)
	assert.Len(t, s.Snapshot().Firewall.Items, 1)
}

func TestStore_AppliesInArrivalOrder(t *testing.T) {
	s := startStore(t, Options{})
	ctx := context.Background()

	require.NoError(t, s.Dispatch(ctx, FetchFulfilled[model.UserAccount]{Items: []model.UserAccount{{ID: "1", FullName: "original"}}}))

	// Two updates of the same record: the one that arrives last wins,
	// regardless of which was issued first.
	issuedFirst := Updated[model.UserAccount]{Record: model.UserAccount{ID: "1", FullName: "issued first"}}
	issuedSecond := Updated[model.UserAccount]{Record: model.UserAccount{ID: "1", FullName: "issued second"}}

	_, err := s.Send(issuedSecond)
	require.NoError(t, err)
	require.NoError(t, s.Dispatch(ctx, issuedFirst))

	assert.Equal(t, "issued first", s.Snapshot().Users.Items[0].FullName)
}

func TestStore_ConcurrentSenders(t *testing.T) {
	s := startStore(t, Options{})
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r := rule(string(rune('a'+i%26))+string(rune('a'+i/26)), model.ActionAllow)
			assert.NoError(t, s.Dispatch(ctx, Created[model.FirewallRule]{Record: r}))
		}(i)
	}
	wg.Wait()

	assert.Len(t, s.Snapshot().Firewall.Items, n)
	assert.Equal(t, uint64(n), s.Version())
}

func TestStore_PublishesEvents(t *testing.T) {
	hub := events.NewHub()
	changes := hub.Subscribe(16, events.EventStateChanged)
	defer changes.Close()
	rejections := hub.Subscribe(16, events.EventOperationRejected)
	defer rejections.Close()
	sessions := hub.Subscribe(16, events.EventSessionChanged)
	defer sessions.Close()

	s := startStore(t, Options{Hub: hub})
	ctx := context.Background()

	require.NoError(t, s.Dispatch(ctx, Created[model.FirewallRule]{Record: rule("1", model.ActionAllow)}))
	e := <-changes.C
	data := e.Data.(events.StateChangedData)
	assert.Equal(t, "firewall", data.Collection)
	assert.Equal(t, "created", data.Action)
	assert.Equal(t, uint64(1), data.Version)

	require.NoError(t, s.Dispatch(ctx, OperationRejected{Kind: model.KindVPN, Op: "delete", Message: "nope"}))
	<-changes.C
	rej := (<-rejections.C).Data.(events.OperationRejectedData)
	assert.Equal(t, events.OperationRejectedData{Collection: "vpn", Op: "delete", Message: "nope"}, rej)

	require.NoError(t, s.Dispatch(ctx, LoginFulfilled{User: model.Principal{Username: "admin"}}))
	sess := (<-sessions.C).Data.(events.SessionData)
	assert.True(t, sess.Authenticated)
	assert.Equal(t, "admin", sess.Username)
}

func TestStore_RecordsMetrics(t *testing.T) {
	reg := metrics.NewIsolated()
	s := startStore(t, Options{Metrics: reg})

	require.NoError(t, s.Dispatch(context.Background(), FetchFulfilled[model.VPNTunnel]{Items: []model.VPNTunnel{{ID: "1"}, {ID: "2"}}}))

	rec := httptestScrape(t, reg)
	assert.Contains(t, rec, "rampart_store_version 1")
	assert.Contains(t, rec, `rampart_collection_items{collection="vpn"} 2`)
}

func TestStore_TraceDiffs(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.Config{Level: logging.LevelDebug, Output: &buf, JSON: true})

	s := startStore(t, Options{Logger: logger, TraceDiffs: true})
	require.NoError(t, s.Dispatch(context.Background(), Created[model.FirewallRule]{Record: rule("1", model.ActionAllow)}))

	out := buf.String()
	assert.Contains(t, out, "state diff")
	assert.Contains(t, out, `+      \"id\": \"1\"`)
}

func TestStore_StopDrainsAndRejects(t *testing.T) {
	s := New(Options{})
	ctx, cancel := context.WithCancel(context.Background())

	applied, err := s.Send(Created[model.FirewallRule]{Record: rule("1", model.ActionAllow)})
	require.NoError(t, err)

	cancel()
	require.NoError(t, s.Run(ctx))

	select {
	case <-applied:
	case <-time.After(time.Second):
		t.Fatal("queued action was not applied on shutdown")
	}
	assert.Len(t, s.Snapshot().Firewall.Items, 1)

	_, err = s.Send(Deleted[model.FirewallRule]{ID: "1"})
	assert.ErrorIs(t, err, ErrStopped)
	assert.ErrorIs(t, s.Dispatch(context.Background(), Deleted[model.FirewallRule]{ID: "1"}), ErrStopped)
}

func TestStore_RunTwice(t *testing.T) {
	s := startStore(t, Options{})
	require.Eventually(t, s.running.Load, time.Second, time.Millisecond)
	assert.Error(t, s.Run(context.Background()))
}

func TestStore_DispatchContextCancelled(t *testing.T) {
	s := New(Options{}) // loop never started
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Dispatch(ctx, FetchPending[model.FirewallRule]{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStore_InitialOption(t *testing.T) {
	initial := Reduce(Initial(), Created[model.FirewallRule]{Record: rule("1", model.ActionAllow)})
	s := New(Options{Initial: &initial})
	assert.Len(t, s.Snapshot().Firewall.Items, 1)
	assert.Equal(t, uint64(0), s.Version())
}

func TestDiff(t *testing.T) {
	d, err := Diff("firewall", Initial().Firewall, Initial().Firewall)
	require.NoError(t, err)
	assert.Empty(t, d)

	after := Reduce(Initial(), FetchPending[model.FirewallRule]{})
	d, err = Diff("firewall", Initial().Firewall, after.Firewall)
	require.NoError(t, err)
	assert.Contains(t, d, `-  "loading": false,`)
	assert.Contains(t, d, `+  "loading": true,`)
}
