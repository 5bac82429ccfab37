package events

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, sub *Subscription) Event {
	t.Helper()
	select {
	case e := <-sub.C:
		return e
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
		return Event{}
	}
}

func TestHub_FilteredSubscription(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe(10, EventOperationRejected)
	defer sub.Close()

	hub.Publish(StateChanged("vpn", "fetch.pending", 1))
	hub.Publish(OperationRejected("vpn", "delete", "Failed to delete VPN tunnel"))
	hub.Publish(SessionChanged("", false))

	e := receive(t, sub)
	assert.Equal(t, EventOperationRejected, e.Type)
	assert.Equal(t, "store", e.Source)
	assert.False(t, e.Timestamp.IsZero())
	assert.Equal(t, OperationRejectedData{Collection: "vpn", Op: "delete", Message: "Failed to delete VPN tunnel"}, e.Data)
	assert.Empty(t, sub.C)
}

func TestHub_AllTypes(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe(0)
	defer sub.Close()

	hub.Publish(StateChanged("firewall", "created", 3))
	hub.Publish(SessionChanged("admin", true))

	assert.Equal(t, StateChangedData{Collection: "firewall", Action: "created", Version: 3}, receive(t, sub).Data)
	assert.Equal(t, SessionData{Username: "admin", Authenticated: true}, receive(t, sub).Data)
	assert.Equal(t, uint64(2), hub.Published())
}

func TestSubscription_Close(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe(4)
	require.Equal(t, 1, hub.Len())

	sub.Close()
	sub.Close()
	assert.Equal(t, 0, hub.Len())

	hub.Publish(StateChanged("firewall", "created", 1))
	_, ok := <-sub.C
	assert.False(t, ok, "closed subscription channel should be closed")
}

func TestSubscription_DropsWhenFull(t *testing.T) {
	hub := NewHub()
	slow := hub.Subscribe(1)
	defer slow.Close()
	fast := hub.Subscribe(8)
	defer fast.Close()

	for i := range 5 {
		hub.Publish(StateChanged("firewall", "created", uint64(i)))
	}

	assert.Equal(t, uint64(4), slow.Dropped())
	assert.Zero(t, fast.Dropped())
	assert.Len(t, fast.C, 5)
}

func TestHub_ConcurrentPublishAndClose(t *testing.T) {
	hub := NewHub()
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub := hub.Subscribe(1)
			for j := range 50 {
				hub.Publish(StateChanged("network", "toggled", uint64(j)))
			}
			sub.Close()
		}()
	}
	wg.Wait()

	assert.Equal(t, 0, hub.Len())
	assert.Equal(t, uint64(400), hub.Published())
}
