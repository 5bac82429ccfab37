package provider_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/rampart/internal/model"
	"grimm.is/rampart/internal/provider"
	"grimm.is/rampart/internal/provider/fixtures"
	"grimm.is/rampart/internal/provider/stub"
)

func TestMessage(t *testing.T) {
	msg, ok := provider.Message(fmt.Errorf("wrapped: %w", provider.Errorf("quota of %d reached", 5)))
	assert.True(t, ok)
	assert.Equal(t, "quota of 5 reached", msg)

	_, ok = provider.Message(errors.New("plain"))
	assert.False(t, ok)

	_, ok = provider.Message(&provider.Error{Err: errors.New("no message")})
	assert.False(t, ok)
}

func TestError_Unwrap(t *testing.T) {
	err := &provider.Error{Message: "Record not found", Err: provider.ErrNotFound}
	assert.ErrorIs(t, err, provider.ErrNotFound)
	assert.Equal(t, "Record not found: not found", err.Error())
}

func TestSupports(t *testing.T) {
	assert.True(t, provider.Supports(model.KindFirewall, provider.OpToggle))
	assert.True(t, provider.Supports(model.KindSystem, provider.OpInstall))
	assert.False(t, provider.Supports(model.KindSystem, provider.OpToggle))
	assert.False(t, provider.Supports(model.KindSession, provider.OpFetch))
}

func TestFaults(t *testing.T) {
	faults := provider.NewFaults(0)
	set := faults.Wrap(stub.New(fixtures.MustDefault()))
	ctx := context.Background()

	rules, err := set.Firewall.List(ctx)
	require.NoError(t, err)
	assert.Len(t, rules, 2)

	faults.Fail(model.KindFirewall, provider.OpFetch, "appliance unreachable")
	_, err = set.Firewall.List(ctx)
	require.Error(t, err)
	msg, ok := provider.Message(err)
	assert.True(t, ok)
	assert.Equal(t, "appliance unreachable", msg)

	// Other operations and collections are unaffected.
	_, err = set.Firewall.Delete(ctx, "1")
	assert.NoError(t, err)
	_, err = set.VPN.List(ctx)
	assert.NoError(t, err)

	faults.Fail(model.KindSystem, provider.OpReboot, "")
	err = set.System.Reboot(ctx)
	require.Error(t, err)
	_, ok = provider.Message(err)
	assert.False(t, ok, "a fault without message carries no operator text")

	faults.Heal(model.KindFirewall, provider.OpFetch)
	_, err = set.Firewall.List(ctx)
	assert.NoError(t, err)
}

func TestFaults_EveryCallChecked(t *testing.T) {
	faults := provider.NewFaults(0)
	set := faults.Wrap(stub.New(fixtures.MustDefault()))
	ctx := context.Background()

	for kind, ops := range provider.Ops {
		for _, op := range ops {
			faults.Fail(kind, op, "x")
		}
	}

	_, err := set.Network.Create(ctx, model.NetworkInterface{})
	assert.Error(t, err)
	_, err = set.Network.Update(ctx, model.NetworkInterface{})
	assert.Error(t, err)
	_, err = set.Users.Toggle(ctx, "1", false)
	assert.Error(t, err)
	_, err = set.System.Info(ctx)
	assert.Error(t, err)
	_, err = set.System.Updates(ctx)
	assert.Error(t, err)
	_, err = set.System.InstallUpdate(ctx, "1")
	assert.Error(t, err)
	_, err = set.Auth.Login(ctx, "admin", "admin")
	assert.Error(t, err)
	assert.Error(t, set.Auth.Logout(ctx))
}

func TestFaults_Latency(t *testing.T) {
	set := provider.NewFaults(30 * time.Millisecond).Wrap(stub.New(fixtures.MustDefault()))

	start := time.Now()
	_, err := set.VPN.List(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = set.VPN.List(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
