package host

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/rampart/internal/provider/fixtures"
	"grimm.is/rampart/internal/provider/stub"
)

func TestInfo_SamplesHost(t *testing.T) {
	s := New(stub.New(fixtures.MustDefault()).System, "", nil)

	info, err := s.Info(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, info.Hostname)
	assert.NotEmpty(t, info.Uptime)
	assert.Equal(t, "2.7.0", info.Version, "version comes from the installed update")
	assert.Positive(t, info.Memory.Total)
	assert.GreaterOrEqual(t, info.CPU.Usage, 0.0)
}

func TestDelegates(t *testing.T) {
	s := New(stub.New(fixtures.MustDefault()).System, "/", nil)
	ctx := context.Background()

	updates, err := s.Updates(ctx)
	require.NoError(t, err)
	assert.Len(t, updates, 2)

	id, err := s.InstallUpdate(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "1", id)
	assert.NoError(t, s.Reboot(ctx))
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 15.3, round1(15.26))
	assert.Equal(t, 0.0, round1(0))
}
