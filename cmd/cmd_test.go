package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grimm.is/rampart/internal/config"
	"grimm.is/rampart/internal/store"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rampart.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestRunCheck_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
listen = ":9090"
provider {
  backend = "kv"
}
fault "firewall" "delete" {
  message = "rule is locked"
}
`)

	var out bytes.Buffer
	require.NoError(t, RunCheck(&out, path, true))
	assert.Contains(t, out.String(), "Configuration valid!")
	assert.Contains(t, out.String(), "Backend: kv")
	assert.Contains(t, out.String(), "firewall delete: rule is locked")
}

func TestRunCheck_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", "provider {\n  backend = \"stub\"\n"},
		{"unknown backend", "provider {\n  backend = \"postgres\"\n}\n"},
		{"unknown op", "fault \"system\" \"toggle\" {}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := RunCheck(&bytes.Buffer{}, writeConfig(t, tt.body), false)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "configuration invalid")
		})
	}
}

func TestRunCheck_MissingFile(t *testing.T) {
	require.Error(t, RunCheck(&bytes.Buffer{}, "", false))
	require.Error(t, RunCheck(&bytes.Buffer{}, filepath.Join(t.TempDir(), "absent.hcl"), false))
}

func TestRunConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "etc", "rampart.hcl")
	require.NoError(t, RunConfigInit(path, false))
	require.Error(t, RunConfigInit(path, false), "existing file is kept")
	require.NoError(t, RunConfigInit(path, true))

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, config.Defaults().Listen, cfg.Listen)
	assert.Equal(t, config.BackendStub, cfg.Provider.Backend)
}

func TestRunSnapshot_Summary(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, RunSnapshot(context.Background(), config.Defaults(), &out, false))

	s := out.String()
	assert.Contains(t, s, "COLLECTION")
	assert.Regexp(t, `firewall\s+2\s+2`, s)
	assert.Regexp(t, `users\s+3`, s)
	assert.Regexp(t, `updates\s+2\s+1`, s)
	assert.Contains(t, s, "version 2.7.0")
}

func TestRunSnapshot_JSON(t *testing.T) {
	cfg, err := config.LoadHCL([]byte(`
provider {
  backend = "kv"
}
fault "vpn" "fetch" {
  message = "tunnel daemon unreachable"
}
`), "test.hcl")
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, RunSnapshot(context.Background(), cfg, &out, true))

	var got struct {
		Version uint64      `json:"version"`
		State   store.State `json:"state"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.NotZero(t, got.Version)
	assert.Len(t, got.State.Firewall.Items, 2)
	assert.Empty(t, got.State.VPN.Items)
	assert.Equal(t, "tunnel daemon unreachable", got.State.VPN.Error)
	assert.False(t, got.State.VPN.Loading)
}

func TestNewApp_BadSeedFile(t *testing.T) {
	cfg := config.Defaults()
	cfg.Provider.SeedFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err := newApp(cfg, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load seed records")
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	c := newVersionCmd()
	c.SetOut(&out)
	c.SetArgs(nil)
	require.NoError(t, c.Execute())
	assert.Contains(t, out.String(), "Rampart")
}
