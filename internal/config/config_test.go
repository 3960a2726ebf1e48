package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unijord/unitrigger/pkg/policy"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "node-1", cfg.Node.ID)
	assert.Equal(t, 5*time.Second, cfg.Node.ApplyTimeout)
	assert.True(t, cfg.Node.Bootstrap)
	assert.True(t, cfg.Triggers.Enabled)
	assert.Equal(t, "system", cfg.Triggers.SystemDatabase)
	assert.Equal(t, 4, cfg.Triggers.AsyncWorkers)
	assert.Equal(t, time.Minute, cfg.Sweeper.Interval)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Empty(t, cfg.OTel.Endpoint)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "unitrigger.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
node:
  id: node-2
  data_dir: /var/lib/unitrigger
  peers:
    - node-1=10.0.0.1:7000=10.0.0.1:7100
triggers:
  enabled: false
  databases: [movies]
sweeper:
  enabled: true
  interval: 30s
engine:
  procedures:
    - custom.audit=write
`), 0o644))

	t.Setenv("UNITRIGGER_TRIGGERS__ENABLED", "true")
	t.Setenv("UNITRIGGER_GRPC__ADDR", "0.0.0.0:9000")
	t.Setenv("UNITRIGGER_NODE__APPLY_TIMEOUT", "2s")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "node-2", cfg.Node.ID)
	assert.Equal(t, "/var/lib/unitrigger", cfg.Node.DataDir)
	assert.Equal(t, []string{"node-1=10.0.0.1:7000=10.0.0.1:7100"}, cfg.Node.Peers)
	assert.Equal(t, 2*time.Second, cfg.Node.ApplyTimeout)
	assert.True(t, cfg.Triggers.Enabled, "env overrides file")
	assert.Equal(t, []string{"movies"}, cfg.Triggers.Databases)
	assert.Equal(t, "0.0.0.0:9000", cfg.GRPC.Addr)
	assert.True(t, cfg.Sweeper.Enabled)
	assert.Equal(t, 30*time.Second, cfg.Sweeper.Interval)

	modes, err := cfg.Engine.ProcedureModes()
	require.NoError(t, err)
	assert.Equal(t, map[string]policy.Mode{"custom.audit": policy.ModeWrite}, modes)
}

func TestLoad_EnvList(t *testing.T) {
	t.Setenv("UNITRIGGER_TRIGGERS__DATABASES", "movies,music")
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"movies", "music"}, cfg.Triggers.Databases)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"system_target":  "triggers:\n  databases: [system]\n",
		"workers":        "triggers:\n  async_workers: 0\n",
		"format":         "log:\n  format: xml\n",
		"procedure_mode": "engine:\n  procedures: [\"x=ROOT\"]\n",
		"procedure_form": "engine:\n  procedures: [\"x\"]\n",
		"empty_id":       "node:\n  id: \"\"\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "c.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoad_DatabaseNamesCompareExactly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("triggers:\n  databases: [SYSTEM]\n"), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"SYSTEM"}, cfg.Triggers.Databases)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
