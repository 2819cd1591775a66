package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, 1024, cfg.Server.MaxSessions)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Empty(t, cfg.Database.URL)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 100, cfg.Combat.PlayerHP)
	assert.Equal(t, 8, cfg.Combat.HandSize)
	assert.Equal(t, 4, cfg.Combat.DiscardLimit)
	assert.Equal(t, 5, cfg.Combat.RunStages)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Address)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
server:
  address: ":9999"
database:
  url: "postgres://localhost/gambition"
  max_conns: 20
logging:
  level: debug
  development: true
combat:
  player_hp: 150
  hand_size: 10
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.Address)
	assert.Equal(t, "postgres://localhost/gambition", cfg.Database.URL)
	assert.Equal(t, int32(20), cfg.Database.MaxConns)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, 150, cfg.Combat.PlayerHP)
	assert.Equal(t, 10, cfg.Combat.HandSize)
	// Unset keys keep their defaults.
	assert.Equal(t, 4, cfg.Combat.DiscardLimit)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name string
		yaml string
	}{
		{"tiny hand", "combat:\n  hand_size: 3\n"},
		{"zero hp", "combat:\n  player_hp: 0\n"},
		{"negative discards", "combat:\n  discard_limit: -1\n"},
		{"zero stages", "combat:\n  run_stages: 0\n"},
		{"empty address", "server:\n  address: \"\"\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tc.yaml), 0o644))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}
