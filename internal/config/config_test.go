package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	assert.Equal(t, 16*time.Millisecond, cfg.Simulation.TickRate)
	assert.Equal(t, 4.0, cfg.Simulation.GridCellSize)
	assert.True(t, cfg.Simulation.CoopMode)
	assert.Equal(t, 0.11, cfg.Combat.CritBaseChance)
	assert.Equal(t, 100*time.Millisecond, cfg.Interp.RenderDelay)
	assert.Equal(t, 12.0, cfg.Interp.SnapDistance)
	assert.Equal(t, 64, cfg.Network.MaxMsgPerTick)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "client.toml")
	raw := `
[simulation]
tick_rate = "33ms"
coop_mode = false

[interp]
render_delay = "150ms"
snap_distance = 20.0

[network]
server_url = "ws://play.example.com/sim"

[logging]
level = "debug"
format = "json"
`
	err := os.WriteFile(path, []byte(raw), 0o644)
	assert.NoError(t, err)

	cfg, err := Load(path)
	assert.NoError(t, err)

	assert.Equal(t, 33*time.Millisecond, cfg.Simulation.TickRate)
	assert.False(t, cfg.Simulation.CoopMode)
	assert.Equal(t, 150*time.Millisecond, cfg.Interp.RenderDelay)
	assert.Equal(t, 20.0, cfg.Interp.SnapDistance)
	assert.Equal(t, "ws://play.example.com/sim", cfg.Network.ServerURL)
	assert.Equal(t, "json", cfg.Logging.Format)

	// Sections absent from the file keep their defaults.
	assert.Equal(t, 0.11, cfg.Combat.CritBaseChance)
	assert.Equal(t, 128, cfg.Combat.DamageNumberCap)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	assert.NoError(t, os.WriteFile(path, []byte("[simulation\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
