package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tilecore.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
[world]
fixed_step = "10ms"
max_sub_steps = 0

[world.contact_filter]
hit = ["hurt"]
feet = ["ground", "platform"]

[loop]
tick_rate = "20ms"

[logging]
format = "json"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10*time.Millisecond, cfg.World.FixedStep)
	assert.Equal(t, 0, cfg.World.MaxSubSteps)
	assert.Equal(t, map[string][]string{"hit": {"hurt"}, "feet": {"ground", "platform"}}, cfg.World.ContactFilter)
	assert.Equal(t, 20*time.Millisecond, cfg.Loop.TickRate)
	assert.Equal(t, "json", cfg.Logging.Format)

	assert.Equal(t, 32.0, cfg.World.PixelsPerMeter, "untouched keys keep defaults")
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Engine.AutoSetAlive)
	assert.False(t, cfg.Database.Enabled)
	assert.Equal(t, 30*time.Minute, cfg.Database.ConnMaxLifetime)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"zero step", "[world]\nfixed_step = \"0s\"\n", "world.fixed_step"},
		{"negative scale", "[world]\npixels_per_meter = -1.0\n", "world.pixels_per_meter"},
		{"negative sub-steps", "[world]\nmax_sub_steps = -2\n", "world.max_sub_steps"},
		{"bad duration", "[loop]\ntick_rate = \"soon\"\n", "parse config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDefaultIsValid(t *testing.T) {
	assert.NoError(t, Default().validate())
}
