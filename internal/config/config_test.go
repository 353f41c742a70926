package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/cubewalk/internal/core/locomotion"
	"github.com/zeusync/cubewalk/internal/core/observability/log"
)

func TestDefaultsMatchMotionConstants(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, locomotion.DefaultConfig(), c.Locomotion.Motion())
	assert.Equal(t, 2*time.Second, c.Locomotion.SettleTimeout)
	assert.Equal(t, 10*time.Millisecond, c.Locomotion.FallingSettleTimeout)
}

func TestLoadOverridesDefaults(t *testing.T) {
	c, err := Load(strings.NewReader(`
log:
  level: debug
simulation:
  tick_rate: 30
  level: tower
locomotion:
  speed: 2.5
  settle_timeout: 500ms
server:
  addr: ":9000"
journal:
  enabled: true
  dir: /tmp/trace
`))
	require.NoError(t, err)
	assert.Equal(t, log.LevelDebug, c.LogLevel())
	assert.Equal(t, 30, c.Simulation.TickRate)
	assert.Equal(t, "tower", c.Simulation.Level)
	assert.Equal(t, "levels", c.Simulation.LevelDir)
	assert.Equal(t, ":9000", c.Server.Addr)
	assert.True(t, c.Journal.Enabled)

	motion := c.Locomotion.Motion()
	assert.Equal(t, 2.5, motion.Speed)
	assert.Equal(t, 0.5, motion.SettleTimeout)
	assert.Equal(t, 5.0, motion.FallSpeedFactor)
}

func TestLoadEmptyUsesDefaults(t *testing.T) {
	c, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), *c)
}

func TestLoadRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"unknown key":    "simulation:\n  tickrate: 5\n",
		"bad level":      "log:\n  level: loud\n",
		"zero rate":      "simulation:\n  tick_rate: 0\n",
		"neg speed":      "locomotion:\n  speed: -1\n",
		"journal dir":    "journal:\n  enabled: true\n  dir: \"\"\n",
		"bad duration":   "locomotion:\n  gravity_pause: soon\n",
		"no server addr": "server:\n  enabled: true\n  addr: \"\"\n",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(strings.NewReader(src))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cubewalk.yaml")
	require.NoError(t, os.WriteFile(path, []byte("simulation:\n  tick_rate: 120\n"), 0o600))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 120, c.Simulation.TickRate)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
