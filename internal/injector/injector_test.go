package injector

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/cubewalk/internal/config"
	"github.com/zeusync/cubewalk/internal/core/level"
)

const hallYAML = `
name: hall
spawn:
  cell: [0, 0, 0]
fill:
  - from: [0, -1, 0]
    to: [0, -1, 2]
    function: wall
  - from: [0, 0, 0]
    to: [0, 0, 2]
    function: plain
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	levels := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(levels, "hall.yaml"), []byte(hallYAML), 0o600))

	cfg := config.Default()
	cfg.Log.Level = "error"
	cfg.Simulation.LevelDir = levels
	cfg.Simulation.Level = "hall"
	cfg.Server.Addr = "127.0.0.1:0"
	cfg.Journal.Dir = t.TempDir()
	return &cfg
}

func TestInitializeApp(t *testing.T) {
	cfg := testConfig(t)
	cfg.Journal.Enabled = true

	app, cleanup, err := InitializeApp(cfg)
	require.NoError(t, err)

	assert.Same(t, cfg, app.Config)
	assert.Equal(t, "hall", app.Simulation.Level().Name)
	assert.Equal(t, "hall", app.Simulation.Snapshot().Level)
	assert.NotNil(t, app.Server)
	require.NoError(t, app.Simulation.Step())
	cleanup()

	files, err := filepath.Glob(filepath.Join(cfg.Journal.Dir, "cubewalk-*.jsonl.zst"))
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestInitializeAppWithoutServer(t *testing.T) {
	cfg := testConfig(t)
	cfg.Server.Enabled = false

	app, cleanup, err := InitializeApp(cfg)
	require.NoError(t, err)
	defer cleanup()
	assert.Nil(t, app.Server)
}

func TestInitializeAppMissingLevel(t *testing.T) {
	cfg := testConfig(t)
	cfg.Simulation.Level = "missing"

	_, _, err := InitializeApp(cfg)
	assert.ErrorIs(t, err, level.ErrLevelNotFound)
}
