package log

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type label string

func (l label) String() string { return string(l) }

func TestFieldsReachZap(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := FromZap(zap.New(core), LevelDebug)

	logger.With(String("traveler", "t1")).Info("moved",
		Vec3("position", mgl64.Vec3{1, 2, 3}),
		Stringer("state", label("can_move")),
		Error(errors.New("boom")),
		Float64("speed", 5),
	)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "moved", entry.Message)
	fields := entry.ContextMap()
	assert.Equal(t, "t1", fields["traveler"])
	assert.Equal(t, "can_move", fields["state"])
	assert.Equal(t, "boom", fields["error"])
	assert.Equal(t, 5.0, fields["speed"])
	assert.Equal(t, []interface{}{1.0, 2.0, 3.0}, fields["position"])
}

func TestLevelFiltering(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := FromZap(zap.New(core), LevelInfo)

	logger.Debug("hidden")
	logger.Info("shown")
	assert.Equal(t, 1, logs.Len())

	logger.SetLevel(LevelDebug)
	logger.Debug("now shown")
	assert.Equal(t, 2, logs.Len())
	assert.Equal(t, LevelDebug, logger.GetLevel())
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Level{"debug": LevelDebug, "": LevelInfo, "WARN": LevelWarn, "error": LevelError} {
		got, err := ParseLevel(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseLevel("loud")
	assert.Error(t, err)
}
