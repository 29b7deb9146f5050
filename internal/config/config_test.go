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
	path := filepath.Join(t.TempDir(), "mudra.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
tick_interval: 20ms
gesture:
  long_press_duration: 1s
  pinch_threshold: 25
touch:
  source: replay
  trace: session.jsonl
  mapping:
    invert_y: false
audio:
  enabled: true
  gap: 200ms
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 20*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, time.Second, cfg.Gesture.LongPressDuration)
	assert.Equal(t, 25.0, cfg.Gesture.PinchThreshold)
	assert.Equal(t, 250*time.Millisecond, cfg.Gesture.TapMaxDuration, "unset keys keep defaults")
	assert.Equal(t, SourceReplay, cfg.Touch.Source)
	assert.False(t, cfg.Touch.Mapping.InvertY)
	assert.True(t, cfg.Touch.Mapping.SwapXY)
	assert.True(t, cfg.Audio.Enabled)
	assert.Equal(t, 200*time.Millisecond, cfg.Audio.Gap)
	assert.Equal(t, 22050, cfg.Audio.SampleRate)
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown key", "tick_rate: 5ms\n", "tick_rate"},
		{"bad duration", "tick_interval: soon\n", "time.Duration"},
		{"invalid threshold", "gesture:\n  swipe_axis_ratio: 0.5\n", "swipe_axis_ratio"},
		{"unknown source", "touch:\n  source: usb\n", "unknown source"},
		{"replay without trace", "touch:\n  source: replay\n", "trace is required"},
		{"bad parity", "touch:\n  serial:\n    parity: X\n", "parity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestMarshal_LoadsBack(t *testing.T) {
	cfg := Default()
	cfg.Touch.Source = SourceNone
	cfg.Gesture.SettleWindow = 0

	data, err := cfg.Marshal()
	require.NoError(t, err)

	back, err := Load(writeConfig(t, string(data)))
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}
