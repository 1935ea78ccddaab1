package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chaos-io/bgcut/segment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  port: ":9090"
  mode: release
process:
  mode: simple
  color_tolerance: 45
  feather_radius: 0
  edge_channel: luminance
output:
  retention: 2h
redis:
  enabled: true
  addr: "redis:6379"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.Equal(t, 2*time.Hour, cfg.Output.Retention)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)

	// 未写的字段使用默认值
	assert.Equal(t, 60*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "./output", cfg.Output.Dir)
	assert.Equal(t, 3.0, cfg.Process.EdgeSensitivity)

	s, err := cfg.Process.Settings()
	require.NoError(t, err)
	assert.Equal(t, segment.ModeSimple, s.Mode)
	assert.Equal(t, 45.0, s.ColorTolerance)
	assert.Equal(t, 0, s.FeatherRadius)
	assert.Equal(t, segment.EdgeChannelLuminance, s.EdgeChannel)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("BGCUT_PROCESS_COLOR_TOLERANCE", "77")
	path := writeConfig(t, "server:\n  mode: test\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 77.0, cfg.Process.ColorTolerance)
}

func TestLoad_NaNToleranceClampedToDefault(t *testing.T) {
	t.Setenv("BGCUT_PROCESS_COLOR_TOLERANCE", "NaN")
	path := writeConfig(t, "server:\n  mode: test\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(cfg.Process.ColorTolerance))

	s, err := cfg.Process.Settings()
	require.NoError(t, err)
	assert.Equal(t, segment.DefaultSettings().ColorTolerance, s.Clamp().ColorTolerance)
}

func TestLoad_UploadLimits(t *testing.T) {
	t.Parallel()

	cfg, err := Load(writeConfig(t, "upload:\n  max_pixels: 1000\n"))
	require.NoError(t, err)
	assert.Equal(t, int64(1000), cfg.Upload.MaxPixels)
	assert.Equal(t, Default().Upload.MaxSize, cfg.Upload.MaxSize)

	cfg, err = Load(writeConfig(t, "server:\n  mode: test\n"))
	require.NoError(t, err)
	assert.Equal(t, int64(64*1024*1024), cfg.Upload.MaxPixels)
}

func TestNew_MissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := New(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	s, err := cfg.Process.Settings()
	require.NoError(t, err)
	assert.Equal(t, segment.DefaultSettings(), s)
}

func TestNew_BrokenFile(t *testing.T) {
	t.Parallel()

	_, err := New(writeConfig(t, "server: [unclosed"))
	assert.Error(t, err)
}

func TestProcessConfig_SettingsErrors(t *testing.T) {
	t.Parallel()

	_, err := ProcessConfig{Mode: "ml"}.Settings()
	assert.Error(t, err)

	_, err = ProcessConfig{EdgeChannel: "alpha"}.Settings()
	assert.Error(t, err)
}
