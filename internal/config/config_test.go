package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg, err := NewConfig(NewViper())
	require.NoError(t, err)

	require.Equal(t, "http://localhost:3000", cfg.BaseURL)
	require.Equal(t, "screenshots", cfg.OutputDir)
	require.Equal(t, 1400, cfg.ViewportWidth)
	require.Equal(t, 900, cfg.ViewportHeight)
	require.Equal(t, "dark", cfg.ColorScheme)
	require.False(t, cfg.FullPage)
	require.True(t, cfg.Headless)
	require.Equal(t, 30*time.Second, cfg.NavigationTimeout)
	require.True(t, cfg.Probe)
	require.Equal(t, 8787, cfg.ServePort)
}

func TestNewConfigFromEnv(t *testing.T) {
	t.Setenv("SHOTS_BASE_URL", "http://127.0.0.1:5173/")
	t.Setenv("SHOTS_VIEWPORT_WIDTH", "800")
	t.Setenv("SHOTS_COLOR_SCHEME", "Light")
	t.Setenv("SHOTS_NAVIGATION_TIMEOUT", "5s")

	cfg, err := NewConfig(NewViper())
	require.NoError(t, err)

	require.Equal(t, "http://127.0.0.1:5173", cfg.BaseURL)
	require.Equal(t, 800, cfg.ViewportWidth)
	require.Equal(t, "light", cfg.ColorScheme)
	require.Equal(t, 5*time.Second, cfg.NavigationTimeout)
}

func TestNewConfigRejectsInvalid(t *testing.T) {
	cases := map[string][2]string{
		"bad url":      {"SHOTS_BASE_URL", "localhost"},
		"bad scheme":   {"SHOTS_COLOR_SCHEME", "sepia"},
		"zero width":   {"SHOTS_VIEWPORT_WIDTH", "0"},
		"bad port":     {"SHOTS_SERVE_PORT", "70000"},
		"bad format":   {"SHOTS_LOG_FORMAT", "xml"},
		"zero timeout": {"SHOTS_NAVIGATION_TIMEOUT", "0s"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(kv[0], kv[1])
			_, err := NewConfig(NewViper())
			require.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shots.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base_url: http://localhost:4000\noutput_dir: out\n"), 0o644))

	v := NewViper()
	v.SetConfigFile(path)
	require.NoError(t, ReadFile(v))

	cfg, err := NewConfig(v)
	require.NoError(t, err)
	require.Equal(t, "http://localhost:4000", cfg.BaseURL)
	require.Equal(t, "out", cfg.OutputDir)
}

func TestReadFileMissingIsIgnored(t *testing.T) {
	chdir(t, t.TempDir())
	v := NewViper()
	require.NoError(t, ReadFile(v))
}

func TestReadFileFindsYAMLInWorkingDir(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shots.yaml"), []byte("output_dir: captures\n"), 0o644))

	v := NewViper()
	require.NoError(t, ReadFile(v))
	cfg, err := NewConfig(v)
	require.NoError(t, err)
	require.Equal(t, "captures", cfg.OutputDir)
}

func TestReadFileIgnoresBinaryNamedShots(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "shots"), []byte("\x7fELF\x02\x01\x01\x00\x00\x00"), 0o755))

	v := NewViper()
	require.NoError(t, ReadFile(v))
	require.Empty(t, v.ConfigFileUsed())

	cfg, err := NewConfig(v)
	require.NoError(t, err)
	require.Equal(t, "screenshots", cfg.OutputDir)
}
