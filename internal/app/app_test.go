package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"skillshots/internal/browser"
	"skillshots/internal/config"
	"skillshots/internal/plan"
	"skillshots/internal/runner"
)

type stubPage struct{ gotoErr error }

func (p stubPage) Goto(string) error { return p.gotoErr }

func (stubPage) Wait(time.Duration) {}

func (stubPage) Query(string) ([]browser.Element, error) { return nil, nil }

func (stubPage) Screenshot(path string) ([]byte, error) {
	b := []byte("png")
	return b, os.WriteFile(path, b, 0o644)
}

type stubInstance struct{ page stubPage }

func (s stubInstance) Page() browser.Page { return s.page }

func (stubInstance) Close() error { return nil }

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.NewConfig(config.NewViper())
	require.NoError(t, err)
	cfg.OutputDir = t.TempDir()
	cfg.Probe = false
	return cfg
}

func TestRunOptions(t *testing.T) {
	cfg := testConfig(t)
	opts := RunOptions(cfg, plan.MustLookup("pages"), nil)

	require.Equal(t, "http://localhost:3000", opts.BaseURL)
	require.Equal(t, browser.Size{Width: 1400, Height: 900}, opts.Browser.Viewport)
	require.Equal(t, "dark", opts.Browser.ColorScheme)
	require.True(t, opts.Browser.Headless)
	require.False(t, opts.Browser.FullPage)
}

func TestCaptureRunsEveryPlan(t *testing.T) {
	cfg := testConfig(t)
	launch := func(browser.Options, *zap.Logger) (browser.Instance, error) {
		return stubInstance{}, nil
	}

	results, err := Capture(context.Background(), cfg, zap.NewNop(), launch,
		plan.MustLookup("pages"), plan.MustLookup("tools"), plan.MustLookup("preview"))
	require.NoError(t, err)
	require.Len(t, results, 3)

	for _, f := range []string{"dashboard.png", "skills.png", "tools.png", "settings.png", "tools-expanded.png"} {
		require.FileExists(t, filepath.Join(cfg.OutputDir, f))
	}
	require.NoFileExists(t, filepath.Join(cfg.OutputDir, "skill-preview.png"))

	all, err := runner.LoadAll(cfg.OutputDir)
	require.NoError(t, err)
	require.Len(t, all, 3)
}

func TestCaptureContinuesAfterFailure(t *testing.T) {
	cfg := testConfig(t)
	calls := 0
	launch := func(browser.Options, *zap.Logger) (browser.Instance, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("chromium missing")
		}
		return stubInstance{}, nil
	}

	results, err := Capture(context.Background(), cfg, zap.NewNop(), launch,
		plan.MustLookup("pages"), plan.MustLookup("tools"))
	require.ErrorContains(t, err, "plan pages: chromium missing")
	require.Equal(t, 2, calls)
	require.Len(t, results, 2)
	require.False(t, results[0].Manifest.OK())
	require.True(t, results[1].Manifest.OK())
}

func TestCaptureStopsWhenCancelled(t *testing.T) {
	cfg := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := Capture(ctx, cfg, zap.NewNop(), nil, plan.MustLookup("pages"))
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, results)
}
