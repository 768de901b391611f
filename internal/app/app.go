// Package app wires config, logging and the runner together for the cmd/
// programs.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"skillshots/internal/browser"
	"skillshots/internal/config"
	"skillshots/internal/plan"
	"skillshots/internal/runner"
)

// RunOptions builds runner options for p from cfg.
func RunOptions(cfg config.Config, p plan.Plan, logger *zap.Logger) runner.Options {
	return runner.Options{
		Plan:      p,
		BaseURL:   cfg.BaseURL,
		OutputDir: cfg.OutputDir,
		Browser: browser.Options{
			Headless:          cfg.Headless,
			InstallBrowsers:   cfg.InstallBrowsers,
			Viewport:          browser.Size{Width: cfg.ViewportWidth, Height: cfg.ViewportHeight},
			ColorScheme:       cfg.ColorScheme,
			NavigationTimeout: cfg.NavigationTimeout,
			FullPage:          cfg.FullPage,
		},
		Probe:        cfg.Probe,
		ProbeTimeout: cfg.ProbeTimeout,
		Logger:       logger,
	}
}

// Capture runs plans one after another, each in its own browser session.
// A failed plan does not stop later ones; all failures are returned joined.
// launch overrides the browser launcher when non-nil.
func Capture(ctx context.Context, cfg config.Config, logger *zap.Logger, launch browser.Launcher, plans ...plan.Plan) ([]runner.Result, error) {
	var (
		results []runner.Result
		errs    []error
	)
	for _, p := range plans {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		opts := RunOptions(cfg, p, logger)
		opts.Launch = launch

		logger.Info("capturing", zap.String("plan", p.Name), zap.String("title", p.Title), zap.String("base_url", cfg.BaseURL))
		res, err := runner.Run(ctx, opts)
		if res.RunID != "" {
			results = append(results, res)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("plan %s: %w", p.Name, err))
			continue
		}
		for _, c := range res.Manifest.Captures {
			logger.Info("saved", zap.String("path", c.Path), zap.Bool("fallback", c.Fallback))
		}
	}
	return results, errors.Join(errs...)
}
