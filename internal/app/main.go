package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"skillshots/internal/config"
	"skillshots/internal/logs"
	"skillshots/internal/plan"
)

// Main runs one built-in plan with config from the environment and returns
// the process exit code. It backs the zero-argument capture programs.
func Main(planName string) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		return 1
	}
	logger, err := logs.NewLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		return 1
	}
	defer func() { _ = logger.Sync() }()

	p, err := plan.Lookup(planName)
	if err != nil {
		logger.Error("lookup plan", zap.Error(err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := Capture(ctx, cfg, logger, nil, p); err != nil {
		logger.Error("capture failed", zap.Error(err))
		return 1
	}
	logger.Info("done")
	return 0
}
