package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"skillshots/internal/config"
	"skillshots/internal/logs"
)

var errUsage = errors.New("usage")

// env is filled in by the root command before any subcommand runs.
type env struct {
	v      *viper.Viper
	cfg    config.Config
	logger *zap.Logger
}

func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, errUsage) {
			return 2
		}
		fmt.Fprintln(os.Stderr, "ERROR:", err)
		if strings.HasPrefix(err.Error(), "unknown command") {
			_ = root.Help()
			return 2
		}
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	e := &env{v: config.NewViper()}
	var (
		configFile string
		headed     bool
	)

	rootCmd := &cobra.Command{
		Use:           "shots",
		Short:         "Capture screenshots of the local web UI",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				e.v.SetConfigFile(configFile)
			}
			if err := config.ReadFile(e.v); err != nil {
				return err
			}
			if headed {
				e.v.Set("headless", false)
			}
			cfg, err := config.NewConfig(e.v)
			if err != nil {
				return err
			}
			logger, err := logs.NewLogger(cfg)
			if err != nil {
				return err
			}
			e.cfg, e.logger = cfg, logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if e.logger != nil {
				_ = e.logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errUsage
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "Config file (default: ./shots.yaml, then $XDG_CONFIG_HOME/skillshots/shots.yaml)")
	pf.BoolVar(&headed, "headed", false, "Show the browser window")
	pf.String("base-url", "", "Dev server base URL (env SHOTS_BASE_URL, default http://localhost:3000)")
	pf.String("output-dir", "", "Screenshot directory (env SHOTS_OUTPUT_DIR, default screenshots)")
	pf.String("log-level", "", "debug|info|warn|error (env SHOTS_LOG_LEVEL)")
	for key, flag := range map[string]string{
		"base_url":   "base-url",
		"output_dir": "output-dir",
		"log_level":  "log-level",
	} {
		if err := e.v.BindPFlag(key, pf.Lookup(flag)); err != nil {
			panic(fmt.Errorf("bind flag %s: %w", flag, err))
		}
	}

	rootCmd.AddCommand(
		newRunCmd(e),
		newPlansCmd(),
		newListCmd(e),
		newGalleryCmd(e),
		newServeCmd(e),
		newDoctorCmd(e),
	)
	return rootCmd
}
