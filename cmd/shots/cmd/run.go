package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"skillshots/internal/app"
	"skillshots/internal/gallery"
	"skillshots/internal/plan"
)

func newRunCmd(e *env) *cobra.Command {
	var (
		planFile  string
		noGallery bool
	)

	cmd := &cobra.Command{
		Use:   "run [plan...]",
		Short: "Run capture plans (default: pages, tools, preview)",
		Example: `  shots run
  shots run preview
  shots run --plan-file plans.yaml settings-dark`,
		RunE: func(cmd *cobra.Command, args []string) error {
			plans, err := selectPlans(args, planFile)
			if err != nil {
				return err
			}

			results, runErr := app.Capture(cmd.Context(), e.cfg, e.logger, nil, plans...)
			for _, res := range results {
				status := "ok"
				if !res.Manifest.OK() {
					status = "failed"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", res.RunID, res.Manifest.Plan, status)
				for _, c := range res.Manifest.Captures {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", c.Path)
				}
			}

			if !noGallery && len(results) > 0 {
				path, n, err := gallery.WriteFile(e.cfg.OutputDir)
				if err != nil {
					e.logger.Warn("gallery not written", zap.Error(err))
				} else {
					e.logger.Debug("gallery written", zap.String("path", path), zap.Int("entries", n))
				}
			}
			return runErr
		},
	}

	cmd.Flags().StringVar(&planFile, "plan-file", "", "YAML file with custom plans (args then select by name)")
	cmd.Flags().BoolVar(&noGallery, "no-gallery", false, "Don't refresh README.md in the output directory")
	return cmd
}

// selectPlans resolves names against the plan file when given, else against
// the built-ins. No names means every plan in the source.
func selectPlans(names []string, planFile string) ([]plan.Plan, error) {
	if planFile == "" {
		if len(names) == 0 {
			names = plan.DefaultOrder
		}
		out := make([]plan.Plan, 0, len(names))
		for _, n := range names {
			p, err := plan.Lookup(n)
			if err != nil {
				return nil, err
			}
			out = append(out, p)
		}
		return out, nil
	}

	loaded, err := plan.LoadFile(planFile)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return loaded, nil
	}
	byName := make(map[string]plan.Plan, len(loaded))
	for _, p := range loaded {
		byName[p.Name] = p
	}
	out := make([]plan.Plan, 0, len(names))
	for _, n := range names {
		p, ok := byName[n]
		if !ok {
			return nil, fmt.Errorf("%w %q in %s", plan.ErrUnknownPlan, n, planFile)
		}
		out = append(out, p)
	}
	return out, nil
}
