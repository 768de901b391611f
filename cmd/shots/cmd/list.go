package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"skillshots/internal/runner"
)

func newListCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recorded runs, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			manifests, err := runner.LoadAll(e.cfg.OutputDir)
			if err != nil {
				return err
			}
			for _, m := range manifests {
				status := "ok"
				if !m.OK() {
					status = "failed: " + m.Error
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%d captures\t%s\n",
					m.RunID, m.Plan, m.StartedAt.Local().Format(time.DateTime), len(m.Captures), status)
			}
			return nil
		},
	}
}
