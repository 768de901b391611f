package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"skillshots/internal/probe"
)

func newDoctorCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the dev server answers at the base URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), "Checking:", e.cfg.BaseURL)
			status, err := probe.CheckReachable(cmd.Context(), e.cfg.BaseURL, e.cfg.ProbeTimeout)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OK: dev server reachable (HTTP %d).\n", status)
			return nil
		},
	}
}
