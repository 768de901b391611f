package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"skillshots/internal/plan"
)

func newPlansCmd() *cobra.Command {
	var (
		planFile string
		dump     bool
	)

	cmd := &cobra.Command{
		Use:   "plans",
		Short: "List capture plans, or dump them as YAML to start a plan file",
		RunE: func(cmd *cobra.Command, args []string) error {
			var plans []plan.Plan
			if planFile != "" {
				loaded, err := plan.LoadFile(planFile)
				if err != nil {
					return err
				}
				plans = loaded
			} else {
				for _, n := range plan.DefaultOrder {
					plans = append(plans, plan.MustLookup(n))
				}
			}

			if dump {
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				return errors.Join(enc.Encode(plan.File{Plans: plans}), enc.Close())
			}

			for _, p := range plans {
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %-22s %s\n", p.Name, p.Title, strings.Join(p.Files(), ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&planFile, "plan-file", "", "YAML file with custom plans")
	cmd.Flags().BoolVar(&dump, "yaml", false, "Print plans as YAML")
	return cmd
}
