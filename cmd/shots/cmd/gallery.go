package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"skillshots/internal/gallery"
)

func newGalleryCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "gallery",
		Short: "Write README.md embedding the latest screenshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, n, err := gallery.WriteFile(e.cfg.OutputDir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d screenshots)\n", path, n)
			return nil
		},
	}
}
