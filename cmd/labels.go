package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLabelsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "labels",
		Short: "Print the label encoder ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sel, err := a.selector(cmd.Context())
			if err != nil {
				return err
			}
			for id, label := range sel.Labels.Labels() {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", id, label); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
