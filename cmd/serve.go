package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/TFMV/refugeeflow/server"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Load the tables and serve the chart API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sel, err := a.selector(cmd.Context())
			if err != nil {
				return err
			}
			slog.Info("dataset ready",
				"od_rows", len(sel.Data.Pairs),
				"inbound_rows", len(sel.Data.Inbound),
				"outbound_rows", len(sel.Data.Outbound),
				"labels", sel.Labels.Len())

			return server.New(sel, a.cfg.Server).Start(cmd.Context())
		},
	}
	cmd.Flags().Int("port", 8050, "HTTP listen port")
	cmd.Flags().Int("max-iterations", 500, "layout iteration cap")
	return cmd
}
