package cmd

import (
	"github.com/spf13/cobra"
)

func eventsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List recent webhook events",
		Long: "List the webhook events the running server holds in memory, most\n" +
			"recent first. Events are lost when the server restarts.",
		Example: `  # Show everything the server holds
  port-resolver events

  # Last five events as JSON
  port-resolver events --limit 5 --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := newClient().ListEvents(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(cmd.OutOrStdout(), resp)
			}
			return printEventsTable(cmd.OutOrStdout(), resp.Events)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum events to show (0 for all)")

	return cmd
}
