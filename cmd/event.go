package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	ackMessage string
	ackClose   bool
)

var acknowledgeEventCmd = &cobra.Command{
	Use:   "acknowledge-event <event id ...>",
	Short: "Acknowledge events by ID",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := initClient(cfg, log)
		if err != nil {
			return err
		}
		if _, err := connect(cmd.Context(), client); err != nil {
			return err
		}

		ids, err := client.AcknowledgeEvent(cmd.Context(), args, ackMessage, ackClose, "")
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Acknowledged %d events\n", len(ids))
		return nil
	},
}

func init() {
	acknowledgeEventCmd.Flags().StringVar(&ackMessage, "message", "", "acknowledgement message")
	acknowledgeEventCmd.Flags().BoolVar(&ackClose, "close", false, "also close the events")
	rootCmd.AddCommand(acknowledgeEventCmd)
}
