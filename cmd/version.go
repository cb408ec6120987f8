package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kidoz/zabbix-cli-go/internal/zabbix"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the application version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "zabbix-cli %s\n", zabbix.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
