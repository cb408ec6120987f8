package cmd

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/kidoz/zabbix-cli-go/internal/zabbix"
)

var showHostCmd = &cobra.Command{
	Use:   "show-host <name or id>",
	Short: "Show a host with its groups, templates and interfaces",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := initClient(cfg, log)
		if err != nil {
			return err
		}
		if _, err := connect(cmd.Context(), client); err != nil {
			return err
		}

		host, err := client.GetHost(cmd.Context(), args[0], zabbix.HostGetOptions{
			SelectGroups:     true,
			SelectTemplates:  true,
			SelectInterfaces: true,
		})
		if err != nil {
			return err
		}
		return printJSON(cmd, host)
	},
}

var showHostGroupsCmd = &cobra.Command{
	Use:   "show-hostgroups [name or id ...]",
	Short: "Show host groups",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := initClient(cfg, log)
		if err != nil {
			return err
		}
		if _, err := connect(cmd.Context(), client); err != nil {
			return err
		}

		groups, err := client.GetHostGroups(cmd.Context(), args, zabbix.HostGroupGetOptions{
			Search:    true,
			SortField: "name",
		})
		if err != nil {
			return err
		}
		return printJSON(cmd, groups)
	},
}

var showProxiesCmd = &cobra.Command{
	Use:   "show-proxies [name or id ...]",
	Short: "Show proxies",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := initClient(cfg, log)
		if err != nil {
			return err
		}
		if _, err := connect(cmd.Context(), client); err != nil {
			return err
		}

		proxies, err := client.GetProxies(cmd.Context(), args, zabbix.ProxyGetOptions{Search: true})
		if err != nil {
			return err
		}
		return printJSON(cmd, proxies)
	},
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	rootCmd.AddCommand(showHostCmd)
	rootCmd.AddCommand(showHostGroupsCmd)
	rootCmd.AddCommand(showProxiesCmd)
}
