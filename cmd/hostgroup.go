package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kidoz/zabbix-cli-go/internal/zabbix"
)

var createHostGroupCmd = &cobra.Command{
	Use:   "create-hostgroup <name>",
	Short: "Create a host group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := initClient(cfg, log)
		if err != nil {
			return err
		}
		if _, err := connect(cmd.Context(), client); err != nil {
			return err
		}

		id, err := client.CreateHostGroup(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created host group %q with ID %s\n", args[0], id)
		return nil
	},
}

var removeHostGroupCmd = &cobra.Command{
	Use:   "remove-hostgroup <name or id>",
	Short: "Delete a host group",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := initClient(cfg, log)
		if err != nil {
			return err
		}
		if _, err := connect(cmd.Context(), client); err != nil {
			return err
		}

		group, err := client.GetHostGroup(cmd.Context(), args[0], zabbix.HostGroupGetOptions{})
		if err != nil {
			return err
		}
		if err := client.DeleteHostGroup(cmd.Context(), group.GroupID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted host group %q (%s)\n", group.Name, group.GroupID)
		return nil
	},
}

var addHostToHostGroupCmd = &cobra.Command{
	Use:   "add-host-to-hostgroup <host> <group>",
	Short: "Add a host to a host group",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editHostGroupMembership(cmd, args[0], args[1], true)
	},
}

var removeHostFromHostGroupCmd = &cobra.Command{
	Use:   "remove-host-from-hostgroup <host> <group>",
	Short: "Remove a host from a host group",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editHostGroupMembership(cmd, args[0], args[1], false)
	},
}

func editHostGroupMembership(cmd *cobra.Command, hostArg, groupArg string, add bool) error {
	client, err := initClient(cfg, log)
	if err != nil {
		return err
	}
	if _, err := connect(cmd.Context(), client); err != nil {
		return err
	}

	host, err := client.GetHost(cmd.Context(), hostArg, zabbix.HostGetOptions{})
	if err != nil {
		return err
	}
	group, err := client.GetHostGroup(cmd.Context(), groupArg, zabbix.HostGroupGetOptions{})
	if err != nil {
		return err
	}

	hosts := []zabbix.Host{*host}
	groups := []zabbix.HostGroup{*group}
	if add {
		err = client.AddHostsToHostGroups(cmd.Context(), hosts, groups)
	} else {
		err = client.RemoveHostsFromHostGroups(cmd.Context(), hosts, groups)
	}
	if err != nil {
		return err
	}

	verb := "Added"
	prep := "to"
	if !add {
		verb = "Removed"
		prep = "from"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s host %q %s host group %q\n", verb, host.Host, prep, group.Name)
	return nil
}

func init() {
	rootCmd.AddCommand(createHostGroupCmd)
	rootCmd.AddCommand(removeHostGroupCmd)
	rootCmd.AddCommand(addHostToHostGroupCmd)
	rootCmd.AddCommand(removeHostFromHostGroupCmd)
}
