package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kidoz/zabbix-cli-go/internal/errs"
	"github.com/kidoz/zabbix-cli-go/internal/zabbix"
)

var defineHostMacroCmd = &cobra.Command{
	Use:   "define-host-usermacro <host> <macro> <value>",
	Short: "Create or update a user macro on a host",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := initClient(cfg, log)
		if err != nil {
			return err
		}
		if _, err := connect(cmd.Context(), client); err != nil {
			return err
		}

		host, err := client.GetHost(cmd.Context(), args[0], zabbix.HostGetOptions{})
		if err != nil {
			return err
		}

		macroName, value := args[1], args[2]
		existing, err := client.GetMacro(cmd.Context(), host, macroName)
		switch {
		case err == nil:
			if _, err := client.UpdateMacro(cmd.Context(), existing.HostMacroID, value); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated macro %s on host %q\n", macroName, host.Host)
		case errors.Is(err, errs.ErrNotFound):
			if _, err := client.CreateMacro(cmd.Context(), host, macroName, value); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created macro %s on host %q\n", macroName, host.Host)
		default:
			return err
		}
		return nil
	},
}

var showHostMacrosCmd = &cobra.Command{
	Use:   "show-host-usermacros <host>",
	Short: "Show the user macros of a host",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := initClient(cfg, log)
		if err != nil {
			return err
		}
		if _, err := connect(cmd.Context(), client); err != nil {
			return err
		}

		host, err := client.GetHost(cmd.Context(), args[0], zabbix.HostGetOptions{})
		if err != nil {
			return err
		}
		macros, err := client.GetMacros(cmd.Context(), zabbix.MacroGetOptions{
			HostIDs:   []string{host.HostID},
			SortField: "macro",
		})
		if err != nil {
			return err
		}
		return printJSON(cmd, macros)
	},
}

var defineGlobalMacroCmd = &cobra.Command{
	Use:   "define-global-macro <macro> <value>",
	Short: "Create or update a global macro",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := initClient(cfg, log)
		if err != nil {
			return err
		}
		if _, err := connect(cmd.Context(), client); err != nil {
			return err
		}

		macroName, value := args[0], args[1]
		existing, err := client.GetGlobalMacro(cmd.Context(), macroName)
		switch {
		case err == nil:
			if err := client.UpdateGlobalMacro(cmd.Context(), existing.GlobalMacroID, value); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated global macro %s\n", macroName)
		case errors.Is(err, errs.ErrNotFound):
			if _, err := client.CreateGlobalMacro(cmd.Context(), macroName, value); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created global macro %s\n", macroName)
		default:
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(defineHostMacroCmd)
	rootCmd.AddCommand(showHostMacrosCmd)
	rootCmd.AddCommand(defineGlobalMacroCmd)
}
