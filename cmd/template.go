package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kidoz/zabbix-cli-go/internal/zabbix"
)

var unlinkClear bool

var linkTemplateToHostCmd = &cobra.Command{
	Use:   "link-template-to-host <template> <host>",
	Short: "Link a template to a host",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := initClient(cfg, log)
		if err != nil {
			return err
		}
		if _, err := connect(cmd.Context(), client); err != nil {
			return err
		}

		template, err := client.GetTemplate(cmd.Context(), args[0], zabbix.TemplateGetOptions{})
		if err != nil {
			return err
		}
		host, err := client.GetHost(cmd.Context(), args[1], zabbix.HostGetOptions{})
		if err != nil {
			return err
		}

		err = client.LinkTemplatesToHosts(cmd.Context(),
			[]zabbix.Template{*template}, []zabbix.Host{*host})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Linked template %q to host %q\n", template.Host, host.Host)
		return nil
	},
}

var unlinkTemplateFromHostCmd = &cobra.Command{
	Use:   "unlink-template-from-host <template> <host>",
	Short: "Unlink a template from a host",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := initClient(cfg, log)
		if err != nil {
			return err
		}
		if _, err := connect(cmd.Context(), client); err != nil {
			return err
		}

		template, err := client.GetTemplate(cmd.Context(), args[0], zabbix.TemplateGetOptions{})
		if err != nil {
			return err
		}
		host, err := client.GetHost(cmd.Context(), args[1], zabbix.HostGetOptions{})
		if err != nil {
			return err
		}

		err = client.UnlinkTemplatesFromHosts(cmd.Context(),
			[]zabbix.Template{*template}, []zabbix.Host{*host}, unlinkClear)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Unlinked template %q from host %q\n", template.Host, host.Host)
		return nil
	},
}

var showTemplatesCmd = &cobra.Command{
	Use:   "show-templates [name or id ...]",
	Short: "Show templates",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := initClient(cfg, log)
		if err != nil {
			return err
		}
		if _, err := connect(cmd.Context(), client); err != nil {
			return err
		}

		templates, err := client.GetTemplates(cmd.Context(), args, zabbix.TemplateGetOptions{
			Search:    true,
			SortField: "host",
		})
		if err != nil {
			return err
		}
		return printJSON(cmd, templates)
	},
}

func init() {
	unlinkTemplateFromHostCmd.Flags().BoolVar(&unlinkClear, "clear", false,
		"also remove the templated entities from the host")
	rootCmd.AddCommand(linkTemplateToHostCmd)
	rootCmd.AddCommand(unlinkTemplateFromHostCmd)
	rootCmd.AddCommand(showTemplatesCmd)
}
