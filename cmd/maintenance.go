package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kidoz/zabbix-cli-go/internal/errs"
	"github.com/kidoz/zabbix-cli-go/internal/zabbix"
)

var (
	maintenanceHosts          []string
	maintenanceGroups         []string
	maintenancePeriod         time.Duration
	maintenanceDescription    string
	maintenanceDataCollection bool
)

var createMaintenanceCmd = &cobra.Command{
	Use:   "create-maintenance-definition <name>",
	Short: "Create a maintenance window starting now",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(maintenanceHosts) == 0 && len(maintenanceGroups) == 0 {
			return errs.New(errs.ErrCLI, "at least one --host or --hostgroup is required")
		}

		client, err := initClient(cfg, log)
		if err != nil {
			return err
		}
		if _, err := connect(cmd.Context(), client); err != nil {
			return err
		}

		var hosts []zabbix.Host
		for _, h := range maintenanceHosts {
			host, err := client.GetHost(cmd.Context(), h, zabbix.HostGetOptions{})
			if err != nil {
				return err
			}
			hosts = append(hosts, *host)
		}
		var groups []zabbix.HostGroup
		for _, g := range maintenanceGroups {
			group, err := client.GetHostGroup(cmd.Context(), g, zabbix.HostGroupGetOptions{})
			if err != nil {
				return err
			}
			groups = append(groups, *group)
		}

		now := time.Now()
		id, err := client.CreateMaintenance(cmd.Context(), zabbix.CreateMaintenanceParams{
			Name:           args[0],
			Description:    maintenanceDescription,
			ActiveSince:    now,
			ActiveTill:     now.Add(maintenancePeriod),
			DataCollection: maintenanceDataCollection,
			Hosts:          hosts,
			HostGroups:     groups,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created maintenance %q with ID %s\n", args[0], id)
		return nil
	},
}

var removeMaintenanceCmd = &cobra.Command{
	Use:   "remove-maintenance-definition <id ...>",
	Short: "Delete maintenance windows by ID",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := initClient(cfg, log)
		if err != nil {
			return err
		}
		if _, err := connect(cmd.Context(), client); err != nil {
			return err
		}

		ids, err := client.DeleteMaintenances(cmd.Context(), args...)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d maintenance definitions\n", len(ids))
		return nil
	},
}

var showMaintenanceCmd = &cobra.Command{
	Use:   "show-maintenance-definitions [name]",
	Short: "Show maintenance windows",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := initClient(cfg, log)
		if err != nil {
			return err
		}
		if _, err := connect(cmd.Context(), client); err != nil {
			return err
		}

		opts := zabbix.MaintenanceGetOptions{}
		if len(args) > 0 {
			opts.Name = args[0]
		}
		ms, err := client.GetMaintenances(cmd.Context(), opts)
		if err != nil {
			return err
		}
		return printJSON(cmd, ms)
	},
}

func init() {
	createMaintenanceCmd.Flags().StringArrayVar(&maintenanceHosts, "host", nil, "host to include; repeatable")
	createMaintenanceCmd.Flags().StringArrayVar(&maintenanceGroups, "hostgroup", nil, "host group to include; repeatable")
	createMaintenanceCmd.Flags().DurationVar(&maintenancePeriod, "period", time.Hour, "maintenance duration")
	createMaintenanceCmd.Flags().StringVar(&maintenanceDescription, "description", "", "maintenance description")
	createMaintenanceCmd.Flags().BoolVar(&maintenanceDataCollection, "data-collection", true, "keep collecting data during the window")
	rootCmd.AddCommand(createMaintenanceCmd)
	rootCmd.AddCommand(removeMaintenanceCmd)
	rootCmd.AddCommand(showMaintenanceCmd)
}
