package cmd

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate against the Zabbix API and store the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := initClient(cfg, log)
		if err != nil {
			return err
		}

		cred, err := connect(cmd.Context(), client)
		if err != nil {
			return err
		}

		version, err := client.APIVersion(cmd.Context())
		if err != nil {
			return err
		}
		log.Info("logged in",
			zap.String("url", client.BaseURL()),
			zap.String("server_version", version.String()),
			zap.String("credential_type", string(cred.Type)),
			zap.String("credential_source", string(cred.Source)))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the Zabbix API session",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := initClient(cfg, log)
		if err != nil {
			return err
		}

		if _, err := connect(cmd.Context(), client); err != nil {
			return err
		}
		if err := client.Logout(cmd.Context()); err != nil {
			return err
		}
		log.Info("logged out", zap.String("url", client.BaseURL()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}
