package cmd

import (
	"context"
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/kidoz/zabbix-cli-go/internal/auth"
	"github.com/kidoz/zabbix-cli-go/internal/config"
	"github.com/kidoz/zabbix-cli-go/internal/export"
	"github.com/kidoz/zabbix-cli-go/internal/zabbix"
)

func initClient(cfg *config.Config, log *zap.Logger) (*zabbix.Client, error) {
	var c *zabbix.Client
	app := fx.New(
		fx.NopLogger,
		fx.Supply(cfg, log),
		zabbix.Module,
		fx.Populate(&c),
	)
	if err := app.Err(); err != nil {
		return nil, err
	}
	return c, nil
}

func initExporter(cfg *config.Config, log *zap.Logger) (*export.Exporter, *zabbix.Client, error) {
	var (
		e *export.Exporter
		c *zabbix.Client
	)
	app := fx.New(
		fx.NopLogger,
		fx.Supply(cfg, log),
		zabbix.Module,
		export.Module,
		fx.Populate(&e, &c),
	)
	if err := app.Err(); err != nil {
		return nil, nil, err
	}
	return e, c, nil
}

func initImporter(cfg *config.Config, log *zap.Logger) (*export.Importer, *zabbix.Client, error) {
	var (
		i *export.Importer
		c *zabbix.Client
	)
	app := fx.New(
		fx.NopLogger,
		fx.Supply(cfg, log),
		zabbix.Module,
		export.Module,
		fx.Populate(&i, &c),
	)
	if err := app.Err(); err != nil {
		return nil, nil, err
	}
	return i, c, nil
}

// connect logs an already built client in with the first working
// credential source.
func connect(ctx context.Context, client *zabbix.Client) (*auth.Credentials, error) {
	resolver := auth.NewResolver(cfg, log, client, os.Getenv, auth.TerminalPrompter{})
	return resolver.Resolve(ctx)
}
