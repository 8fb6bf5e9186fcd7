// Concierge CLI — операторский инструмент для разбора сломанных лотов
// и диагностики подключений.
//
// Использование:
//
//	concierge [--config PATH] [--json] <command> <subcommand> [flags]
//
// Команды:
//
//	broken  Работа с ledger'ом сломанных лотов
//	check   Проверка подключений ко всем внешним зависимостям
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/Concierge/internal/cli"
	"github.com/shaiso/Concierge/internal/config"
	"github.com/shaiso/Concierge/internal/ledger"
	"github.com/shaiso/Concierge/internal/telemetry"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var configPath string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "concierge",
		Short:         "Concierge CLI — broken lots and connectivity tool",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	configFn := func() (*config.Config, error) { return config.Load(configPath) }
	loggerFn := func() *slog.Logger { return telemetry.SetupLogger() }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }
	storeFn := func() (*ledger.Store, error) {
		cfg, err := configFn()
		if err != nil {
			return nil, err
		}
		pool, err := ledger.NewPool(context.Background(), cfg.Ledger.DSN)
		if err != nil {
			return nil, err
		}
		return ledger.New(pool, nil, loggerFn()), nil
	}

	rootCmd.AddCommand(
		cli.NewBrokenCmd(storeFn, outputFn),
		cli.NewCheckCmd(configFn, loggerFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
