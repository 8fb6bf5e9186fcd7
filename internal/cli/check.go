package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/shaiso/Concierge/internal/checks"
	"github.com/shaiso/Concierge/internal/config"
)

// NewCheckCmd создаёт команду прогона проверок подключений.
func NewCheckCmd(configFn func() (*config.Config, error), loggerFn func() *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check connectivity to all external dependencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFn()
			if err != nil {
				return err
			}
			logger := loggerFn()
			return checks.Run(cmd.Context(), checks.ForConfig(cfg, logger), logger)
		},
	}
}
