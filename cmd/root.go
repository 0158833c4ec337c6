package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"helpdesk/internal/bootstrap/logging"
	"helpdesk/internal/errs"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:          "helpdesk",
	Short:        "Helpdesk ticket tracker",
	Long:         "Ticket lifecycle, audit trail, knowledge base and reports over a local SQLite database.",
	SilenceUsage: true,
}

// Execute is called by main.main(). The logger set here is replaced once
// the config is loaded.
func Execute(ctx context.Context) error {
	if ctx == nil {
		return errors.New("context is required")
	}

	logger := logging.NewLogger(rootCmd.ErrOrStderr(), os.Getenv("HD_LOG_LEVEL"), os.Getenv("HD_LOG_FORMAT"))
	ctx = logging.WithLogger(ctx, logger)
	ctx = logging.WithAttrs(ctx, slog.String("app", "helpdesk"))

	rootCmd.SetContext(ctx)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logging.Error(ctx, "command execution failed", slog.Any("err", errs.Loggable(err)))
		return errs.Wrap(err, "execute root command")
	}

	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "configs/config.yaml", "Config file path")
	rootCmd.PersistentFlags().String("user", "", "Acting staff identity (default $HD_USER)")
}
