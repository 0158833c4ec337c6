package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"helpdesk/internal/bootstrap/logging"
	"helpdesk/internal/errs"
)

var seedCmd = &cobra.Command{
	Use:   "seed <file.toml>",
	Short: "Import KB articles and templates from a TOML file",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, svc services) error {
		ctx := cmd.Context()

		args := cmd.Flags().Args()
		if len(args) != 1 {
			return errors.New("exactly one seed file is required")
		}

		result, err := svc.Knowledge.ImportSeedFile(ctx, args[0])
		if err != nil {
			logging.Error(ctx, "import seed failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "import seed")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "imported %d article(s), %d template(s)\n", result.Articles, result.Templates); err != nil {
			return errs.Wrap(err, "write seed output")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
