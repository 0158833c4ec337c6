package cmd

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"helpdesk/internal/errs"
	"helpdesk/internal/usecase/deskconsole"
)

var consoleCmd = &cobra.Command{
	Use:   "console",
	Short: "Start the interactive ticket console",
	RunE: withApp(func(cmd *cobra.Command, svc services) error {
		identity, err := resolveIdentity(cmd, false)
		if err != nil {
			return err
		}
		scope, _ := cmd.Flags().GetString("scope")
		filterBy, _ := cmd.Flags().GetString("filter")
		sortBy, _ := cmd.Flags().GetString("sort")
		refreshInterval, _ := cmd.Flags().GetDuration("refresh-interval")

		model := deskconsole.NewDeskModel(cmd.Context(), svc.Desk, deskconsole.Options{
			Identity:        identity,
			Secret:          resolveSecret(cmd),
			Scope:           scope,
			FilterBy:        filterBy,
			SortBy:          sortBy,
			RefreshInterval: refreshInterval,
		})

		program := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := program.Run(); err != nil {
			return errs.Wrap(err, "run desk console")
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(consoleCmd)
	consoleCmd.Flags().String("scope", "active", "Initial scope (active|archived)")
	consoleCmd.Flags().String("filter", "all", "Initial filter (all|mine|unassigned)")
	consoleCmd.Flags().String("sort", "created_at_desc", "Initial sort (created_at_desc|created_at_asc|priority|status)")
	consoleCmd.Flags().Duration("refresh-interval", 5*time.Second, "Auto refresh interval")
	addSecretFlag(consoleCmd)
}
