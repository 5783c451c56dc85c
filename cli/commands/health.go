package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *App) newHealthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check API health",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.newClient()
			if err != nil {
				return exitWithCode(ExitValidation, err)
			}

			health, err := client.Health.Check(cmd.Context())
			if err != nil {
				return a.handleAPIError(err)
			}

			if a.jsonOutput {
				return a.outputJSON(health)
			}
			fmt.Fprintf(a.stdout, "status: %s\n", health.Status)
			if health.Version != "" {
				fmt.Fprintf(a.stdout, "version: %s\n", health.Version)
			}
			return nil
		},
	}
}
