package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func (a *App) newModelsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Inspect and manage models",
	}

	cmd.AddCommand(a.newModelsListCommand())
	cmd.AddCommand(a.newModelsStatusCommand())
	cmd.AddCommand(a.newModelsWarmupCommand())

	return cmd
}

func (a *App) newModelsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List available models",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.newClient()
			if err != nil {
				return exitWithCode(ExitValidation, err)
			}

			list, err := client.Models.List(cmd.Context())
			if err != nil {
				return a.handleAPIError(err)
			}

			if a.jsonOutput {
				return a.outputJSON(list)
			}
			for _, model := range list.Data {
				fmt.Fprintf(a.stdout, "%-40s %s\n", model.ID, time.Unix(model.Created, 0).UTC().Format("2006-01-02"))
			}
			return nil
		},
	}
}

func (a *App) newModelsStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status <model>",
		Short: "Show the load state of a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.newClient()
			if err != nil {
				return exitWithCode(ExitValidation, err)
			}

			status, err := client.Models.Status(cmd.Context(), args[0])
			if err != nil {
				return a.handleAPIError(err)
			}

			if a.jsonOutput {
				return a.outputJSON(status)
			}
			state := "unknown"
			if status.Status != nil {
				state = status.Status.Status
			}
			fmt.Fprintf(a.stdout, "%s: %s\n", status.ModelID, state)
			return nil
		},
	}
}

func (a *App) newModelsWarmupCommand() *cobra.Command {
	var wait bool

	cmd := &cobra.Command{
		Use:   "warmup <model>",
		Short: "Trigger a model warmup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.newClient()
			if err != nil {
				return exitWithCode(ExitValidation, err)
			}

			if wait {
				if err := client.WaitForReady(cmd.Context(), args[0], 0); err != nil {
					return a.handleAPIError(err)
				}
				fmt.Fprintf(a.stdout, "%s is ready.\n", args[0])
				return nil
			}

			resp, err := client.Models.Warmup(cmd.Context(), args[0])
			if err != nil {
				return a.handleAPIError(err)
			}

			if a.jsonOutput {
				return a.outputJSON(resp)
			}
			if resp.AlreadyWarm {
				fmt.Fprintf(a.stdout, "%s is already warm.\n", args[0])
			} else if resp.EstimatedSeconds > 0 {
				fmt.Fprintf(a.stdout, "Warming %s, estimated %.0fs.\n", args[0], resp.EstimatedSeconds)
			} else {
				fmt.Fprintf(a.stdout, "Warming %s.\n", args[0])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&wait, "wait", false, "block until the model is ready")

	return cmd
}
