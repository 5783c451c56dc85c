package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kafeido/kafeido-go/cli/config"
	"github.com/kafeido/kafeido-go/core"
)

func (a *App) newInitCommand() *cobra.Command {
	var (
		baseURL      string
		defaultModel string
		force        bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the CLI configuration file",
		Long: `Create the CLI configuration file.

Examples:
  kafeido init
  kafeido init --default-model gpt-oss-20b
  kafeido init --base-url http://localhost:8080 --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfgFile
			if path == "" {
				path = config.DefaultConfigPath()
			}

			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
				}
			}

			cfg := &config.Config{
				BaseURL:      baseURL,
				DefaultModel: defaultModel,
				APIKeyRef:    keystoreEntry,
			}
			if err := cfg.Save(path); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}

			fmt.Fprintf(a.stdout, "Config written to %s\n", path)
			fmt.Fprintf(a.stdout, "Next: store your API key with 'kafeido keys set'\n")
			return nil
		},
	}

	cmd.Flags().StringVar(&baseURL, "base-url", core.DefaultBaseURL, "API base URL")
	cmd.Flags().StringVar(&defaultModel, "default-model", "", "default model ID")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")

	return cmd
}
