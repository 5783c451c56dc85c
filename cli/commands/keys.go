package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/kafeido/kafeido-go/cli/keystore"
)

func (a *App) newKeysCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage API keys",
		Long:  `Manage API keys. Keys are stored in an encrypted keystore file.`,
	}

	cmd.AddCommand(a.newKeysSetCommand())
	cmd.AddCommand(a.newKeysListCommand())
	cmd.AddCommand(a.newKeysDeleteCommand())

	return cmd
}

func (a *App) newKeysSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set [name]",
		Short: "Store an API key",
		Long:  `Store an API key. The key is prompted without echo for security.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := keystoreEntry
			if len(args) == 1 {
				name = args[0]
			}

			apiKey, err := a.readSecret(fmt.Sprintf("Enter API key for %s: ", name))
			if err != nil {
				return fmt.Errorf("failed to read key: %w", err)
			}
			if apiKey == "" {
				return fmt.Errorf("API key cannot be empty")
			}

			ks, err := a.newKeystore()
			if err != nil {
				return fmt.Errorf("failed to open keystore: %w", err)
			}
			if err := ks.Set(name, apiKey); err != nil {
				return fmt.Errorf("failed to store key: %w", err)
			}

			fmt.Fprintf(a.stdout, "API key %s stored successfully.\n", name)
			return nil
		},
	}
}

func (a *App) newKeysListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored API keys",
		Long:  `List stored API keys. Only names are shown, never key values.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ks, err := a.newKeystore()
			if err != nil {
				return fmt.Errorf("failed to open keystore: %w", err)
			}

			names, err := ks.List()
			if err != nil {
				return fmt.Errorf("failed to list keys: %w", err)
			}

			if len(names) == 0 {
				fmt.Fprintln(a.stdout, "No API keys stored.")
				return nil
			}

			fmt.Fprintln(a.stdout, "Stored keys:")
			for _, name := range names {
				fmt.Fprintf(a.stdout, "  - %s\n", name)
			}
			return nil
		},
	}
}

func (a *App) newKeysDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a stored API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ks, err := a.newKeystore()
			if err != nil {
				return fmt.Errorf("failed to open keystore: %w", err)
			}

			if err := ks.Delete(args[0]); err != nil {
				if _, ok := err.(*keystore.ErrKeyNotFound); ok {
					return fmt.Errorf("no key stored as %s", args[0])
				}
				return fmt.Errorf("failed to delete key: %w", err)
			}

			fmt.Fprintf(a.stdout, "API key %s deleted.\n", args[0])
			return nil
		},
	}
}

// readSecret prompts for a secret. Terminal input is read without
// echo; piped input falls back to a plain line read.
func (a *App) readSecret(prompt string) (string, error) {
	fmt.Fprint(a.stdout, prompt)

	if f, ok := a.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		keyBytes, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		fmt.Fprintln(a.stdout) // Newline after hidden input
		return string(keyBytes), nil
	}

	reader := bufio.NewReader(a.stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
