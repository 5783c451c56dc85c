// Package commands implements the CLI command structure using Cobra.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	kafeido "github.com/kafeido/kafeido-go"
	"github.com/kafeido/kafeido-go/cli/config"
	"github.com/kafeido/kafeido-go/cli/keystore"
)

// keystoreEntry is the keystore name the CLI stores its API key under
// when the config does not name one.
const keystoreEntry = "kafeido"

// ConfigLoader loads CLI config from a path.
type ConfigLoader func(path string) (*config.Config, error)

// KeystoreFactory creates a keystore instance.
type KeystoreFactory func() (keystore.Keystore, error)

// AppOption customizes App dependencies.
type AppOption func(*App)

// App holds CLI state and runtime dependencies.
type App struct {
	root *cobra.Command

	loadConfig  ConfigLoader
	newKeystore KeystoreFactory
	stdin       io.Reader
	stdout      io.Writer
	stderr      io.Writer

	cfgFile    string
	baseURL    string
	model      string
	jsonOutput bool
	verbose    bool
	cfg        *config.Config
}

// WithConfigLoader injects a config loader dependency.
func WithConfigLoader(loader ConfigLoader) AppOption {
	return func(a *App) {
		if loader != nil {
			a.loadConfig = loader
		}
	}
}

// WithKeystoreFactory injects a keystore factory dependency.
func WithKeystoreFactory(factory KeystoreFactory) AppOption {
	return func(a *App) {
		if factory != nil {
			a.newKeystore = factory
		}
	}
}

// WithIO injects process I/O streams.
func WithIO(stdin io.Reader, stdout, stderr io.Writer) AppOption {
	return func(a *App) {
		if stdin != nil {
			a.stdin = stdin
		}
		if stdout != nil {
			a.stdout = stdout
		}
		if stderr != nil {
			a.stderr = stderr
		}
	}
}

// NewApp creates a new CLI app with default dependencies.
func NewApp(opts ...AppOption) *App {
	a := &App{
		loadConfig:  config.LoadConfig,
		newKeystore: keystore.NewKeystore,
		stdin:       os.Stdin,
		stdout:      os.Stdout,
		stderr:      os.Stderr,
	}

	for _, opt := range opts {
		opt(a)
	}

	a.root = a.newRootCommand()
	return a
}

func (a *App) newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "kafeido",
		Short: "Kafeido - inference API command line",
		Long: `Kafeido is a command-line interface for the Kafeido inference API.

Use it to manage API keys, chat with models, transcribe audio, and
inspect model status.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.initConfig()
		},
		SilenceUsage: true,
	}

	// Global flags available to all commands.
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is ~/.kafeido/config.yaml)")
	root.PersistentFlags().StringVar(&a.baseURL, "base-url", "", "API base URL (overrides config)")
	root.PersistentFlags().StringVar(&a.model, "model", "", "model ID (e.g. gpt-oss-20b)")
	root.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "emit JSON output")
	root.PersistentFlags().BoolVar(&a.verbose, "verbose", false, "enable debug logging")

	root.AddCommand(a.newChatCommand())
	root.AddCommand(a.newTranscribeCommand())
	root.AddCommand(a.newModelsCommand())
	root.AddCommand(a.newHealthCommand())
	root.AddCommand(a.newKeysCommand())
	root.AddCommand(a.newInitCommand())
	root.AddCommand(a.newVersionCommand())

	return root
}

// Execute runs the root command.
func (a *App) Execute() error {
	return a.root.Execute()
}

// SetArgs overrides command-line arguments, for tests.
func (a *App) SetArgs(args []string) {
	a.root.SetArgs(args)
}

func (a *App) initConfig() error {
	path := a.cfgFile
	if path == "" {
		path = config.DefaultConfigPath()
	}

	cfg, err := a.loadConfig(path)
	if err != nil {
		return err
	}
	a.cfg = cfg

	// Apply config defaults if flags not set.
	if a.baseURL == "" && cfg.BaseURL != "" {
		a.baseURL = cfg.BaseURL
	}
	if a.model == "" && cfg.DefaultModel != "" {
		a.model = cfg.DefaultModel
	}

	return nil
}

// newClient builds an API client from the keystore and flags. When no
// key is stored, key resolution falls back to the environment.
func (a *App) newClient() (*kafeido.Client, error) {
	var apiKey string
	if ks, err := a.newKeystore(); err == nil {
		ref := keystoreEntry
		if a.cfg != nil && a.cfg.APIKeyRef != "" {
			ref = a.cfg.APIKeyRef
		}
		if stored, err := ks.Get(ref); err == nil {
			apiKey = stored
		}
	}

	opts := []kafeido.Option{kafeido.WithAPIKey(apiKey)}
	if a.baseURL != "" {
		opts = append(opts, kafeido.WithBaseURL(a.baseURL))
	}

	client, err := kafeido.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("no API key: run 'kafeido keys set' or set KAFEIDO_API_KEY (%w)", err)
	}
	return client, nil
}

var defaultApp = NewApp()

// Execute runs the default app root command.
func Execute() error {
	return defaultApp.Execute()
}
