// Package cli implements the verdin command line client.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/verdinapp/verdin/internal/client"
	"github.com/verdinapp/verdin/internal/config"
	"github.com/verdinapp/verdin/internal/localstore"
	"github.com/verdinapp/verdin/internal/logging"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string
	authToken string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "verdin",
	Short:         "Verdin thread client",
	Long:          "verdin is a command line client for the Verdin thread service.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loader := config.NewLoader()
		if cfgFile != "" {
			loader.SetConfigFile(cfgFile)
		}

		var err error
		cfg, err = loader.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		if logLevel != "" {
			cfg.Logging.Level = logLevel
		}
		if logFormat != "" {
			cfg.Logging.Format = logFormat
		}
		logging.Init(logging.Config{
			Level:        cfg.Logging.Level,
			Format:       cfg.Logging.Format,
			EnableCaller: cfg.Logging.EnableCaller,
		})

		if err := cfg.EnsureDirectories(); err != nil {
			logging.Warn().Err(err).Msg("failed to create directories")
		}
		if used := loader.ConfigFileUsed(); used != "" {
			logging.Debug().Str("config_file", used).Msg("loaded config file")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/verdin/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "override logging format (json, console)")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", "", "session token (defaults to VERDIN_TOKEN)")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func sessionToken() string {
	if authToken != "" {
		return authToken
	}
	return os.Getenv("VERDIN_TOKEN")
}

// openCore builds a client core backed by the on-disk store and, when a
// token is available, logs it in. The returned closer tears the session
// down and closes the database.
func openCore(cmd *cobra.Command, requireAuth bool) (*client.Core, func(), error) {
	db, err := localstore.Open(cfg.Storage.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open local store: %w", err)
	}

	core, err := client.New(cfg, db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	closer := func() {
		core.Close()
		if err := db.Close(); err != nil {
			logging.Warn().Err(err).Msg("failed to close local store")
		}
	}

	token := sessionToken()
	if token == "" {
		if requireAuth {
			closer()
			return nil, nil, fmt.Errorf("no session token: pass --token or set VERDIN_TOKEN")
		}
		return core, closer, nil
	}

	if err := core.Login(cmd.Context(), token); err != nil {
		closer()
		return nil, nil, fmt.Errorf("login: %w", err)
	}
	return core, closer, nil
}
