// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sigil Contributors

package main

import (
	"errors"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sigil-dev/sparqlboard/internal/config"
	"github.com/sigil-dev/sparqlboard/internal/secrets"
	sberr "github.com/sigil-dev/sparqlboard/pkg/errors"
)

// NewRootCmd creates the root sparqlboard command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "sparqlboard",
		Short: "sparqlboard: explore SPARQL results as tables and graphs",
		Long: "sparqlboard sends SPARQL queries to an endpoint and presents the results as a " +
			"paginated table and an entity graph, in the terminal or over an HTTP API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := initViper(cmd); err != nil {
				return err
			}
			setupLogging(cmd.ErrOrStderr(), viper.GetBool("verbose"))
			return nil
		},
	}

	// Global flags; initViper maps them onto viper keys.
	root.PersistentFlags().StringP("config", "c", "", "path to config file")
	root.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newInitCmd(),
		newServeCmd(),
		newQueryCmd(),
		newExploreCmd(),
		newHistoryCmd(),
		newStatusCmd(),
		newSecretCmd(),
		newDoctorCmd(),
		newVersionCmd(),
	)

	return root
}

// initViper sets up the global Viper with defaults, env bindings, flag
// bindings, and optional config file so the standard precedence
// (flag > env > file > defaults) is handled uniformly. Keyring references
// in the loaded values are resolved last.
func initViper(cmd *cobra.Command) error {
	v := viper.GetViper()

	config.SetDefaults(v)
	config.SetupEnv(v)

	if cfgFile, _ := cmd.Flags().GetString("config"); cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return sberr.Errorf(sberr.CodeConfigLoadReadFailure, "reading config file: %w", err)
		}
	} else {
		// SetConfigType is omitted: with it set, Viper also tries the bare
		// name, which collides with a ./sparqlboard binary.
		v.SetConfigName("sparqlboard")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/sparqlboard")
		v.AddConfigPath("/etc/sparqlboard")
		// No config file is fine. Parse or permission errors must surface.
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return sberr.Errorf(sberr.CodeConfigLoadReadFailure, "reading config: %w", err)
			}
			if path := config.BootstrapConfig(); path != "" {
				v.SetConfigFile(path)
				if err := v.ReadInConfig(); err != nil {
					return sberr.Errorf(sberr.CodeConfigLoadReadFailure, "reading bootstrapped config: %w", err)
				}
			}
		}
	}

	if err := v.BindPFlag("verbose", cmd.Root().PersistentFlags().Lookup("verbose")); err != nil {
		return sberr.Errorf(sberr.CodeCLISetupFailure, "binding verbose flag: %w", err)
	}

	if path := v.ConfigFileUsed(); path != "" {
		config.WarnInsecurePermissions(path)
	}
	secrets.ResolveViper(v, secretStoreFactory())

	return nil
}

// setupLogging routes slog to w. Only warnings are shown unless verbose.
func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// loadConfig decodes the configuration resolved by initViper.
func loadConfig() (*config.Config, error) {
	return config.FromViper(viper.GetViper())
}
