package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/pastries/pastries/pkg/config"
	"github.com/pastries/pastries/pkg/installer"
	"github.com/pastries/pastries/pkg/logging"
	"github.com/pastries/pastries/pkg/source"
	"github.com/pastries/pastries/pkg/store"
	"github.com/spf13/cobra"
)

var (
	flagDir      string
	flagRegistry string
	flagLogLevel string

	// Settings and Logger are resolved by PersistentPreRunE and available to
	// all subcommands.
	Settings *config.Settings
	Logger   *slog.Logger
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "pastries",
		Short: "Project file dependency fetcher",
		Long:  "pastries copies files from URLs, S3 objects and local paths into a project and keeps them up to date.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			overrides := map[string]any{}
			if cmd.Flags().Changed("registry") {
				overrides["registry"] = flagRegistry
			}
			if cmd.Flags().Changed("log-level") {
				overrides["log_level"] = flagLogLevel
			}

			s, err := config.LoadSettings(flagDir, overrides)
			if err != nil {
				return err
			}
			logger, err := logging.New(cmd.ErrOrStderr(), s.LogLevel, s.LogFormat)
			if err != nil {
				return err
			}
			Settings = s
			Logger = logger
			return nil
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVarP(&flagDir, "dir", "C", ".", "project directory that relative paths resolve against")
	root.PersistentFlags().StringVar(&flagRegistry, "registry", config.RegistryFileName, "registry file (.json, .yaml or .yml)")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(newInitCmd())
	root.AddCommand(newAddCmd())
	root.AddCommand(newUpdateCmd())
	root.AddCommand(newRemoveCmd())
	root.AddCommand(newListCmd())

	return root
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// registryPath returns the registry file location for the project.
func registryPath() string {
	if filepath.IsAbs(Settings.Registry) {
		return Settings.Registry
	}
	return filepath.Join(flagDir, Settings.Registry)
}

func loadRegistry() (*config.Registry, error) {
	return config.LoadFile(registryPath())
}

func newInstaller() *installer.Installer {
	return &installer.Installer{
		Store: store.New(flagDir),
		Sources: source.Options{
			Client:      source.NewHTTPClient(Settings.Timeout),
			UserAgent:   Settings.UserAgent,
			RetryDelays: Settings.RetryDelays(),
			Logger:      Logger,
		},
		Logger: Logger,
	}
}
