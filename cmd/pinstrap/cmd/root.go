package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"pinstrap/internal/config"
	"pinstrap/internal/logger"
	"pinstrap/internal/service/launcher"
	"pinstrap/internal/service/selfupdate"
	"pinstrap/internal/version"
)

var (
	// configPath to the configuration INI file.
	configPath string

	// runtimeName is the base interpreter executable name on PATH.
	runtimeName string

	// rootCmd fetches, caches, and hands off to the pinned artifact.
	rootCmd = &cobra.Command{
		Use:           "pinstrap [-- artifact args...]",
		Short:         "Fetch the pinned artifact and replace this process with it",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			devMode := isDevMode()
			if devMode {
				logger.SetLevel(zapcore.DebugLevel)
			}

			options := &launcher.Options{
				ConfigPath:      configPath,
				RuntimeName:     runtimeName,
				RuntimeOverride: os.Getenv(launcher.EnvRuntimeOverride),
				DevMode:         devMode,
				Args:            args,
				OrigArgv:        os.Args,
			}

			return launcher.Run(ctx, options)
		},
	}

	// selfUpdateCmd replaces the launcher binary from the repository.
	selfUpdateCmd = &cobra.Command{
		Use:   "selfupdate",
		Short: "Update the launcher binary from the artifact repository",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return selfupdate.Run(ctx, &selfupdate.Options{ConfigPath: configPath})
		},
	}
)

// isDevMode reads the development-mode environment flag.
func isDevMode() bool {
	switch os.Getenv(launcher.EnvDevMode) {
	case "", "0", "false":
		return false
	default:
		return true
	}
}

// Execute runs the pinstrap CLI. Fatal conditions surface as a single
// error line and a non-zero exit; a successful launch never returns here.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)
	rootCmd.AddCommand(selfUpdateCmd)

	if err := rootCmd.Execute(); err != nil {
		logger.Error(context.Background(), err)
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c",
		config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVar(&runtimeName, "runtime", "python",
		"base name of the runtime interpreter executable")

	// Stop flag parsing at the first positional argument so artifact
	// flags pass through untouched.
	rootCmd.Flags().SetInterspersed(false)
}
