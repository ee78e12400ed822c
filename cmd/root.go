package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/Ham-Mazz/stock-portfolio-analyzer/config"
	"github.com/Ham-Mazz/stock-portfolio-analyzer/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const defaultConfigFile = "config.base.yaml"

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "stockfolio",
		Short:         "Fetch daily stock prices into a local store and analyze them with SQL",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("config", defaultConfigFile, "base config file; config.<APP_ENV>.yaml next to it is merged on top")

	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newAnalyzeCmd())
	rootCmd.AddCommand(newQueryCmd())
	rootCmd.AddCommand(newSummaryCmd())
	rootCmd.AddCommand(newScheduleCmd())
	return rootCmd
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func isRunningOnGitHubActions() bool {
	return os.Getenv("GITHUB_ACTIONS") == "true"
}

func initializeConfigAndLogger(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	if !isRunningOnGitHubActions() {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	baseConfigFilename, _ := cmd.Flags().GetString("config")
	explicit := cmd.Flags().Changed("config")

	// 1. Open the base configuration file. The default one is optional.
	baseConfigFile, err := os.Open(baseConfigFilename)
	switch {
	case err == nil:
		defer baseConfigFile.Close()
	case errors.Is(err, fs.ErrNotExist) && !explicit:
		baseConfigFile = nil
	default:
		return nil, nil, fmt.Errorf("error opening base config file: %w", err)
	}

	// 2. Prepare environment-specific config reader (if needed)
	env := os.Getenv("APP_ENV")
	var envConfigFile *os.File
	envConfigFilename := filepath.Join(filepath.Dir(baseConfigFilename), fmt.Sprintf("config.%s.yaml", env))
	if _, err := os.Stat(envConfigFilename); env != "" && err == nil {
		envConfigFile, err = os.Open(envConfigFilename)
		if err != nil {
			return nil, nil, fmt.Errorf("error opening environment config file: %w", err)
		}
		defer envConfigFile.Close()
	}

	// 3. Create the config
	cfg, err := config.NewConfig(readerOrNil(baseConfigFile), readerOrNil(envConfigFile), env)
	if err != nil {
		return nil, nil, fmt.Errorf("error reading config: %w", err)
	}

	return cfg, logger.NewLogger(cfg.Log), nil
}

// readerOrNil avoids passing a typed nil *os.File as a non-nil io.Reader.
func readerOrNil(f *os.File) io.Reader {
	if f == nil {
		return nil
	}
	return f
}
