package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"transcheck/internal/cli"
	"transcheck/internal/cli/commands"
	"transcheck/internal/config"
	"transcheck/internal/logging"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	level := logging.Level(false)
	logger, err := logging.Build(level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return commands.ExitTranslationFailed
	}
	defer func() { _ = logger.Sync() }()

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	// Create root command
	rootCmd := &cobra.Command{
		Use:   "transcheck",
		Short: "Acceptance checks for a Singlish to Sinhala transliteration page",
		Long: `Drives a transliteration web page through a curated matrix of inputs in parallel
browser sessions and checks that each input is rendered or rejected as expected.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if flags.Verbose {
				level.SetLevel(zapcore.DebugLevel)
			}
		},
	}
	rootCmd.PersistentFlags().StringVarP(&flags.ConfigFile, "config", "c", "", "Path to the YAML config file (default ./"+config.DefaultConfigFile+")")
	rootCmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Enable debug logging")

	// Create initial config with defaults
	cfg := config.New()

	// Create commands with dependencies
	cmds := commands.NewCommands(cfg, logger, commands.RodDriverFactory, os.Stdout, os.Stderr)

	// Register all commands
	cmds.Register(rootCmd, &flags, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Execute root command
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		var exitErr *commands.ExitError
		if errors.As(err, &exitErr) {
			if exitErr.Err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", exitErr.Err)
			}
			return exitErr.Code
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return commands.ExitTranslationFailed
	}
	return commands.ExitOK
}
