package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"transcheck/internal/cli"
	"transcheck/internal/config"
	"transcheck/internal/discovery"
	"transcheck/internal/driver"
	"transcheck/internal/migration"
	"transcheck/internal/storage"
	"transcheck/internal/ui"
)

// Process exit codes.
const (
	ExitOK                = 0
	ExitTranslationFailed = 1
	ExitStructuralFailed  = 2
	ExitAborted           = 3
)

// ExitError reports a finished command that must exit with Code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// DriverFactory opens the UI driver used by a run.
type DriverFactory func(ctx context.Context, cfg *config.Config, logger *zap.Logger) (driver.Driver, error)

// RodDriverFactory launches Chrome, or connects to the configured control URL.
func RodDriverFactory(ctx context.Context, cfg *config.Config, logger *zap.Logger) (driver.Driver, error) {
	d, err := driver.NewRodDriver(ctx, driver.RodOptions{
		ControlURL:        cfg.ControlURL,
		Bin:               cfg.BrowserBin,
		Headless:          cfg.Headless,
		NavigationTimeout: cfg.NavigationTimeout,
		Logger:            logger,
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Commands holds all CLI commands
type Commands struct {
	Run      *RunCommand
	List     *ListCommand
	Migrate  *MigrateCommand
	Failures *FailuresCommand
	History  *HistoryCommand
}

// NewCommands creates all commands with dependencies. Reports go to out,
// progress to errOut.
func NewCommands(cfg *config.Config, logger *zap.Logger, openDriver DriverFactory, out, errOut io.Writer) *Commands {
	if logger == nil {
		logger = zap.NewNop()
	}
	if openDriver == nil {
		openDriver = RodDriverFactory
	}

	filter := discovery.NewFilter()
	jsonStorage := storage.NewJSONStorage(cfg)
	formatter := ui.NewFormatter(out)
	dbManager := migration.NewDatabaseManager(cfg)
	migrator := migration.NewSchemaMigrator(cfg, dbManager, errOut)
	failureViewer := ui.NewFailureViewer(jsonStorage)

	return &Commands{
		Run:      NewRunCommand(cfg, filter, openDriver, jsonStorage, formatter, failureViewer, logger, errOut),
		List:     NewListCommand(cfg, filter, formatter, jsonStorage),
		Migrate:  NewMigrateCommand(cfg, migrator),
		Failures: NewFailuresCommand(cfg, jsonStorage, failureViewer),
		History:  NewHistoryCommand(cfg, formatter),
	}
}

// prepare layers the config file, the environment and flags over the defaults.
func prepare(cmd *cobra.Command, flags *cli.Flags, cfg *config.Config) error {
	if err := cfg.LoadFile(flags.ConfigFile); err != nil {
		return err
	}
	if err := cfg.LoadEnv(); err != nil {
		return err
	}
	headlessSet := cmd.Flags().Lookup("headless") != nil && cmd.Flags().Changed("headless")
	return cfg.ApplyFlags(flags.ToConfigFlags(headlessSet))
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config) {
	preRun := func(cmd *cobra.Command, args []string) error {
		return prepare(cmd, flags, cfg)
	}

	// Run command
	runCmd := &cobra.Command{
		Use:     "run [matrix files or dirs...]",
		Short:   "Verify the translator against a case matrix",
		Long:    "Drive the target page through every case of the matrix (the built-in one when no source is given) using parallel browser sessions",
		RunE:    c.Run.Execute,
		PreRunE: preRun,
	}
	c.Run.reload = func() (*config.Config, error) {
		fresh := config.New()
		fresh.ProjectPath = cfg.ProjectPath
		if err := prepare(runCmd, flags, fresh); err != nil {
			return nil, err
		}
		return fresh, nil
	}
	runCmd.Flags().IntVarP(&flags.Workers, "workers", "w", 0, "Number of parallel browser sessions (default from config)")
	runCmd.Flags().StringVarP(&flags.TargetURL, "target-url", "u", "", "URL of the translator page")
	runCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter cases by ID pattern (supports wildcards, e.g., 'PASS-*' or '*-0?')")
	runCmd.Flags().StringSliceVarP(&flags.Partitions, "partition", "p", nil, "Run only these partitions (structural, positive, negative)")
	runCmd.Flags().StringVar(&flags.Shard, "shard", "", "Run the i-th of n round-robin shards, e.g. 1/3")
	runCmd.Flags().BoolVar(&flags.FailFast, "fail-fast", false, "Stop dispatching cases after the first failure")
	runCmd.Flags().BoolVar(&flags.OnlyFailed, "failed", false, "Run only cases that failed in the last run")
	runCmd.Flags().DurationVar(&flags.Timeout, "timeout", 0, "Run-level timeout; unfinished cases become indeterminate")
	runCmd.Flags().DurationVar(&flags.ExtractTimeout, "extract-timeout", 0, "Bound on waiting for the output to settle (5s-15s)")
	runCmd.Flags().IntVar(&flags.Repeat, "repeat", 0, "Submit each translation input this many times in one session")
	runCmd.Flags().StringVar(&flags.EmptyInput, "empty-input", "", "Expected outcome for blank input: success or error")
	runCmd.Flags().BoolVar(&flags.Headless, "headless", true, "Run the browser headless")
	runCmd.Flags().BoolVar(&flags.OpenFailures, "open-failures", false, "Open the failures viewer when the run finishes with failures")
	runCmd.Flags().BoolVar(&flags.Watch, "watch", false, "Re-run when matrix or config files change")
	runCmd.Flags().BoolVar(&flags.History, "history", false, "Append the run to the SQL history store")
	rootCmd.AddCommand(runCmd)

	// List command
	listCmd := &cobra.Command{
		Use:     "list [matrix files or dirs...]",
		Short:   "List the cases of a matrix",
		Long:    "Print the cases grouped by partition with their expected outcome and the classifier rule that decided it",
		RunE:    c.List.Execute,
		PreRunE: preRun,
	}
	listCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter cases by ID pattern (supports wildcards)")
	listCmd.Flags().StringSliceVarP(&flags.Partitions, "partition", "p", nil, "List only these partitions")
	listCmd.Flags().StringVar(&flags.EmptyInput, "empty-input", "", "Expected outcome for blank input: success or error")
	listCmd.Flags().BoolVar(&flags.ShowRules, "rules", false, "Print the classifier rule table")
	listCmd.Flags().BoolVar(&flags.ShowChecks, "checks", false, "Print the checks of structural cases")
	rootCmd.AddCommand(listCmd)

	// Migrate command
	migrateCmd := &cobra.Command{
		Use:     "migrate",
		Short:   "Prepare the run history database",
		Long:    "Create the MySQL history database if missing and apply the history schema",
		RunE:    c.Migrate.Execute,
		PreRunE: preRun,
	}
	rootCmd.AddCommand(migrateCmd)

	// Failures command
	failuresCmd := &cobra.Command{
		Use:     "failures",
		Short:   "View failed cases interactively",
		Long:    "Display failed and indeterminate verdicts from the last run in an interactive viewer",
		RunE:    c.Failures.Execute,
		PreRunE: preRun,
	}
	rootCmd.AddCommand(failuresCmd)

	// History command
	historyCmd := &cobra.Command{
		Use:     "history",
		Short:   "Show recent runs",
		Long:    "Print the most recent runs, or the results of one case, from the SQL history store",
		RunE:    c.History.Execute,
		PreRunE: preRun,
	}
	historyCmd.Flags().IntVarP(&flags.Limit, "limit", "n", 10, "Number of runs to show")
	historyCmd.Flags().StringVar(&flags.CaseID, "case", "", "Show the history of one case")
	rootCmd.AddCommand(historyCmd)
}
