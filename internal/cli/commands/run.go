package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"transcheck/internal/classify"
	"transcheck/internal/config"
	"transcheck/internal/discovery"
	"transcheck/internal/domain"
	"transcheck/internal/execution"
	"transcheck/internal/matrix"
	"transcheck/internal/storage"
	"transcheck/internal/ui"
	"transcheck/internal/watch"
)

// RunCommand handles the run command
type RunCommand struct {
	config     *config.Config
	filter     *discovery.Filter
	scheduler  execution.Scheduler
	openDriver DriverFactory
	storage    storage.Storage
	formatter  *ui.Formatter
	viewer     ui.Viewer
	logger     *zap.Logger
	progress   io.Writer
	// reload rebuilds the config for watch reruns. Nil keeps the config as is.
	reload func() (*config.Config, error)
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(
	cfg *config.Config,
	filter *discovery.Filter,
	openDriver DriverFactory,
	st storage.Storage,
	formatter *ui.Formatter,
	viewer ui.Viewer,
	logger *zap.Logger,
	progress io.Writer,
) *RunCommand {
	return &RunCommand{
		config:     cfg,
		filter:     filter,
		scheduler:  execution.NewRoundRobinScheduler(),
		openDriver: openDriver,
		storage:    st,
		formatter:  formatter,
		viewer:     viewer,
		logger:     logger,
		progress:   progress,
	}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if rc.config.Flags.Watch {
		return rc.watch(ctx, args)
	}
	return rc.runOnce(ctx, args)
}

func (rc *RunCommand) runOnce(ctx context.Context, args []string) error {
	m, cls, err := loadMatrix(rc.config, args)
	if err != nil {
		return err
	}

	cases, err := rc.selectCases(m)
	if err != nil {
		return err
	}
	if len(cases) == 0 {
		color.Yellow("No cases to execute")
		return nil
	}
	selected := *m
	selected.Cases = cases

	drv, err := rc.openDriver(ctx, rc.config, rc.logger)
	if err != nil {
		return &ExitError{Code: ExitAborted, Err: fmt.Errorf("open browser: %w", err)}
	}
	defer func() {
		if err := drv.Close(); err != nil {
			rc.logger.Warn("closing browser", zap.Error(err))
		}
	}()

	runner := execution.NewRunner(rc.config, drv, cls, rc.logger)
	pool := execution.NewWorkerPool(rc.config, runner, rc.logger)
	pool.SetProgress(ui.NewProgressBar(len(cases), rc.progress))

	report, runErr := pool.Execute(ctx, &selected)

	if err := rc.storage.Save(report); err != nil {
		return fmt.Errorf("failed to save run report: %w", err)
	}
	if rc.config.Flags.History {
		if err := appendHistory(ctx, rc.config, report); err != nil {
			rc.logger.Warn("run history not updated", zap.Error(err))
			color.Yellow("Run history not updated: %v", err)
		}
	}

	rc.formatter.PrintReport(report)

	if rc.config.Flags.OpenFailures && len(report.Failures()) > 0 {
		if err := rc.viewer.View(report); err != nil {
			return err
		}
	}
	return exitStatus(report, runErr)
}

// selectCases applies the ID filter, partitions, --failed and --shard.
func (rc *RunCommand) selectCases(m *domain.Matrix) ([]domain.TestCase, error) {
	flags := rc.config.Flags
	partitions, err := parsePartitions(flags.Partitions)
	if err != nil {
		return nil, err
	}
	cases := rc.filter.FilterCases(m.Cases, flags.NameFilter, partitions)

	if flags.OnlyFailed {
		last, err := rc.storage.Load()
		if err != nil {
			return nil, fmt.Errorf("--failed needs a previous run: %w", err)
		}
		cases = rc.filter.FilterByIDs(cases, last.FailedCaseIDs())
	}

	if flags.Shard != "" {
		return execution.SelectShard(rc.scheduler, cases, flags.Shard)
	}
	return cases, nil
}

// watch runs once, then again after every change to the matrix sources or
// the config file until ctx is cancelled.
func (rc *RunCommand) watch(ctx context.Context, args []string) error {
	paths := rc.config.GetMatrixPaths(args)
	if src := rc.config.Source(); src != "" {
		paths = append(paths, src)
	}
	if len(args) == 0 && rc.config.Source() == "" {
		return errors.New("--watch needs matrix files or a config file to watch")
	}

	w, err := watch.NewWatcher(paths, watch.DefaultDebounce, rc.logger)
	if err != nil {
		return err
	}

	rerun := func(ctx context.Context) {
		if err := rc.runOnce(ctx, args); err != nil {
			var exitErr *ExitError
			if !errors.As(err, &exitErr) || exitErr.Err != nil {
				color.Red("✗ %v", err)
			}
		}
		color.Cyan("Watching %s for changes (Ctrl+C to stop)", strings.Join(w.Paths(), ", "))
	}
	rerun(ctx)
	return w.Run(ctx, func(ctx context.Context) {
		if err := rc.reloadConfig(); err != nil {
			rc.logger.Warn("config reload failed", zap.Error(err))
			color.Red("✗ reload config: %v", err)
			return
		}
		rerun(ctx)
	})
}

// reloadConfig swaps a freshly built config into the shared one, so storage
// and formatter see the new values too.
func (rc *RunCommand) reloadConfig() error {
	if rc.reload == nil {
		return nil
	}
	fresh, err := rc.reload()
	if err != nil {
		return err
	}
	*rc.config = *fresh
	return nil
}

// loadMatrix loads the matrix named by args (the built-in one when empty),
// builds its classifier and resolves every expectation.
func loadMatrix(cfg *config.Config, args []string) (*domain.Matrix, *classify.Classifier, error) {
	m, err := matrix.Load(cfg.GetMatrixPaths(args), cfg.PathsToIgnore)
	if err != nil {
		return nil, nil, err
	}
	cls := matrix.NewClassifier(m, classify.Options{
		EmptyInput: cfg.EmptyInput,
		MaxLength:  cfg.MaxInputLength,
	})
	if err := matrix.Resolve(m, cls); err != nil {
		return nil, nil, err
	}
	return m, cls, nil
}

func parsePartitions(names []string) ([]domain.Partition, error) {
	var out []domain.Partition
	for _, n := range names {
		p := domain.Partition(strings.ToLower(strings.TrimSpace(n)))
		if !p.Valid() {
			return nil, fmt.Errorf("unknown partition %q: want structural, positive or negative", n)
		}
		out = append(out, p)
	}
	return out, nil
}

// appendHistory records the report in the SQL history store, creating the
// schema when needed.
func appendHistory(ctx context.Context, cfg *config.Config, report *domain.RunReport) error {
	history, err := storage.OpenHistory(cfg.History.Driver, cfg.GetHistoryDSN())
	if err != nil {
		return err
	}
	defer history.Close()

	if err := history.EnsureSchema(ctx); err != nil {
		return err
	}
	return history.Append(ctx, report)
}

// exitStatus maps a finished run onto the process exit code.
func exitStatus(report *domain.RunReport, runErr error) error {
	if runErr != nil {
		return &ExitError{Code: ExitAborted, Err: runErr}
	}
	meta := report.Meta
	switch {
	case meta.TranslationFailed > 0:
		return &ExitError{Code: ExitTranslationFailed}
	case meta.StructuralFailed > 0:
		return &ExitError{Code: ExitStructuralFailed}
	}
	return nil
}
