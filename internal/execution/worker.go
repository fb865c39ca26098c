package execution

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"transcheck/internal/config"
	"transcheck/internal/domain"
)

// WorkerPool runs cases on parallel workers. Each worker owns the session of
// the case it is running; verdicts are merged into one report.
type WorkerPool struct {
	config   *config.Config
	runner   CaseRunner
	progress Progress
	logger   *zap.Logger
}

// NewWorkerPool creates a new WorkerPool
func NewWorkerPool(cfg *config.Config, runner CaseRunner, logger *zap.Logger) *WorkerPool {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkerPool{config: cfg, runner: runner, logger: logger}
}

// SetProgress sets the progress bar for the worker pool
func (wp *WorkerPool) SetProgress(progress Progress) {
	wp.progress = progress
}

// Execute runs every case of m. The report is always returned finalized; the
// error is non-nil when a fatal condition aborted the run.
func (wp *WorkerPool) Execute(ctx context.Context, m *domain.Matrix) (*domain.RunReport, error) {
	cases := m.Cases
	workerCount := wp.config.Workers
	if workerCount <= 0 {
		workerCount = 1
	}
	if workerCount > len(cases) && len(cases) > 0 {
		workerCount = len(cases)
	}

	order := make([]string, len(cases))
	for i, c := range cases {
		order[i] = c.ID
	}
	report := domain.NewRunReport(m.Name, wp.config.TargetURL, workerCount, order)
	startTime := time.Now()
	if len(cases) == 0 {
		report.Finalize(0, 0, "")
		return report, nil
	}

	runCtx := ctx
	if wp.config.RunTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, wp.config.RunTimeout)
		defer cancel()
	}
	g, gctx := errgroup.WithContext(runCtx)
	// fail-fast only stops dispatching; in-flight cases finish normally
	dispatchCtx, stopDispatch := context.WithCancel(gctx)
	defer stopDispatch()

	queue := make(chan domain.TestCase)
	g.Go(func() error {
		defer close(queue)
		for _, c := range cases {
			select {
			case <-dispatchCtx.Done():
				return nil
			case queue <- c:
			}
		}
		return nil
	})

	var (
		mu        sync.Mutex
		done      = make(map[string]bool, len(cases))
		completed int
		passed    int
		failed    int
	)
	record := func(v domain.Verdict) {
		if err := report.Append(v); err != nil {
			wp.logger.Error("dropping verdict", zap.String("case", v.CaseID), zap.Error(err))
			return
		}
		mu.Lock()
		defer mu.Unlock()
		done[v.CaseID] = true
		completed++
		if v.Passed {
			passed++
		} else {
			failed++
		}
		if wp.progress != nil {
			wp.progress.Update(completed, passed, failed)
		}
		if !v.Passed && wp.config.Flags.FailFast {
			stopDispatch()
		}
	}

	for i := 1; i <= workerCount; i++ {
		workerID := i
		g.Go(func() error {
			for c := range queue {
				v, err := wp.runner.Run(gctx, c, workerID)
				if err != nil {
					return err
				}
				record(v)
			}
			return nil
		})
	}

	err := g.Wait()

	// cases never dispatched: cancelled by the run timeout or interrupt,
	// skipped after fail-fast
	skipped := 0
	reason := cancelReason(ctx, runCtx)
	for _, c := range cases {
		if done[c.ID] {
			continue
		}
		if err == nil && reason != "" {
			record(domain.CancelledVerdict(c, reason))
			continue
		}
		skipped++
	}
	if wp.progress != nil {
		wp.progress.Finish()
	}

	aborted := ""
	if err != nil {
		aborted = err.Error()
		wp.logger.Error("run aborted", zap.Error(err))
	} else if reason != "" {
		wp.logger.Warn("run cancelled", zap.String("reason", reason), zap.Int("cases", len(cases)-completed))
	}
	report.Finalize(time.Since(startTime), skipped, aborted)
	return report, err
}

var _ Executor = (*WorkerPool)(nil)

func cancelReason(parent, run context.Context) string {
	switch {
	case parent.Err() != nil:
		return "interrupted"
	case errors.Is(run.Err(), context.DeadlineExceeded):
		return "run timeout"
	}
	return ""
}
