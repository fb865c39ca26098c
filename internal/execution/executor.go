package execution

import (
	"context"

	"transcheck/internal/domain"
)

// Executor runs the cases of a matrix and returns the finalized report
type Executor interface {
	Execute(ctx context.Context, m *domain.Matrix) (*domain.RunReport, error)
}

// CaseRunner executes a single case. A returned error is fatal for the run.
type CaseRunner interface {
	Run(ctx context.Context, c domain.TestCase, workerID int) (domain.Verdict, error)
}

// Progress receives updates as cases complete
type Progress interface {
	Update(completed, passed, failed int)
	Finish()
}
