package domain

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrReportFinalized is returned when appending to a finalized report.
var ErrReportFinalized = errors.New("run report is finalized")

// ReportMeta holds the aggregate counts of a run.
type ReportMeta struct {
	RunID             string  `json:"run_id"`
	Matrix            string  `json:"matrix"`
	TargetURL         string  `json:"target_url"`
	Total             int     `json:"total"`
	Passed            int     `json:"passed"`
	Failed            int     `json:"failed"`
	Indeterminate     int     `json:"indeterminate"`
	StructuralFailed  int     `json:"structural_failed"`
	TranslationFailed int     `json:"translation_failed"`
	Skipped           int     `json:"skipped"`
	Ambiguous         int     `json:"ambiguous"`
	Duration          string  `json:"duration"`
	DurationSeconds   float64 `json:"duration_seconds"`
	Workers           int     `json:"workers"`
	Timestamp         string  `json:"timestamp"`
	Aborted           string  `json:"aborted,omitempty"`
}

// RunReport owns all verdicts of one run.
type RunReport struct {
	Meta     ReportMeta `json:"meta"`
	Verdicts []Verdict  `json:"verdicts"`

	mu        sync.Mutex
	order     map[string]int
	finalized bool
}

// NewRunReport creates an empty report. order gives the matrix position of
// each case so the finalized report is ordered independently of completion order.
func NewRunReport(matrix, targetURL string, workers int, order []string) *RunReport {
	idx := make(map[string]int, len(order))
	for i, id := range order {
		idx[id] = i
	}
	return &RunReport{
		Meta: ReportMeta{
			RunID:     uuid.NewString(),
			Matrix:    matrix,
			TargetURL: targetURL,
			Workers:   workers,
			Timestamp: time.Now().Format(time.RFC3339),
		},
		order: idx,
	}
}

// Append adds a verdict. Safe for concurrent use.
func (r *RunReport) Append(v Verdict) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finalized {
		return ErrReportFinalized
	}
	r.Verdicts = append(r.Verdicts, v)
	return nil
}

// Finalize orders verdicts by matrix position, computes the aggregates and
// makes the report read-only.
func (r *RunReport) Finalize(duration time.Duration, skipped int, aborted string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finalized {
		return
	}
	sort.SliceStable(r.Verdicts, func(i, j int) bool {
		return r.position(r.Verdicts[i].CaseID) < r.position(r.Verdicts[j].CaseID)
	})
	r.Meta.Skipped = skipped
	r.Meta.Aborted = aborted
	r.Meta.Duration = duration.String()
	r.Meta.DurationSeconds = duration.Seconds()
	r.recount()
	r.finalized = true
}

func (r *RunReport) position(id string) int {
	if p, ok := r.order[id]; ok {
		return p
	}
	return len(r.order)
}

func (r *RunReport) recount() {
	m := &r.Meta
	m.Total = len(r.Verdicts)
	m.Passed, m.Failed, m.Indeterminate = 0, 0, 0
	m.StructuralFailed, m.TranslationFailed, m.Ambiguous = 0, 0, 0
	for _, v := range r.Verdicts {
		if v.Ambiguous {
			m.Ambiguous++
		}
		switch {
		case v.Passed:
			m.Passed++
			continue
		case v.Indeterminate():
			m.Indeterminate++
		default:
			m.Failed++
		}
		if v.Category == CategoryStructural {
			m.StructuralFailed++
		} else {
			m.TranslationFailed++
		}
	}
}

// Finalized reports whether Finalize has been called.
func (r *RunReport) Finalized() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finalized
}

// Failures returns the verdicts that did not pass, in report order.
func (r *RunReport) Failures() []Verdict {
	var out []Verdict
	for _, v := range r.Verdicts {
		if !v.Passed {
			out = append(out, v)
		}
	}
	return out
}

// FailedCaseIDs returns the set of case IDs that did not pass.
func (r *RunReport) FailedCaseIDs() map[string]struct{} {
	out := make(map[string]struct{})
	for _, v := range r.Verdicts {
		if !v.Passed {
			out[v.CaseID] = struct{}{}
		}
	}
	return out
}

// MarkLoaded flags a report read from storage as finalized.
func (r *RunReport) MarkLoaded() {
	r.mu.Lock()
	r.finalized = true
	r.mu.Unlock()
}
