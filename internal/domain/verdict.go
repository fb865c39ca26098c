package domain

import "time"

// Verdict is the result of executing one test case. It is built once by the
// runner and never modified afterwards, except for the Reviewed flag toggled
// in the failure viewer.
type Verdict struct {
	CaseID      string        `json:"case_id"`
	Partition   Partition     `json:"partition"`
	Category    Category      `json:"category"`
	Input       string        `json:"input"`
	Expected    Outcome       `json:"expected,omitempty"`
	Actual      Outcome       `json:"actual,omitempty"`
	Observed    string        `json:"observed"`
	Passed      bool          `json:"passed"`
	Failure     FailureKind   `json:"failure,omitempty"`
	Rule        string        `json:"rule,omitempty"`
	Ambiguous   bool          `json:"ambiguous,omitempty"`
	Diagnostics []string      `json:"diagnostics,omitempty"`
	Duration    time.Duration `json:"-"`
	DurationMS  int64         `json:"duration_ms"`
	Reviewed    bool          `json:"reviewed,omitempty"`
}

// Indeterminate reports whether the verdict could not observe a settled outcome.
func (v Verdict) Indeterminate() bool {
	return v.Actual == OutcomeIndeterminate
}

// CancelledVerdict builds the verdict for a case aborted by the run-level timeout.
func CancelledVerdict(c TestCase, reason string) Verdict {
	diags := []string{"cancelled"}
	if reason != "" {
		diags = append(diags, reason)
	}
	return Verdict{
		CaseID:      c.ID,
		Partition:   c.Partition,
		Category:    c.Category(),
		Input:       c.Input,
		Expected:    c.Expected,
		Actual:      OutcomeIndeterminate,
		Failure:     FailureCancelled,
		Diagnostics: diags,
	}
}
