package domain

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunReport_FinalizeOrdersAndCounts(t *testing.T) {
	report := NewRunReport("curated", "http://target", 2, []string{"UI-01", "PASS-01", "FAIL-01", "FAIL-02"})

	verdicts := []Verdict{
		{CaseID: "FAIL-02", Category: CategoryTranslation, Actual: OutcomeIndeterminate, Failure: FailureExtractionTimeout},
		{CaseID: "PASS-01", Category: CategoryTranslation, Actual: OutcomeSuccess, Passed: true},
		{CaseID: "UI-01", Category: CategoryStructural, Failure: FailureStructuralAssertion},
		{CaseID: "FAIL-01", Category: CategoryTranslation, Actual: OutcomeError, Passed: true, Ambiguous: true},
	}

	var wg sync.WaitGroup
	for _, v := range verdicts {
		wg.Add(1)
		go func(v Verdict) {
			defer wg.Done()
			require.NoError(t, report.Append(v))
		}(v)
	}
	wg.Wait()

	report.Finalize(3*time.Second, 1, "")

	ids := make([]string, 0, len(report.Verdicts))
	for _, v := range report.Verdicts {
		ids = append(ids, v.CaseID)
	}
	assert.Equal(t, []string{"UI-01", "PASS-01", "FAIL-01", "FAIL-02"}, ids)

	meta := report.Meta
	assert.Equal(t, 4, meta.Total)
	assert.Equal(t, 2, meta.Passed)
	assert.Equal(t, 1, meta.Failed)
	assert.Equal(t, 1, meta.Indeterminate)
	assert.Equal(t, 1, meta.StructuralFailed)
	assert.Equal(t, 1, meta.TranslationFailed)
	assert.Equal(t, 1, meta.Skipped)
	assert.Equal(t, 1, meta.Ambiguous)
	assert.Equal(t, 3.0, meta.DurationSeconds)
	assert.NotEmpty(t, meta.RunID)
}

func TestRunReport_AppendAfterFinalize(t *testing.T) {
	report := NewRunReport("m", "", 1, nil)
	report.Finalize(time.Second, 0, "")

	err := report.Append(Verdict{CaseID: "late"})
	assert.ErrorIs(t, err, ErrReportFinalized)
	assert.True(t, report.Finalized())
}

func TestRunReport_FailedCaseIDs(t *testing.T) {
	report := NewRunReport("m", "", 1, nil)
	require.NoError(t, report.Append(Verdict{CaseID: "a", Passed: true}))
	require.NoError(t, report.Append(Verdict{CaseID: "b"}))
	report.Finalize(0, 0, "")

	failed := report.FailedCaseIDs()
	assert.Len(t, failed, 1)
	assert.Contains(t, failed, "b")
	assert.Len(t, report.Failures(), 1)
}

func TestParseOutcome(t *testing.T) {
	tests := []struct {
		in   string
		want Outcome
		ok   bool
	}{
		{"success", OutcomeSuccess, true},
		{"error", OutcomeError, true},
		{"indeterminate", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseOutcome(tt.in)
			if ok != tt.ok || got != tt.want {
				t.Errorf("ParseOutcome(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}
