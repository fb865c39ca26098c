package ui

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"transcheck/internal/domain"
)

func TestFailureIndex(t *testing.T) {
	report := sampleReport(t)

	idx := failureIndex(report)
	assert.Equal(t, []int{0, 2}, idx)
	assert.Equal(t, "UI-01", report.Verdicts[idx[0]].CaseID)
	assert.Equal(t, "FAIL-03", report.Verdicts[idx[1]].CaseID)
}

func TestToggleReviewed(t *testing.T) {
	report := sampleReport(t)
	idx := failureIndex(report)

	assert.Equal(t, 2, countUnreviewed(report, idx))
	toggleReviewed(report, idx[1])
	assert.True(t, report.Verdicts[idx[1]].Reviewed)
	assert.Equal(t, 1, countUnreviewed(report, idx))
	toggleReviewed(report, idx[1])
	assert.Equal(t, 2, countUnreviewed(report, idx))
}

func TestFailureScreen_Toggle(t *testing.T) {
	report := sampleReport(t)
	var saved int
	saveErr := error(nil)
	fs := newFailureScreen(report, failureIndex(report), func(*domain.RunReport) error {
		saved++
		return saveErr
	})

	assert.Equal(t, 2, fs.list.GetItemCount())
	assert.Contains(t, fs.header.GetText(false), "2 unreviewed")

	fs.toggle()
	assert.Equal(t, 1, saved)
	assert.True(t, report.Verdicts[0].Reviewed)
	assert.Contains(t, fs.header.GetText(false), "1 unreviewed")
	assert.Empty(t, fs.status.GetText(false))

	saveErr = errors.New("disk full")
	fs.toggle()
	assert.Equal(t, 2, saved)
	assert.False(t, report.Verdicts[0].Reviewed)
	assert.Contains(t, fs.status.GetText(true), "save failed: disk full")
}

func TestFormatFailureDetails(t *testing.T) {
	tests := []struct {
		name     string
		verdict  domain.Verdict
		contains []string
		absent   []string
	}{
		{
			name: "translation mismatch",
			verdict: domain.Verdict{
				CaseID:      "FAIL-03",
				Category:    domain.CategoryTranslation,
				Input:       "@#$%^&*",
				Expected:    domain.OutcomeError,
				Actual:      domain.OutcomeSuccess,
				Observed:    "ස",
				Failure:     domain.FailureOutcomeMismatch,
				Rule:        "blank",
				Ambiguous:   true,
				Diagnostics: []string{"expected error, observed success"},
			},
			contains: []string{"✗ Case: FAIL-03", "outcome_mismatch", "blank (ambiguous)", "@#$%^&*", "ස", "expected error, observed success"},
		},
		{
			name: "structural failure",
			verdict: domain.Verdict{
				CaseID:      "UI-01",
				Category:    domain.CategoryStructural,
				Observed:    "7/8 checks passed",
				Failure:     domain.FailureStructuralAssertion,
				Diagnostics: []string{"visible language: not visible"},
			},
			contains: []string{"✗ Case: UI-01", "7/8 checks passed", "visible language"},
			absent:   []string{"Expected:", "Input:"},
		},
		{
			name: "many diagnostics are capped",
			verdict: domain.Verdict{
				CaseID:      "X",
				Diagnostics: []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11", "12"},
			},
			contains: []string{"... and 2 more lines"},
		},
		{
			name: "tview tags in input are escaped",
			verdict: domain.Verdict{
				CaseID: "FAIL-09",
				Input:  "[red]",
			},
			contains: []string{"[red[]"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := formatFailureDetails(tt.verdict)
			for _, s := range tt.contains {
				assert.Contains(t, got, s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, got, s)
			}
		})
	}
}

func TestFormatFailureStats(t *testing.T) {
	v := domain.Verdict{CaseID: "FAIL-03", Partition: domain.PartitionNegative}

	got := formatFailureStats(v, "")
	assert.Contains(t, got, "unknown target")
	assert.Contains(t, got, "FAIL-03")
	assert.Contains(t, got, "unreviewed")

	v.Reviewed = true
	got = formatFailureStats(v, "http://target/")
	assert.Contains(t, got, "http://target/")
	assert.Contains(t, got, "[green]reviewed")
}

func TestProgressBar_Update(t *testing.T) {
	var buf syncBuffer
	bar := NewProgressBar(4, &buf)
	bar.Update(1, 1, 0)
	bar.Update(3, 1, 1)
	bar.Finish()

	assert.Contains(t, buf.String(), "indeterminate: 1]")
}
