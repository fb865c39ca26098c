package ui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transcheck/internal/classify"
	"transcheck/internal/domain"
	"transcheck/internal/storage"
)

func init() {
	color.NoColor = true
}

func sampleReport(t *testing.T) *domain.RunReport {
	t.Helper()
	report := domain.NewRunReport("builtin", "http://localhost:8080/", 2, []string{"UI-01", "PASS-01", "FAIL-03"})
	verdicts := []domain.Verdict{
		{
			CaseID:      "FAIL-03",
			Partition:   domain.PartitionNegative,
			Category:    domain.CategoryTranslation,
			Input:       "@#$%^&*",
			Expected:    domain.OutcomeError,
			Actual:      domain.OutcomeSuccess,
			Observed:    "ස",
			Failure:     domain.FailureOutcomeMismatch,
			Rule:        "symbols-only",
			Diagnostics: []string{"expected error, observed success"},
		},
		{
			CaseID:    "PASS-01",
			Partition: domain.PartitionPositive,
			Category:  domain.CategoryTranslation,
			Input:     "mama gedhara yanavaa",
			Expected:  domain.OutcomeSuccess,
			Actual:    domain.OutcomeSuccess,
			Observed:  "මම ගෙදර යනවා",
			Passed:    true,
		},
		{
			CaseID:      "UI-01",
			Partition:   domain.PartitionStructural,
			Category:    domain.CategoryStructural,
			Expected:    domain.OutcomeSuccess,
			Actual:      domain.OutcomeError,
			Observed:    "7/8 checks passed",
			Failure:     domain.FailureStructuralAssertion,
			Diagnostics: []string{"structural_assertion_failure: visible language: not visible"},
		},
	}
	for _, v := range verdicts {
		require.NoError(t, report.Append(v))
	}
	report.Finalize(1500*time.Millisecond, 1, "")
	report.Meta.Timestamp = "2026-01-02T03:04:05Z"
	return report
}

func TestFormatter_PrintReport(t *testing.T) {
	var buf bytes.Buffer
	NewFormatter(&buf).PrintReport(sampleReport(t))

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "report", buf.Bytes())
}

func TestFormatter_PrintReportAllPassed(t *testing.T) {
	report := domain.NewRunReport("m", "http://target/", 1, []string{"PASS-01"})
	require.NoError(t, report.Append(domain.Verdict{CaseID: "PASS-01", Category: domain.CategoryTranslation, Passed: true}))
	report.Finalize(time.Second, 0, "")

	var buf bytes.Buffer
	NewFormatter(&buf).PrintReport(report)

	out := buf.String()
	assert.Contains(t, out, "✓ All 1 case(s) passed!")
	assert.NotContains(t, out, "Failures")
	assert.NotContains(t, out, "skipped")
}

func TestFormatter_PrintReportAborted(t *testing.T) {
	report := domain.NewRunReport("m", "http://target/", 1, []string{"PASS-01", "PASS-02"})
	report.Finalize(time.Second, 2, "target unreachable: http://target/")

	var buf bytes.Buffer
	NewFormatter(&buf).PrintReport(report)

	out := buf.String()
	assert.Contains(t, out, "✗ Run aborted: target unreachable: http://target/")
	assert.Contains(t, out, "2 case(s) skipped")
	assert.NotContains(t, out, "passed!")
}

func TestFormatter_LongValuesStayInsideBox(t *testing.T) {
	report := domain.NewRunReport("m", "https://www.example.com/a/very/long/path/to/the/translator", 1, nil)
	report.Finalize(0, 0, "")

	var buf bytes.Buffer
	NewFormatter(&buf).PrintReport(report)

	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.HasPrefix(line, "│ Target") {
			assert.Equal(t, len([]rune(boxTop)), len([]rune(line)))
			assert.Contains(t, line, "...")
		}
	}
}

func TestFormatter_PrintCaseList(t *testing.T) {
	cls := classify.NewDefault(classify.DefaultOptions())
	cases := []domain.TestCase{
		{ID: "UI-01", Partition: domain.PartitionStructural, Checks: []domain.Check{
			{Kind: domain.CheckTitle, Pattern: "(?i)translator"},
			{Kind: domain.CheckClearResets, Control: "input", Input: "oyaa"},
		}},
		{ID: "PASS-01", Partition: domain.PartitionPositive, Input: "mama gedhara yanavaa", Expected: domain.OutcomeSuccess},
		{ID: "FAIL-01", Partition: domain.PartitionNegative, Input: "", Expected: domain.OutcomeSuccess},
	}

	var buf bytes.Buffer
	NewFormatter(&buf).PrintCaseList("builtin", cases, cls, map[string]struct{}{"FAIL-01": {}}, true)

	out := buf.String()
	assert.Contains(t, out, "Found 3 case(s) in builtin:")
	assert.Contains(t, out, "structural (1)")
	assert.Contains(t, out, "positive (1)")
	assert.Contains(t, out, "UI-01 2 check(s)")
	assert.Contains(t, out, "title (?i)translator")
	assert.Contains(t, out, `clear-resets input "oyaa"`)
	assert.Contains(t, out, `PASS-01 success`)
	assert.Contains(t, out, "ambiguous")
	assert.Contains(t, out, "[F]")
	assert.Equal(t, 1, strings.Count(out, "[F]"))
}

func TestFormatter_PrintRules(t *testing.T) {
	cls := classify.NewDefault(classify.DefaultOptions())

	var buf bytes.Buffer
	NewFormatter(&buf).PrintRules(cls.Rules())

	out := buf.String()
	for _, r := range cls.Rules() {
		assert.Contains(t, out, r.Name)
	}
	assert.Contains(t, out, classify.FallbackRule)
	assert.Contains(t, out, "success*")
}

func TestFormatter_PrintHistory(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(&buf)

	f.PrintHistory(nil)
	assert.Contains(t, buf.String(), "No runs recorded yet.")

	buf.Reset()
	f.PrintHistory([]storage.RunSummary{{
		RunID:     "0123456789abcdef",
		StartedAt: "2026-01-02T03:04:05Z",
		Matrix:    "builtin",
		Total:     35,
		Passed:    33,
		Failed:    2,
		Duration:  12 * time.Second,
	}})
	out := buf.String()
	assert.Contains(t, out, "01234567 ")
	assert.NotContains(t, out, "0123456789")
	assert.Contains(t, out, "builtin")
	assert.Contains(t, out, "12s")
}

func TestFormatter_PrintCaseHistory(t *testing.T) {
	var buf bytes.Buffer
	NewFormatter(&buf).PrintCaseHistory("FAIL-03", []storage.CaseResult{
		{StartedAt: "2026-01-02T03:04:05Z", Actual: domain.OutcomeSuccess, Failure: domain.FailureOutcomeMismatch, Observed: "ස"},
		{StartedAt: "2026-01-01T03:04:05Z", Actual: domain.OutcomeError, Passed: true},
	})

	out := buf.String()
	assert.Contains(t, out, "History of FAIL-03:")
	assert.Contains(t, out, "✗")
	assert.Contains(t, out, "✓")
	assert.Contains(t, out, "outcome_mismatch")
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"this is too long", 10, "this is..."},
		{"මම ගෙදර යනවා", 5, "මම..."},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, truncate(tt.in, tt.n))
		})
	}
}
