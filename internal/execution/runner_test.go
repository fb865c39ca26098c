package execution

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transcheck/internal/config"
	"transcheck/internal/domain"
	"transcheck/internal/driver/drivertest"
)

func hasDiagnostic(v domain.Verdict, prefix string) bool {
	for _, d := range v.Diagnostics {
		if strings.HasPrefix(d, prefix) {
			return true
		}
	}
	return false
}

func TestRunner_Translation(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		translate func(string) string
		actual    domain.Outcome
		passed    bool
		failure   domain.FailureKind
		diag      string
	}{
		{name: "valid phrase renders", input: "oyaa kohomadha", translate: oracle, actual: domain.OutcomeSuccess, passed: true},
		{name: "symbols render nothing", input: "@#$%^&*", translate: oracle, actual: domain.OutcomeError, passed: true},
		{name: "digits rendered is a mismatch", input: "123456789", translate: always, actual: domain.OutcomeSuccess, failure: domain.FailureOutcomeMismatch, diag: string(domain.FailureOutcomeMismatch)},
		{name: "valid phrase not rendered is a mismatch", input: "mama kolamba jiivath wenavaa", translate: func(string) string { return "" }, actual: domain.OutcomeError, failure: domain.FailureOutcomeMismatch, diag: string(domain.FailureOutcomeMismatch)},
		{name: "blank input is flagged ambiguous", input: "   ", translate: oracle, actual: domain.OutcomeError, failure: domain.FailureOutcomeMismatch, diag: "ambiguous-rule:blank"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			r := NewRunner(cfg, translatorDriver(cfg, tt.translate), defaultClassifier, nil)

			v, err := r.Run(context.Background(), translationCase("T-1", tt.input), 1)
			require.NoError(t, err)
			assert.Equal(t, tt.actual, v.Actual)
			assert.Equal(t, tt.passed, v.Passed)
			assert.Equal(t, tt.failure, v.Failure)
			assert.Equal(t, domain.CategoryTranslation, v.Category)
			assert.Equal(t, tt.input, v.Input)
			if tt.diag != "" {
				assert.True(t, hasDiagnostic(v, tt.diag), "diagnostics %v lack %q", v.Diagnostics, tt.diag)
			}
			if tt.actual == domain.OutcomeSuccess {
				assert.NotEmpty(t, v.Observed)
			}
		})
	}
}

func TestRunner_ExtractionTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.ExtractTimeout = 50 * cfg.PollInterval
	drv := drivertest.NewDriver(func() *drivertest.Page {
		p := drivertest.TranslatorPage(cfg.Locators, oracle, 0)
		p.Element(cfg.Locator(config.ControlOutput)).TextFunc = strconv.Itoa
		return p
	})

	v, err := NewRunner(cfg, drv, defaultClassifier, nil).Run(context.Background(), translationCase("T-1", "mama yanavaa"), 1)
	require.NoError(t, err)
	assert.True(t, v.Indeterminate())
	assert.False(t, v.Passed)
	assert.Equal(t, domain.FailureExtractionTimeout, v.Failure)
	assert.Contains(t, v.Diagnostics, "timeout")
}

func TestRunner_InputMissing(t *testing.T) {
	cfg := testConfig()
	drv := drivertest.NewDriver(func() *drivertest.Page {
		p := drivertest.TranslatorPage(cfg.Locators, oracle, 0)
		p.Remove(cfg.Locator(config.ControlInput))
		return p
	})

	v, err := NewRunner(cfg, drv, defaultClassifier, nil).Run(context.Background(), translationCase("T-1", "mama yanavaa"), 1)
	require.NoError(t, err)
	assert.True(t, v.Indeterminate())
	assert.Equal(t, domain.FailureStructuralAssertion, v.Failure)
	assert.True(t, hasDiagnostic(v, string(domain.FailureStructuralAssertion)))
}

func TestRunner_TargetUnreachable(t *testing.T) {
	cfg := testConfig()
	drv := drivertest.NewDriver(func() *drivertest.Page {
		p := drivertest.TranslatorPage(cfg.Locators, oracle, 0)
		p.NavigateErr = errors.New("net::ERR_NAME_NOT_RESOLVED")
		return p
	})

	_, err := NewRunner(cfg, drv, defaultClassifier, nil).Run(context.Background(), translationCase("T-1", "mama"), 1)
	assert.ErrorIs(t, err, ErrTargetUnreachable)

	_, active, _ := drv.Stats()
	assert.Zero(t, active, "session must be closed")
}

func TestRunner_FreshSessionNavigatesTarget(t *testing.T) {
	cfg := testConfig()
	drv := translatorDriver(cfg, oracle)
	r := NewRunner(cfg, drv, defaultClassifier, nil)

	for i := 0; i < 3; i++ {
		_, err := r.Run(context.Background(), translationCase("T-"+strconv.Itoa(i), "mama yanavaa"), 1)
		require.NoError(t, err)
	}

	opened, active, _ := drv.Stats()
	assert.Equal(t, 3, opened)
	assert.Zero(t, active)
	for _, p := range drv.Pages() {
		assert.Equal(t, []string{cfg.TargetURL}, p.Navigated())
	}
}

func TestRunner_Repeat(t *testing.T) {
	t.Run("stable output is idempotent", func(t *testing.T) {
		cfg := testConfig()
		cfg.Repeat = 3
		v, err := NewRunner(cfg, translatorDriver(cfg, oracle), defaultClassifier, nil).
			Run(context.Background(), translationCase("T-1", "oyaa kohomadha"), 1)
		require.NoError(t, err)
		assert.True(t, v.Passed, "diagnostics: %v", v.Diagnostics)
	})

	t.Run("changing output is flagged", func(t *testing.T) {
		cfg := testConfig()
		cfg.Repeat = 2
		var mu sync.Mutex
		n := 0
		drifting := func(s string) string {
			if s == "" {
				return ""
			}
			mu.Lock()
			defer mu.Unlock()
			n++
			return "සිංහල " + strconv.Itoa(n)
		}

		v, err := NewRunner(cfg, translatorDriver(cfg, drifting), defaultClassifier, nil).
			Run(context.Background(), translationCase("T-1", "oyaa kohomadha"), 1)
		require.NoError(t, err)
		assert.False(t, v.Passed)
		assert.Equal(t, domain.FailureNonIdempotent, v.Failure)
		assert.True(t, hasDiagnostic(v, string(domain.FailureNonIdempotent)))
	})

	asyncTests := []struct {
		name      string
		translate func() func(string) string
		passed    bool
	}{
		{
			name:      "delayed stable output is idempotent",
			translate: func() func(string) string { return always },
			passed:    true,
		},
		{
			name: "delayed changing output is flagged",
			translate: func() func(string) string {
				var mu sync.Mutex
				n := 0
				return func(s string) string {
					if s == "" {
						return ""
					}
					mu.Lock()
					defer mu.Unlock()
					n++
					return "සිංහල " + strconv.Itoa(n)
				}
			},
		},
	}
	for _, tt := range asyncTests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Repeat = 2
			cfg.EmptyGrace = 200 * time.Millisecond
			cfg.ExtractTimeout = 2 * time.Second
			translate := tt.translate()
			drv := drivertest.NewDriver(func() *drivertest.Page {
				return drivertest.TranslatorPage(cfg.Locators, translate, 50*time.Millisecond)
			})

			v, err := NewRunner(cfg, drv, defaultClassifier, nil).
				Run(context.Background(), translationCase("T-1", "oyaa kohomadha"), 1)
			require.NoError(t, err)
			assert.Equal(t, tt.passed, v.Passed, "diagnostics: %v", v.Diagnostics)
			if !tt.passed {
				assert.Equal(t, domain.FailureNonIdempotent, v.Failure)
				assert.True(t, hasDiagnostic(v, string(domain.FailureNonIdempotent)))
			}
		})
	}
}

func TestRunner_Override(t *testing.T) {
	cfg := testConfig()
	c := domain.TestCase{
		ID:        "FAIL-99",
		Partition: domain.PartitionNegative,
		Input:     "mama yanavaa",
		Expected:  domain.OutcomeError,
		Override:  "service rejects this phrase",
	}

	v, err := NewRunner(cfg, translatorDriver(cfg, func(string) string { return "" }), defaultClassifier, nil).
		Run(context.Background(), c, 1)
	require.NoError(t, err)
	assert.True(t, v.Passed)
	assert.Contains(t, v.Diagnostics, "override: service rejects this phrase")
	assert.Equal(t, "romanized-phrase", v.Rule)
}

func TestRunner_Cancelled(t *testing.T) {
	cfg := testConfig()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v, err := NewRunner(cfg, translatorDriver(cfg, oracle), defaultClassifier, nil).Run(ctx, translationCase("T-1", "mama"), 1)
	require.NoError(t, err)
	assert.True(t, v.Indeterminate())
	assert.Equal(t, domain.FailureCancelled, v.Failure)
	assert.Equal(t, "cancelled", v.Diagnostics[0])
}

func uiCase(checks ...domain.Check) domain.TestCase {
	return domain.TestCase{ID: "UI-01", Partition: domain.PartitionStructural, Checks: checks}
}

var allChecks = []domain.Check{
	{Kind: domain.CheckTitle, Pattern: "(?i)translator"},
	{Kind: domain.CheckVisible, Control: config.ControlHeading},
	{Kind: domain.CheckVisible, Control: config.ControlInput},
	{Kind: domain.CheckEditable, Control: config.ControlInput},
	{Kind: domain.CheckPresent, Control: config.ControlOutput},
	{Kind: domain.CheckVisible, Control: config.ControlOutputTitle},
	{Kind: domain.CheckVisible, Control: config.ControlClear},
	{Kind: domain.CheckVisible, Control: config.ControlLanguage},
	{Kind: domain.CheckClearResets, Control: config.ControlInput, Input: "oyaa kohomadha"},
}

func TestRunner_Structural(t *testing.T) {
	tests := []struct {
		name   string
		checks []domain.Check
		mutate func(cfg *config.Config, p *drivertest.Page)
		failed int
	}{
		{name: "all checks pass", checks: allChecks},
		{
			name:   "title mismatch",
			checks: []domain.Check{{Kind: domain.CheckTitle, Pattern: "^Google$"}},
			failed: 1,
		},
		{
			name:   "hidden language selector",
			checks: allChecks,
			mutate: func(cfg *config.Config, p *drivertest.Page) {
				p.Element(cfg.Locator(config.ControlLanguage)).SetVisible(false)
			},
			failed: 1,
		},
		{
			name:   "read only input",
			checks: allChecks,
			mutate: func(cfg *config.Config, p *drivertest.Page) {
				p.Element(cfg.Locator(config.ControlInput)).SetEditable(false)
			},
			failed: 1,
		},
		{
			name:   "clear does nothing",
			checks: allChecks,
			mutate: func(cfg *config.Config, p *drivertest.Page) {
				p.Element(cfg.Locator(config.ControlClear)).OnClick = nil
			},
			failed: 1,
		},
		{
			name:   "clear button missing",
			checks: allChecks,
			mutate: func(cfg *config.Config, p *drivertest.Page) {
				p.Remove(cfg.Locator(config.ControlClear))
			},
			failed: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.ExtractTimeout = 30 * cfg.PollInterval
			drv := drivertest.NewDriver(func() *drivertest.Page {
				p := drivertest.TranslatorPage(cfg.Locators, oracle, 0)
				if tt.mutate != nil {
					tt.mutate(cfg, p)
				}
				return p
			})

			v, err := NewRunner(cfg, drv, defaultClassifier, nil).Run(context.Background(), uiCase(tt.checks...), 1)
			require.NoError(t, err)
			assert.Equal(t, domain.CategoryStructural, v.Category)
			assert.Len(t, v.Diagnostics, tt.failed, "diagnostics: %v", v.Diagnostics)
			if tt.failed == 0 {
				assert.True(t, v.Passed)
				assert.Equal(t, domain.OutcomeSuccess, v.Actual)
				return
			}
			assert.False(t, v.Passed)
			assert.Equal(t, domain.FailureStructuralAssertion, v.Failure)
		})
	}
}
