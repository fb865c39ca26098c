package execution

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"transcheck/internal/classify"
	"transcheck/internal/config"
	"transcheck/internal/domain"
	"transcheck/internal/driver"
	"transcheck/internal/extract"
)

// ErrTargetUnreachable aborts the whole run: the target page could not be
// loaded, so no verdict would mean anything.
var ErrTargetUnreachable = errors.New("target unreachable")

// Runner executes a single case in its own browser session
type Runner struct {
	config     *config.Config
	driver     driver.Driver
	classifier *classify.Classifier
	extractor  *extract.Extractor
	logger     *zap.Logger
}

// NewRunner creates a new Runner
func NewRunner(cfg *config.Config, drv driver.Driver, cls *classify.Classifier, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	ext := extract.New(
		cfg.Locator(config.ControlOutput),
		cfg.Locator(config.ControlErrorIndicator),
		cfg.PollInterval,
		cfg.ExtractTimeout,
		cfg.StableReads,
		cfg.EmptyGrace,
		logger,
	)
	return &Runner{config: cfg, driver: drv, classifier: cls, extractor: ext, logger: logger}
}

// Run opens a fresh session, loads the target and verifies c. The error is
// non-nil only for conditions that must abort the run.
func (r *Runner) Run(ctx context.Context, c domain.TestCase, workerID int) (domain.Verdict, error) {
	start := time.Now()
	log := r.logger.With(zap.String("case", c.ID), zap.Int("worker", workerID))

	s, err := r.driver.NewSession(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return domain.CancelledVerdict(c, ctx.Err().Error()), nil
		}
		return domain.Verdict{}, fmt.Errorf("open session for %s: %w", c.ID, err)
	}
	defer s.Close()

	if err := r.navigate(ctx, s); err != nil {
		if ctx.Err() != nil {
			return domain.CancelledVerdict(c, ctx.Err().Error()), nil
		}
		log.Error("target unreachable", zap.String("url", r.config.TargetURL), zap.Error(err))
		return domain.Verdict{}, fmt.Errorf("%w: %s: %v", ErrTargetUnreachable, r.config.TargetURL, err)
	}

	var v domain.Verdict
	if c.Partition == domain.PartitionStructural {
		v = r.runStructural(ctx, s, c, log)
	} else {
		v = r.runTranslation(ctx, s, c, log)
	}
	v.Duration = time.Since(start)
	v.DurationMS = v.Duration.Milliseconds()
	return v, nil
}

func (r *Runner) navigate(ctx context.Context, s driver.Session) error {
	nctx := ctx
	if r.config.NavigationTimeout > 0 {
		var cancel context.CancelFunc
		nctx, cancel = context.WithTimeout(ctx, r.config.NavigationTimeout)
		defer cancel()
	}
	return s.Navigate(nctx, r.config.TargetURL)
}

// attempt is one submission of the case input.
type attempt struct {
	outcome   domain.Outcome
	text      string
	found     bool
	indicator bool
	failure   domain.FailureKind
	err       error
}

func (r *Runner) runTranslation(ctx context.Context, s driver.Session, c domain.TestCase, log *zap.Logger) domain.Verdict {
	cls := r.classifier.Classify(c.Input)
	v := domain.Verdict{
		CaseID:    c.ID,
		Partition: c.Partition,
		Category:  c.Category(),
		Input:     c.Input,
		Expected:  c.Expected,
		Rule:      cls.Rule,
		Ambiguous: cls.Ambiguous,
	}
	if v.Expected == "" {
		v.Expected = cls.Outcome
	}
	if cls.Ambiguous {
		v.Diagnostics = append(v.Diagnostics, "ambiguous-rule:"+cls.Rule)
	}
	if c.Override != "" && cls.Outcome != v.Expected {
		v.Diagnostics = append(v.Diagnostics, "override: "+c.Override)
	}

	input, err := r.locate(ctx, s, config.ControlInput)
	if err != nil {
		if ctx.Err() != nil {
			return domain.CancelledVerdict(c, ctx.Err().Error())
		}
		v.Actual = domain.OutcomeIndeterminate
		v.Failure = domain.FailureStructuralAssertion
		v.Diagnostics = append(v.Diagnostics, fmt.Sprintf("%s: input control: %v", domain.FailureStructuralAssertion, err))
		log.Warn("input control missing", zap.Error(err))
		return v
	}

	repeat := r.config.Repeat
	if repeat < 1 {
		repeat = 1
	}

	var first attempt
	for i := 0; i < repeat; i++ {
		prev := ""
		if i > 0 {
			prev = first.text
		}
		a := r.submit(ctx, s, input, c.Input, prev)
		if a.err != nil && ctx.Err() != nil {
			return domain.CancelledVerdict(c, ctx.Err().Error())
		}

		if i == 0 {
			first = a
			v.Actual = a.outcome
			v.Observed = a.text
			if a.failure != domain.FailureNone {
				v.Failure = a.failure
				v.Diagnostics = append(v.Diagnostics, diagnostic(a))
				r.logAttempt(log, c, v.Expected, a)
				return v
			}
			if !a.found {
				v.Diagnostics = append(v.Diagnostics, "output surface not found")
			}
			if a.indicator {
				v.Diagnostics = append(v.Diagnostics, "error indicator visible")
			}
			continue
		}

		if a.failure != domain.FailureNone {
			v.Actual = domain.OutcomeIndeterminate
			v.Failure = a.failure
			v.Diagnostics = append(v.Diagnostics, fmt.Sprintf("submission %d: %s", i+1, diagnostic(a)))
			r.logAttempt(log, c, v.Expected, a)
			return v
		}
		if a.outcome != first.outcome || a.text != first.text {
			v.Failure = domain.FailureNonIdempotent
			v.Diagnostics = append(v.Diagnostics, fmt.Sprintf("%s: submission %d observed %s %q, first observed %s %q",
				domain.FailureNonIdempotent, i+1, a.outcome, a.text, first.outcome, first.text))
			log.Warn("non-idempotent output", zap.String("input", c.Input),
				zap.String("first", first.text), zap.String("repeat", a.text))
			return v
		}
	}

	if v.Actual != v.Expected {
		v.Failure = domain.FailureOutcomeMismatch
		v.Diagnostics = append(v.Diagnostics, fmt.Sprintf("%s: expected %s, observed %s %q",
			domain.FailureOutcomeMismatch, v.Expected, v.Actual, v.Observed))
		log.Info("outcome mismatch",
			zap.String("input", c.Input),
			zap.String("expected", string(v.Expected)),
			zap.String("actual", string(v.Actual)),
			zap.String("observed", v.Observed),
			zap.String("rule", cls.Rule))
		return v
	}

	v.Passed = true
	return v
}

// submit resets the input, types text and waits for the output to settle.
// On a resubmission prev is the text the surface showed before, and the
// output must move off it before extraction starts.
func (r *Runner) submit(ctx context.Context, s driver.Session, input driver.Element, text, prev string) attempt {
	if err := input.Fill(ctx, ""); err != nil {
		return attempt{outcome: domain.OutcomeIndeterminate, failure: domain.FailureStructuralAssertion, err: fmt.Errorf("clear input: %w", err)}
	}
	moved := prev == ""
	if !moved {
		var err error
		if moved, err = r.extractor.WaitChange(ctx, s, prev); err != nil {
			return attempt{outcome: domain.OutcomeIndeterminate, failure: domain.FailureStructuralAssertion, err: fmt.Errorf("await output reset: %w", err)}
		}
	}
	if err := input.Fill(ctx, text); err != nil {
		return attempt{outcome: domain.OutcomeIndeterminate, failure: domain.FailureStructuralAssertion, err: fmt.Errorf("fill input: %w", err)}
	}
	if !moved {
		// surface never cleared; give a different rendering time to replace it
		if _, err := r.extractor.WaitChange(ctx, s, prev); err != nil {
			return attempt{outcome: domain.OutcomeIndeterminate, failure: domain.FailureStructuralAssertion, err: fmt.Errorf("await output change: %w", err)}
		}
	}

	x, err := r.extractor.Extract(ctx, s)
	switch {
	case errors.Is(err, extract.ErrExtractionTimeout):
		return attempt{outcome: domain.OutcomeIndeterminate, text: x.Text, found: true, failure: domain.FailureExtractionTimeout, err: err}
	case err != nil:
		return attempt{outcome: domain.OutcomeIndeterminate, failure: domain.FailureStructuralAssertion, err: fmt.Errorf("read output: %w", err)}
	}

	a := attempt{outcome: domain.OutcomeError, text: x.Text, found: x.Found, indicator: x.Indicator}
	if x.Text != "" && !x.Indicator {
		a.outcome = domain.OutcomeSuccess
	}
	return a
}

func diagnostic(a attempt) string {
	if a.failure == domain.FailureExtractionTimeout {
		return "timeout"
	}
	return fmt.Sprintf("%s: %v", a.failure, a.err)
}

func (r *Runner) logAttempt(log *zap.Logger, c domain.TestCase, expected domain.Outcome, a attempt) {
	fields := []zap.Field{
		zap.String("input", c.Input),
		zap.String("expected", string(expected)),
		zap.String("actual", string(a.outcome)),
		zap.String("failure", string(a.failure)),
	}
	if a.failure == domain.FailureExtractionTimeout {
		log.Warn("extraction timeout", append(fields, zap.String("last_text", a.text))...)
		return
	}
	log.Warn("control not interactive", append(fields, zap.Error(a.err))...)
}

// locate resolves a named control with a bounded wait.
func (r *Runner) locate(ctx context.Context, s driver.Session, control string) (driver.Element, error) {
	loc := r.config.Locator(control)
	if loc.IsZero() {
		return nil, fmt.Errorf("no locator configured for control %q", control)
	}
	lctx, cancel := context.WithTimeout(ctx, r.config.ExtractTimeout)
	defer cancel()
	el, err := s.Locate(lctx, loc)
	if err != nil {
		return nil, fmt.Errorf("%s (%s): %w", control, loc, err)
	}
	return el, nil
}
