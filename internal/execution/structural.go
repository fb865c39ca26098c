package execution

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"transcheck/internal/config"
	"transcheck/internal/domain"
	"transcheck/internal/driver"
)

// defaultClearInput is typed before clicking clear when a clear-resets check
// does not name its own text.
const defaultClearInput = "oyaa kohomadha"

func (r *Runner) runStructural(ctx context.Context, s driver.Session, c domain.TestCase, log *zap.Logger) domain.Verdict {
	v := domain.Verdict{
		CaseID:    c.ID,
		Partition: c.Partition,
		Category:  c.Category(),
		Expected:  domain.OutcomeSuccess,
	}

	passed := 0
	for _, chk := range c.Checks {
		err := r.check(ctx, s, chk)
		if ctx.Err() != nil {
			return domain.CancelledVerdict(c, ctx.Err().Error())
		}
		if err != nil {
			v.Diagnostics = append(v.Diagnostics, fmt.Sprintf("%s: %s: %v", domain.FailureStructuralAssertion, describe(chk), err))
			log.Warn("structural check failed", zap.String("check", describe(chk)), zap.Error(err))
			continue
		}
		passed++
	}

	v.Observed = fmt.Sprintf("%d/%d checks passed", passed, len(c.Checks))
	if passed == len(c.Checks) {
		v.Actual = domain.OutcomeSuccess
		v.Passed = true
		return v
	}
	v.Actual = domain.OutcomeError
	v.Failure = domain.FailureStructuralAssertion
	return v
}

func describe(chk domain.Check) string {
	if chk.Control == "" {
		return string(chk.Kind)
	}
	return string(chk.Kind) + " " + chk.Control
}

func (r *Runner) check(ctx context.Context, s driver.Session, chk domain.Check) error {
	switch chk.Kind {
	case domain.CheckTitle:
		return r.checkTitle(ctx, s, chk.Pattern)
	case domain.CheckPresent:
		_, err := r.locate(ctx, s, chk.Control)
		return err
	case domain.CheckVisible:
		el, err := r.locate(ctx, s, chk.Control)
		if err != nil {
			return err
		}
		return expect(el.Visible(ctx))("not visible")
	case domain.CheckEditable:
		el, err := r.locate(ctx, s, chk.Control)
		if err != nil {
			return err
		}
		return expect(el.Editable(ctx))("not editable")
	case domain.CheckClearResets:
		return r.checkClearResets(ctx, s, chk)
	}
	return fmt.Errorf("unknown check %q", chk.Kind)
}

// expect turns a boolean probe into an error carrying msg when it is false.
func expect(ok bool, err error) func(msg string) error {
	return func(msg string) error {
		if err != nil {
			return err
		}
		if !ok {
			return errors.New(msg)
		}
		return nil
	}
}

func (r *Runner) checkTitle(ctx context.Context, s driver.Session, pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("title pattern: %w", err)
	}
	title, err := s.Title(ctx)
	if err != nil {
		return fmt.Errorf("read title: %w", err)
	}
	if !re.MatchString(title) {
		return fmt.Errorf("title %q does not match %q", title, pattern)
	}
	return nil
}

// checkClearResets types into the control, clicks the clear control and
// waits for the control's value to become empty.
func (r *Runner) checkClearResets(ctx context.Context, s driver.Session, chk domain.Check) error {
	input, err := r.locate(ctx, s, chk.Control)
	if err != nil {
		return err
	}
	text := chk.Input
	if text == "" {
		text = defaultClearInput
	}
	if err := input.Fill(ctx, text); err != nil {
		return fmt.Errorf("fill: %w", err)
	}
	clearBtn, err := r.locate(ctx, s, config.ControlClear)
	if err != nil {
		return err
	}
	if err := clearBtn.Click(ctx); err != nil {
		return fmt.Errorf("click clear: %w", err)
	}

	wctx, cancel := context.WithTimeout(ctx, r.config.ExtractTimeout)
	defer cancel()
	ticker := time.NewTicker(r.config.PollInterval)
	defer ticker.Stop()

	var value string
	for {
		value, err = input.Value(wctx)
		if err == nil && strings.TrimSpace(value) == "" {
			return nil
		}
		select {
		case <-wctx.Done():
			if err != nil {
				return fmt.Errorf("read value: %w", err)
			}
			return fmt.Errorf("value %q still present after clear", value)
		case <-ticker.C:
		}
	}
}
