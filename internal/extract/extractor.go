// Package extract reads the rendered transliteration from the live output
// surface. Rendering is asynchronous, so the extractor polls until the text
// settles instead of reading once.
package extract

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"transcheck/internal/driver"
)

// ErrExtractionTimeout means the output surface was found but its text never
// stabilized within the timeout.
var ErrExtractionTimeout = errors.New("extraction timeout")

// Extraction is the settled state of the output surface.
type Extraction struct {
	Text string
	// Found is false when the output surface could not be located.
	Found bool
	// Indicator is true when a configured error indicator was visible.
	Indicator bool
	Reads     int
}

// Extractor polls the output surface of a session.
type Extractor struct {
	Output    driver.Locator
	Indicator driver.Locator
	Interval  time.Duration
	Timeout   time.Duration
	// StableReads is the number of consecutive identical reads that make text stable.
	StableReads int
	// EmptyGrace is how long an empty surface must stay empty before it counts
	// as "no output" rather than "not rendered yet".
	EmptyGrace time.Duration

	logger *zap.Logger
}

// New creates an Extractor.
func New(output, indicator driver.Locator, interval, timeout time.Duration, stableReads int, emptyGrace time.Duration, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if stableReads <= 0 {
		stableReads = 1
	}
	return &Extractor{
		Output:      output,
		Indicator:   indicator,
		Interval:    interval,
		Timeout:     timeout,
		StableReads: stableReads,
		EmptyGrace:  emptyGrace,
		logger:      logger,
	}
}

// Extract waits for the output surface to settle and returns its text.
// A surface that is never located yields an empty Extraction and no error.
// Cancellation of ctx is returned as ctx's error.
func (e *Extractor) Extract(ctx context.Context, s driver.Session) (Extraction, error) {
	deadline, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	ticker := time.NewTicker(e.Interval)
	defer ticker.Stop()

	var (
		el       driver.Element
		foundAt  time.Time
		last     string
		streak   int
		reads    int
		unstable bool
	)

	for {
		if el == nil {
			found, err := e.locate(deadline, s)
			if err == nil {
				el = found
				foundAt = time.Now()
			} else if !errors.Is(err, driver.ErrNotFound) && !errors.Is(err, context.DeadlineExceeded) {
				return Extraction{}, fmt.Errorf("locate output: %w", err)
			}
		}

		if el != nil {
			raw, err := el.Text(deadline)
			if err != nil {
				// detached or re-rendered node, locate again
				el = nil
				streak = 0
			} else {
				reads++
				text := Normalize(raw)
				if reads > 1 && text == last {
					streak++
				} else {
					if reads > 1 {
						unstable = true
					}
					last, streak = text, 1
				}
				if e.settled(text, streak, foundAt) {
					return e.finish(ctx, s, Extraction{Text: text, Found: true, Reads: reads}), nil
				}
			}
		}

		select {
		case <-ctx.Done():
			return Extraction{}, ctx.Err()
		case <-deadline.Done():
			if ctx.Err() != nil {
				return Extraction{}, ctx.Err()
			}
			if foundAt.IsZero() {
				e.logger.Debug("output surface never located", zap.Stringer("locator", e.Output))
				return Extraction{}, nil
			}
			if streak >= e.StableReads {
				// stable but the empty grace outlasted the timeout
				return e.finish(ctx, s, Extraction{Text: last, Found: true, Reads: reads}), nil
			}
			e.logger.Debug("output surface did not stabilize",
				zap.String("last", last), zap.Int("reads", reads), zap.Bool("changed", unstable))
			return Extraction{Text: last, Found: true, Reads: reads}, ErrExtractionTimeout
		case <-ticker.C:
		}
	}
}

// WaitChange polls the output surface until its normalized text differs from
// prev. It reports false when the surface was missing or still showed prev
// once the timeout elapsed.
func (e *Extractor) WaitChange(ctx context.Context, s driver.Session, prev string) (bool, error) {
	deadline, cancel := context.WithTimeout(ctx, e.Timeout)
	defer cancel()

	ticker := time.NewTicker(e.Interval)
	defer ticker.Stop()

	var el driver.Element
	for {
		if el == nil {
			found, err := e.locate(deadline, s)
			if err == nil {
				el = found
			} else if !errors.Is(err, driver.ErrNotFound) && !errors.Is(err, context.DeadlineExceeded) {
				return false, fmt.Errorf("locate output: %w", err)
			}
		}
		if el != nil {
			raw, err := el.Text(deadline)
			switch {
			case err != nil:
				el = nil
			case Normalize(raw) != prev:
				return true, nil
			}
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-deadline.Done():
			if ctx.Err() != nil {
				return false, ctx.Err()
			}
			return false, nil
		case <-ticker.C:
		}
	}
}

func (e *Extractor) settled(text string, streak int, foundAt time.Time) bool {
	if streak < e.StableReads {
		return false
	}
	if text != "" {
		return true
	}
	return time.Since(foundAt) >= e.EmptyGrace
}

// locate bounds a single lookup by the poll interval so a missing surface
// does not consume the whole timeout in one call.
func (e *Extractor) locate(ctx context.Context, s driver.Session) (driver.Element, error) {
	lctx, cancel := context.WithTimeout(ctx, e.Interval)
	defer cancel()
	return s.Locate(lctx, e.Output)
}

func (e *Extractor) finish(ctx context.Context, s driver.Session, x Extraction) Extraction {
	if e.Indicator.IsZero() {
		return x
	}
	if visible, err := e.indicator(ctx, s); err == nil {
		x.Indicator = visible
	}
	return x
}

func (e *Extractor) indicator(ctx context.Context, s driver.Session) (bool, error) {
	lctx, cancel := context.WithTimeout(ctx, e.Interval)
	defer cancel()
	el, err := s.Locate(lctx, e.Indicator)
	if err != nil {
		return false, err
	}
	return el.Visible(lctx)
}

// Normalize collapses whitespace runs and trims the rendered text.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
