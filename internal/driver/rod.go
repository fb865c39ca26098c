package driver

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

const locatePoll = 100 * time.Millisecond

// RodOptions configures how RodDriver reaches Chrome.
type RodOptions struct {
	// ControlURL connects to an already running browser. When empty a browser
	// is launched from Bin (or the launcher's managed download).
	ControlURL        string
	Bin               string
	Headless          bool
	NavigationTimeout time.Duration
	Logger            *zap.Logger
}

// RodDriver drives a single Chrome process. Every session is an incognito
// browser context, so cookies and storage never leak between sessions.
type RodDriver struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	opts     RodOptions
	logger   *zap.Logger

	mu     sync.Mutex
	closed bool
}

// NewRodDriver launches or connects to Chrome.
func NewRodDriver(ctx context.Context, opts RodOptions) (*RodDriver, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	d := &RodDriver{opts: opts, logger: logger}

	controlURL := opts.ControlURL
	if controlURL == "" {
		l := launcher.New().Headless(opts.Headless)
		if opts.Bin != "" {
			l = l.Bin(opts.Bin)
		}
		url, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch chrome: %w", err)
		}
		d.launcher = l
		controlURL = url
		logger.Debug("chrome launched", zap.String("control_url", controlURL), zap.Bool("headless", opts.Headless))
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		d.killLauncher()
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}
	// element handles outlive the connect context
	d.browser = browser.Context(context.Background())
	return d, nil
}

func (d *RodDriver) NewSession(ctx context.Context) (Session, error) {
	d.mu.Lock()
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return nil, errors.New("driver closed")
	}

	incognito, err := d.browser.Incognito()
	if err != nil {
		return nil, fmt.Errorf("create incognito context: %w", err)
	}
	page, err := incognito.Context(ctx).Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = incognito.Close()
		return nil, fmt.Errorf("open page: %w", err)
	}
	return &rodSession{
		incognito:  incognito,
		page:       page.Context(context.Background()),
		navTimeout: d.opts.NavigationTimeout,
	}, nil
}

func (d *RodDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true

	err := d.browser.Close()
	d.killLauncher()
	return err
}

func (d *RodDriver) killLauncher() {
	if d.launcher == nil {
		return
	}
	d.launcher.Kill()
	d.launcher.Cleanup()
}

type rodSession struct {
	incognito  *rod.Browser
	page       *rod.Page
	navTimeout time.Duration
	once       sync.Once
}

func (s *rodSession) Navigate(ctx context.Context, url string) error {
	page := s.page.Context(ctx)
	if s.navTimeout > 0 {
		page = page.Timeout(s.navTimeout)
	}
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("wait load %s: %w", url, err)
	}
	return nil
}

func (s *rodSession) Title(ctx context.Context) (string, error) {
	info, err := s.page.Context(ctx).Info()
	if err != nil {
		return "", err
	}
	return info.Title, nil
}

func (s *rodSession) Locate(ctx context.Context, loc Locator) (Element, error) {
	if loc.IsZero() {
		return nil, fmt.Errorf("empty locator: %w", ErrNotFound)
	}
	var textRe *regexp.Regexp
	if loc.Text != "" {
		re, err := regexp.Compile(loc.Text)
		if err != nil {
			return nil, fmt.Errorf("locator text pattern %q: %w", loc.Text, err)
		}
		textRe = re
	}

	for {
		el, err := s.find(ctx, loc, textRe)
		if err != nil {
			return nil, err
		}
		if el != nil {
			return &rodElement{el: el}, nil
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("%s: %w", loc, ErrNotFound)
			}
			return nil, ctx.Err()
		case <-time.After(locatePoll):
		}
	}
}

// find performs one non-waiting lookup.
func (s *rodSession) find(ctx context.Context, loc Locator, textRe *regexp.Regexp) (*rod.Element, error) {
	var (
		els rod.Elements
		err error
	)
	if loc.XPath != "" {
		els, err = s.page.ElementsX(loc.XPath)
	} else {
		els, err = s.page.Elements(loc.CSS)
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil
		}
		return nil, fmt.Errorf("query %s: %w", loc, err)
	}

	n := 0
	for _, el := range els {
		if textRe != nil {
			text, err := el.Context(ctx).Text()
			if err != nil || !textRe.MatchString(text) {
				continue
			}
		}
		if n == loc.Nth {
			return el, nil
		}
		n++
	}
	return nil, nil
}

func (s *rodSession) Close() error {
	var err error
	s.once.Do(func() {
		_ = s.page.Close()
		err = s.incognito.Close()
	})
	return err
}

type rodElement struct {
	el *rod.Element
}

const (
	setValueJS = `(v) => {
		this.value = v;
		this.dispatchEvent(new Event('input', {bubbles: true}));
		this.dispatchEvent(new Event('change', {bubbles: true}));
	}`
	keyupJS    = `() => this.dispatchEvent(new KeyboardEvent('keyup', {bubbles: true}))`
	valueJS    = `() => this.value === undefined ? this.textContent : this.value`
	editableJS = `() => !this.disabled && !this.readOnly &&
		(this.isContentEditable || this.tagName === 'TEXTAREA' || this.tagName === 'INPUT')`
)

// Fill empties the element and then types text, so the page sees the same
// input events a user would produce.
func (e *rodElement) Fill(ctx context.Context, text string) error {
	el := e.el.Context(ctx)
	if _, err := el.Eval(setValueJS, ""); err != nil {
		return fmt.Errorf("clear value: %w", err)
	}
	if text != "" {
		if err := el.Input(text); err != nil {
			return fmt.Errorf("input text: %w", err)
		}
	}
	_, err := el.Eval(keyupJS)
	return err
}

func (e *rodElement) Click(ctx context.Context) error {
	return e.el.Context(ctx).Click(proto.InputMouseButtonLeft, 1)
}

func (e *rodElement) Text(ctx context.Context) (string, error) {
	return e.el.Context(ctx).Text()
}

func (e *rodElement) Value(ctx context.Context) (string, error) {
	res, err := e.el.Context(ctx).Eval(valueJS)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

func (e *rodElement) Visible(ctx context.Context) (bool, error) {
	return e.el.Context(ctx).Visible()
}

func (e *rodElement) Editable(ctx context.Context) (bool, error) {
	res, err := e.el.Context(ctx).Eval(editableJS)
	if err != nil {
		return false, err
	}
	return res.Value.Bool(), nil
}
