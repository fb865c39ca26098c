// Package drivertest provides an in-memory driver.Driver whose pages are
// scripted by tests.
package drivertest

import (
	"context"
	"sync"
	"time"

	"transcheck/internal/config"
	"transcheck/internal/driver"
)

// Element is a scriptable DOM element.
type Element struct {
	mu       sync.Mutex
	text     string
	value    string
	visible  bool
	editable bool
	reads    int

	// TextFunc, when set, produces the text for the n-th read (starting at 1).
	TextFunc func(n int) string
	// OnFill runs after Fill stored the new value.
	OnFill func(value string)
	// OnClick runs on Click.
	OnClick func()
	// Err is returned by every call when set.
	Err error
}

// NewElement returns a visible, editable element.
func NewElement() *Element {
	return &Element{visible: true, editable: true}
}

func (e *Element) SetText(s string) {
	e.mu.Lock()
	e.text = s
	e.mu.Unlock()
}

func (e *Element) SetValue(s string) {
	e.mu.Lock()
	e.value = s
	e.mu.Unlock()
}

func (e *Element) SetVisible(v bool) {
	e.mu.Lock()
	e.visible = v
	e.mu.Unlock()
}

func (e *Element) SetEditable(v bool) {
	e.mu.Lock()
	e.editable = v
	e.mu.Unlock()
}

// Reads returns how many times Text was called.
func (e *Element) Reads() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.reads
}

func (e *Element) Fill(ctx context.Context, text string) error {
	e.mu.Lock()
	if e.Err != nil {
		e.mu.Unlock()
		return e.Err
	}
	e.value = text
	hook := e.OnFill
	e.mu.Unlock()
	if hook != nil {
		hook(text)
	}
	return nil
}

func (e *Element) Click(ctx context.Context) error {
	e.mu.Lock()
	err, hook := e.Err, e.OnClick
	e.mu.Unlock()
	if err != nil {
		return err
	}
	if hook != nil {
		hook()
	}
	return nil
}

func (e *Element) Text(ctx context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.Err != nil {
		return "", e.Err
	}
	e.reads++
	if e.TextFunc != nil {
		return e.TextFunc(e.reads), nil
	}
	return e.text, nil
}

func (e *Element) Value(ctx context.Context) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.value, e.Err
}

func (e *Element) Visible(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.visible, e.Err
}

func (e *Element) Editable(ctx context.Context) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.editable, e.Err
}

// Page is a scriptable page: a title plus elements keyed by locator.
type Page struct {
	mu          sync.Mutex
	title       string
	elements    map[driver.Locator]*Element
	navigated   []string
	NavigateErr error
}

// NewPage returns an empty page.
func NewPage(title string) *Page {
	return &Page{title: title, elements: make(map[driver.Locator]*Element)}
}

// Add registers el under loc and returns it.
func (p *Page) Add(loc driver.Locator, el *Element) *Element {
	p.mu.Lock()
	p.elements[loc] = el
	p.mu.Unlock()
	return el
}

// Remove drops the element registered under loc.
func (p *Page) Remove(loc driver.Locator) {
	p.mu.Lock()
	delete(p.elements, loc)
	p.mu.Unlock()
}

// Element returns the element registered under loc, or nil.
func (p *Page) Element(loc driver.Locator) *Element {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.elements[loc]
}

// Navigated returns the URLs passed to Navigate.
func (p *Page) Navigated() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.navigated...)
}

// Driver hands out sessions over freshly built pages.
type Driver struct {
	mu        sync.Mutex
	newPage   func() *Page
	pages     []*Page
	active    int
	maxActive int
	opened    int
	closed    bool

	// SessionErr is returned by NewSession when set.
	SessionErr error
}

// NewDriver returns a driver that builds a page per session with newPage.
func NewDriver(newPage func() *Page) *Driver {
	return &Driver{newPage: newPage}
}

func (d *Driver) NewSession(ctx context.Context) (driver.Session, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.SessionErr != nil {
		return nil, d.SessionErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := d.newPage()
	d.pages = append(d.pages, p)
	d.active++
	d.opened++
	if d.active > d.maxActive {
		d.maxActive = d.active
	}
	return &session{driver: d, page: p}, nil
}

func (d *Driver) Close() error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	return nil
}

// Stats reports sessions opened, currently open and the peak of concurrently open sessions.
func (d *Driver) Stats() (opened, active, maxActive int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.opened, d.active, d.maxActive
}

// Pages returns every page created so far.
func (d *Driver) Pages() []*Page {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*Page(nil), d.pages...)
}

type session struct {
	driver *Driver
	page   *Page
	once   sync.Once
}

func (s *session) Navigate(ctx context.Context, url string) error {
	s.page.mu.Lock()
	defer s.page.mu.Unlock()
	s.page.navigated = append(s.page.navigated, url)
	return s.page.NavigateErr
}

func (s *session) Title(ctx context.Context) (string, error) {
	s.page.mu.Lock()
	defer s.page.mu.Unlock()
	return s.page.title, nil
}

func (s *session) Locate(ctx context.Context, loc driver.Locator) (driver.Element, error) {
	if el := s.page.Element(loc); el != nil {
		return el, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, driver.ErrNotFound
}

func (s *session) Close() error {
	s.once.Do(func() {
		s.driver.mu.Lock()
		s.driver.active--
		s.driver.mu.Unlock()
	})
	return nil
}

// TranslatorPage builds a page shaped like the transliteration site: filling
// the input renders translate(value) into the output after delay, and the
// clear button empties both.
func TranslatorPage(locators map[string]driver.Locator, translate func(string) string, delay time.Duration) *Page {
	p := NewPage("Swift Translator | Singlish to Sinhala")
	input := p.Add(locators[config.ControlInput], NewElement())
	output := p.Add(locators[config.ControlOutput], NewElement())
	for _, control := range []string{config.ControlOutputTitle, config.ControlLanguage, config.ControlHeading} {
		if loc, ok := locators[control]; ok {
			p.Add(loc, NewElement())
		}
	}
	clearBtn := p.Add(locators[config.ControlClear], NewElement())

	var mu sync.Mutex
	var timer *time.Timer
	input.OnFill = func(value string) {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		if delay <= 0 {
			output.SetText(translate(value))
			return
		}
		timer = time.AfterFunc(delay, func() { output.SetText(translate(value)) })
	}
	clearBtn.OnClick = func() {
		input.SetValue("")
		output.SetText("")
	}
	return p
}
