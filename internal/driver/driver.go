// Package driver defines the browser capabilities the harness depends on.
// Verification code only talks to these interfaces; RodDriver implements them
// on top of a Chrome instance.
package driver

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a locator matches nothing within its wait bound.
var ErrNotFound = errors.New("element not found")

// Locator describes how to find an element on the page.
// Exactly one of CSS or XPath is set.
type Locator struct {
	CSS   string `yaml:"css,omitempty" json:"css,omitempty"`
	XPath string `yaml:"xpath,omitempty" json:"xpath,omitempty"`
	// Text is a regular expression the element's text must match (CSS only).
	Text string `yaml:"text,omitempty" json:"text,omitempty"`
	// Nth selects among multiple matches, zero based.
	Nth int `yaml:"nth,omitempty" json:"nth,omitempty"`
}

func (l Locator) String() string {
	switch {
	case l.XPath != "":
		return "xpath=" + l.XPath
	case l.Text != "":
		return fmt.Sprintf("css=%s text=/%s/ nth=%d", l.CSS, l.Text, l.Nth)
	default:
		return fmt.Sprintf("css=%s nth=%d", l.CSS, l.Nth)
	}
}

// IsZero reports whether the locator is unset.
func (l Locator) IsZero() bool {
	return l.CSS == "" && l.XPath == ""
}

// Driver hands out isolated sessions.
type Driver interface {
	// NewSession opens an isolated browsing context. The caller owns the
	// session exclusively and must Close it.
	NewSession(ctx context.Context) (Session, error)
	Close() error
}

// Session is one isolated page.
type Session interface {
	Navigate(ctx context.Context, url string) error
	Title(ctx context.Context) (string, error)
	// Locate waits until the locator matches or ctx is done.
	Locate(ctx context.Context, loc Locator) (Element, error)
	Close() error
}

// Element is a handle to a DOM element.
type Element interface {
	// Fill replaces the element's value with text.
	Fill(ctx context.Context, text string) error
	Click(ctx context.Context) error
	Text(ctx context.Context) (string, error)
	Value(ctx context.Context) (string, error)
	Visible(ctx context.Context) (bool, error)
	Editable(ctx context.Context) (bool, error)
}
