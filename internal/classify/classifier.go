// Package classify predicts how the transliteration service should treat an
// input string. Classification is an ordered rule table: the first rule whose
// predicate matches decides the outcome.
package classify

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"transcheck/internal/domain"
)

// Input is the normalized view of a string that rule predicates inspect.
type Input struct {
	Raw     string   // NFC normalized input
	Trimmed string   // Raw without surrounding whitespace
	Tokens  []string // whitespace separated tokens
	Folded  []string // case folded tokens
	Runes   int      // rune count of Raw

	Letters int
	Digits  int
	Spaces  int
	Symbols int // everything that is not a letter, digit or space
}

var folder = cases.Fold()

// NewInput normalizes s for rule evaluation.
func NewInput(s string) Input {
	raw := norm.NFC.String(s)
	in := Input{
		Raw:     raw,
		Trimmed: strings.TrimSpace(raw),
		Tokens:  strings.Fields(raw),
	}
	in.Folded = make([]string, len(in.Tokens))
	for i, tok := range in.Tokens {
		in.Folded[i] = folder.String(tok)
	}
	for _, r := range raw {
		in.Runes++
		switch {
		case unicode.IsLetter(r):
			in.Letters++
		case unicode.IsDigit(r):
			in.Digits++
		case unicode.IsSpace(r):
			in.Spaces++
		default:
			in.Symbols++
		}
	}
	return in
}

// Rule maps a predicate onto an outcome.
type Rule struct {
	Name        string
	Description string
	Outcome     domain.Outcome
	// Ambiguous marks rules whose outcome is a policy decision rather than an
	// observed behaviour of the service. Verdicts produced under them are flagged.
	Ambiguous bool
	Match     func(Input) bool
}

// Classification is the result of classifying one input.
type Classification struct {
	Outcome   domain.Outcome
	Rule      string
	Ambiguous bool
}

// FallbackRule names the outcome used when no rule matches.
const FallbackRule = "unrecognized"

// Classifier evaluates an ordered rule table.
type Classifier struct {
	rules []Rule
}

// New creates a Classifier from an ordered rule list.
func New(rules ...Rule) *Classifier {
	cp := make([]Rule, len(rules))
	copy(cp, rules)
	return &Classifier{rules: cp}
}

// NewDefault creates a Classifier with the default rule table.
func NewDefault(opts Options) *Classifier {
	return New(DefaultRules(opts)...)
}

// Rules returns a copy of the rule table in evaluation order.
func (c *Classifier) Rules() []Rule {
	cp := make([]Rule, len(c.rules))
	copy(cp, c.rules)
	return cp
}

// Classify returns the expected outcome for text. It has no side effects.
func (c *Classifier) Classify(text string) Classification {
	in := NewInput(text)
	for _, r := range c.rules {
		if r.Match(in) {
			return Classification{Outcome: r.Outcome, Rule: r.Name, Ambiguous: r.Ambiguous}
		}
	}
	return Classification{Outcome: domain.OutcomeError, Rule: FallbackRule}
}

// Insert returns a new Classifier with rule placed before the rule named
// before. An unknown name appends the rule before the fallback.
func (c *Classifier) Insert(rule Rule, before string) *Classifier {
	rules := make([]Rule, 0, len(c.rules)+1)
	inserted := false
	for _, r := range c.rules {
		if !inserted && r.Name == before {
			rules = append(rules, rule)
			inserted = true
		}
		rules = append(rules, r)
	}
	if !inserted {
		rules = append(rules, rule)
	}
	return &Classifier{rules: rules}
}
