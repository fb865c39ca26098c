package classify

import (
	"strings"
	"unicode"

	"transcheck/internal/domain"
)

// DefaultMaxLength is the input length, in runes, above which the service is
// expected to reject input.
const DefaultMaxLength = 1000

// Rule names of the default table.
const (
	RuleBlank           = "blank"
	RuleOversized       = "oversized"
	RuleDigitsOnly      = "digits-only"
	RuleSymbolsOnly     = "symbols-only"
	RuleCodeSyntax      = "code-syntax"
	RuleEmbeddedSymbols = "embedded-symbols"
	RuleMixedDigits     = "mixed-digits"
	RuleForeignWords    = "foreign-words"
	RuleNonPhonetic     = "non-phonetic-token"
	RuleMisspelled      = "misspelled-vocabulary"
	RuleRomanized       = "romanized-phrase"
)

// Options tunes the default rule table.
type Options struct {
	// EmptyInput is the outcome expected for empty or whitespace-only input.
	EmptyInput domain.Outcome
	// MaxLength is the oversized threshold in runes.
	MaxLength int
	// Vocabulary extends BaseVocabulary with known romanized words.
	Vocabulary []string
}

// DefaultOptions returns the options of the curated matrix.
func DefaultOptions() Options {
	return Options{EmptyInput: domain.OutcomeSuccess, MaxLength: DefaultMaxLength}
}

// DefaultRules builds the ordered default rule table.
func DefaultRules(opts Options) []Rule {
	empty := opts.EmptyInput
	if empty == "" {
		empty = domain.OutcomeSuccess
	}
	maxLen := opts.MaxLength
	if maxLen <= 0 {
		maxLen = DefaultMaxLength
	}
	vocab := newVocabulary(opts.Vocabulary)

	return []Rule{
		{
			Name:        RuleBlank,
			Description: "empty or whitespace-only input",
			Outcome:     empty,
			Ambiguous:   true,
			Match:       func(in Input) bool { return in.Trimmed == "" },
		},
		{
			Name:        RuleOversized,
			Description: "input longer than the length threshold",
			Outcome:     domain.OutcomeError,
			Match:       func(in Input) bool { return in.Runes > maxLen },
		},
		{
			Name:        RuleDigitsOnly,
			Description: "only digits",
			Outcome:     domain.OutcomeError,
			Match: func(in Input) bool {
				return in.Digits > 0 && in.Letters == 0 && in.Symbols == 0
			},
		},
		{
			Name:        RuleSymbolsOnly,
			Description: "no letters, only symbols or symbols mixed with digits",
			Outcome:     domain.OutcomeError,
			Match:       func(in Input) bool { return in.Letters == 0 },
		},
		{
			Name:        RuleCodeSyntax,
			Description: "programming syntax such as assignments or statement terminators",
			Outcome:     domain.OutcomeError,
			Match:       func(in Input) bool { return strings.ContainsAny(in.Raw, codePunctuation) },
		},
		{
			Name:        RuleEmbeddedSymbols,
			Description: "romanized words mixed with symbol noise",
			Outcome:     domain.OutcomeError,
			Match:       hasNoiseSymbol,
		},
		{
			Name:        RuleMixedDigits,
			Description: "words mixed with digits",
			Outcome:     domain.OutcomeError,
			Match:       func(in Input) bool { return in.Digits > 0 },
		},
		{
			Name:        RuleForeignWords,
			Description: "contains ordinary English words",
			Outcome:     domain.OutcomeError,
			Match: func(in Input) bool {
				for _, tok := range in.Folded {
					if _, ok := englishLexicon[stripPunctuation(tok)]; ok {
						return true
					}
				}
				return false
			},
		},
		{
			Name:        RuleNonPhonetic,
			Description: "a token without romanized consonant/vowel structure",
			Outcome:     domain.OutcomeError,
			Match: func(in Input) bool {
				for _, tok := range in.Tokens {
					if !isPhonetic(stripPunctuation(tok)) {
						return true
					}
				}
				return false
			},
		},
		{
			Name:        RuleMisspelled,
			Description: "a near miss of a known romanized word",
			Outcome:     domain.OutcomeError,
			Match: func(in Input) bool {
				for _, tok := range in.Folded {
					if vocab.nearMiss(stripPunctuation(tok)) {
						return true
					}
				}
				return false
			},
		},
		{
			Name:        RuleRomanized,
			Description: "space separated romanized phonetic tokens",
			Outcome:     domain.OutcomeSuccess,
			Match: func(in Input) bool {
				return len(in.Tokens) > 0
			},
		},
	}
}

func hasNoiseSymbol(in Input) bool {
	if in.Letters == 0 {
		return false
	}
	for _, r := range in.Raw {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			continue
		}
		if !strings.ContainsRune(benignPunctuation, r) {
			return true
		}
	}
	return false
}

func stripPunctuation(tok string) string {
	return strings.Trim(tok, benignPunctuation)
}

// isPhonetic reports whether tok is a Latin-letter token with at least one
// vowel and no consonant run longer than three letters.
func isPhonetic(tok string) bool {
	if tok == "" {
		return false
	}
	hasVowel := false
	run := 0
	for _, r := range tok {
		if r > unicode.MaxASCII || !unicode.IsLetter(r) {
			return false
		}
		if strings.ContainsRune(vowels, r) {
			hasVowel = true
			run = 0
			continue
		}
		run++
		if run > 3 {
			return false
		}
	}
	return hasVowel
}
