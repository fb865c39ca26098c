package classify

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"transcheck/internal/domain"
)

func TestClassifier_Scenarios(t *testing.T) {
	c := NewDefault(DefaultOptions())

	tests := []struct {
		name  string
		input string
		want  domain.Outcome
		rule  string
	}{
		{"greeting", "oyaa kohomadha", domain.OutcomeSuccess, RuleRomanized},
		{"symbols", "@#$%^&*", domain.OutcomeError, RuleSymbolsOnly},
		{"numbers", "123456789", domain.OutcomeError, RuleDigitsOnly},
		{"empty", "", domain.OutcomeSuccess, RuleBlank},
		{"whitespace", "   ", domain.OutcomeSuccess, RuleBlank},
		{"sentence", "mama kolamba jiivath wenavaa", domain.OutcomeSuccess, RuleRomanized},
		{"oversized", strings.Repeat("mama yanavaa ", 80), domain.OutcomeError, RuleOversized},
		{"english", "Hello world", domain.OutcomeError, RuleForeignWords},
		{"mixed english", "mama going xyz", domain.OutcomeError, RuleForeignWords},
		{"english preference", "I like pizza", domain.OutcomeError, RuleForeignWords},
		{"english request", "Call me later", domain.OutcomeError, RuleForeignWords},
		{"english remark", "Nice weather", domain.OutcomeError, RuleForeignWords},
		{"english command", "Open window now", domain.OutcomeError, RuleForeignWords},
		{"embedded symbols", "mama@yanavaa$", domain.OutcomeError, RuleEmbeddedSymbols},
		{"misspelled", "mamma yannavaa", domain.OutcomeError, RuleMisspelled},
		{"code", "var x = 10;", domain.OutcomeError, RuleCodeSyntax},
		{"mixed digits", "mama 2 yanavaa", domain.OutcomeError, RuleMixedDigits},
		{"no vowel token", "mama xyz", domain.OutcomeError, RuleNonPhonetic},
		{"retroflex capitals", "mithuran ekka sellam kaLaa", domain.OutcomeSuccess, RuleRomanized},
		{"trailing question mark", "oyaage nama mokakdha?", domain.OutcomeSuccess, RuleRomanized},
		{"sinhala script", "මම යනව", domain.OutcomeError, RuleNonPhonetic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.input)
			assert.Equal(t, tt.want, got.Outcome)
			assert.Equal(t, tt.rule, got.Rule)
		})
	}
}

func TestClassifier_Deterministic(t *testing.T) {
	c := NewDefault(DefaultOptions())
	for _, in := range []string{"oyaa kohomadha", "var x = 10;", ""} {
		first := c.Classify(in)
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, c.Classify(in))
		}
	}
}

func TestClassifier_EmptyInputIsConfigurable(t *testing.T) {
	opts := DefaultOptions()
	opts.EmptyInput = domain.OutcomeError
	c := NewDefault(opts)

	got := c.Classify("  ")
	assert.Equal(t, domain.OutcomeError, got.Outcome)
	assert.True(t, got.Ambiguous)
}

func TestClassifier_LengthThreshold(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxLength = 20
	c := NewDefault(opts)

	assert.Equal(t, domain.OutcomeSuccess, c.Classify("mama yanavaa").Outcome)
	assert.Equal(t, RuleOversized, c.Classify("mama yanavaa mama yanavaa").Rule)

	// exactly at the default threshold is still accepted
	exact := strings.Repeat("a", DefaultMaxLength)
	assert.NotEqual(t, RuleOversized, NewDefault(DefaultOptions()).Classify(exact).Rule)
}

func TestClassifier_VocabularyExtendsNearMissRule(t *testing.T) {
	base := NewDefault(DefaultOptions())
	assert.Equal(t, RuleMisspelled, base.Classify("mamma").Rule)

	opts := DefaultOptions()
	opts.Vocabulary = []string{"mamma"}
	extended := NewDefault(opts)
	assert.Equal(t, domain.OutcomeSuccess, extended.Classify("mamma").Outcome)
}

func TestClassifier_RuleOrder(t *testing.T) {
	var names []string
	for _, r := range NewDefault(DefaultOptions()).Rules() {
		names = append(names, r.Name)
	}
	want := []string{
		RuleBlank, RuleOversized, RuleDigitsOnly, RuleSymbolsOnly, RuleCodeSyntax,
		RuleEmbeddedSymbols, RuleMixedDigits, RuleForeignWords, RuleNonPhonetic,
		RuleMisspelled, RuleRomanized,
	}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("rule order mismatch (-want +got):\n%s", diff)
	}
}

func TestClassifier_Insert(t *testing.T) {
	c := NewDefault(DefaultOptions())
	greeting := Rule{
		Name:    "greeting",
		Outcome: domain.OutcomeError,
		Match:   func(in Input) bool { return in.Trimmed == "oyaa kohomadha" },
	}
	custom := c.Insert(greeting, RuleRomanized)

	assert.Equal(t, "greeting", custom.Classify("oyaa kohomadha").Rule)
	assert.Equal(t, RuleRomanized, c.Classify("oyaa kohomadha").Rule, "original table must be unchanged")
}

func TestClassifier_Fallback(t *testing.T) {
	c := New()
	got := c.Classify("mama")
	assert.Equal(t, domain.OutcomeError, got.Outcome)
	assert.Equal(t, FallbackRule, got.Rule)
}

func TestEditDistanceOne(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"mama", "mamma", true},
		{"yanavaa", "yannavaa", true},
		{"kopi", "kapi", true},
		{"mama", "mama", false},
		{"mama", "amma", false},
		{"heta", "hetaaa", false},
	}
	for _, tt := range tests {
		if got := editDistanceOne(tt.a, tt.b); got != tt.want {
			t.Errorf("editDistanceOne(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
