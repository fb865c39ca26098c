// Package matrix assembles the case matrix: the built-in curated cases or
// matrix files, validated and with every expected outcome resolved against
// the classifier.
package matrix

import (
	_ "embed"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"transcheck/internal/classify"
	"transcheck/internal/discovery"
	"transcheck/internal/domain"
)

// ErrInvalidMatrix wraps every validation failure.
var ErrInvalidMatrix = errors.New("invalid case matrix")

//go:embed builtin.cases.yaml
var builtinYAML []byte

// BuiltinName is the name of the curated matrix.
const BuiltinName = "builtin"

// Builtin returns a fresh copy of the curated matrix.
func Builtin() (*domain.Matrix, error) {
	m, err := discovery.NewParser().Parse(builtinYAML)
	if err != nil {
		return nil, fmt.Errorf("parse builtin matrix: %w", err)
	}
	m.Name = BuiltinName
	m.Source = BuiltinName
	return m, nil
}

// Load returns the built-in matrix when sources is empty, otherwise the
// merged matrix of every file found under sources.
func Load(sources []string, skipDirs []string) (*domain.Matrix, error) {
	if len(sources) == 0 {
		return Builtin()
	}
	files, err := discovery.NewScanner(skipDirs).Resolve(sources)
	if err != nil {
		return nil, err
	}
	matrices, err := discovery.NewParser().ParseFiles(files)
	if err != nil {
		return nil, err
	}
	return Merge(matrices...), nil
}

// Merge concatenates matrices in order. Vocabularies are unioned.
func Merge(matrices ...*domain.Matrix) *domain.Matrix {
	if len(matrices) == 1 {
		return matrices[0]
	}
	out := &domain.Matrix{}
	var names, sources []string
	seen := make(map[string]bool)
	for _, m := range matrices {
		names = append(names, m.Name)
		if m.Source != "" {
			sources = append(sources, m.Source)
		}
		for _, w := range m.Vocabulary {
			if !seen[w] {
				seen[w] = true
				out.Vocabulary = append(out.Vocabulary, w)
			}
		}
		out.Cases = append(out.Cases, m.Cases...)
	}
	out.Name = strings.Join(names, "+")
	out.Source = strings.Join(sources, ",")
	return out
}

// Vocabulary returns the romanized words known to m: explicit vocabulary
// entries plus every token of the positive partition.
func Vocabulary(m *domain.Matrix) []string {
	words := append([]string(nil), m.Vocabulary...)
	for _, c := range m.ByPartition(domain.PartitionPositive) {
		words = append(words, strings.Fields(c.Input)...)
	}
	return words
}

// NewClassifier builds the default rule table extended with m's vocabulary.
func NewClassifier(m *domain.Matrix, opts classify.Options) *classify.Classifier {
	opts.Vocabulary = append(append([]string(nil), opts.Vocabulary...), Vocabulary(m)...)
	return classify.NewDefault(opts)
}

// Resolve validates m and fills in every translation case's expected outcome
// from c. A hand-written expectation that disagrees with the classifier must
// carry an override reason.
func Resolve(m *domain.Matrix, c *classify.Classifier) error {
	var problems []string
	ids := make(map[string]bool, len(m.Cases))

	for i := range m.Cases {
		tc := &m.Cases[i]
		if tc.ID == "" {
			problems = append(problems, fmt.Sprintf("case #%d: missing id", i+1))
			continue
		}
		if ids[tc.ID] {
			problems = append(problems, fmt.Sprintf("case %s: duplicate id", tc.ID))
		}
		ids[tc.ID] = true

		if !tc.Partition.Valid() {
			problems = append(problems, fmt.Sprintf("case %s: unknown partition %q", tc.ID, tc.Partition))
			continue
		}
		if tc.Partition == domain.PartitionStructural {
			problems = append(problems, validateChecks(*tc)...)
			continue
		}
		if len(tc.Checks) > 0 {
			problems = append(problems, fmt.Sprintf("case %s: checks are only allowed in the structural partition", tc.ID))
		}

		cls := c.Classify(tc.Input)
		switch {
		case tc.Expected == "":
			tc.Expected = cls.Outcome
		case tc.Expected != cls.Outcome && strings.TrimSpace(tc.Override) == "":
			problems = append(problems, fmt.Sprintf("case %s: expects %s but rule %q classifies %s; add an override reason",
				tc.ID, tc.Expected, cls.Rule, cls.Outcome))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidMatrix, strings.Join(problems, "; "))
	}
	return nil
}

func validateChecks(tc domain.TestCase) []string {
	if len(tc.Checks) == 0 {
		return []string{fmt.Sprintf("case %s: structural case without checks", tc.ID)}
	}
	var problems []string
	for i, chk := range tc.Checks {
		where := fmt.Sprintf("case %s check #%d", tc.ID, i+1)
		switch chk.Kind {
		case domain.CheckTitle:
			if _, err := regexp.Compile(chk.Pattern); err != nil || chk.Pattern == "" {
				problems = append(problems, where+": title check needs a valid pattern")
			}
		case domain.CheckPresent, domain.CheckVisible, domain.CheckEditable, domain.CheckClearResets:
			if chk.Control == "" {
				problems = append(problems, fmt.Sprintf("%s: %s check needs a control", where, chk.Kind))
			}
		default:
			problems = append(problems, fmt.Sprintf("%s: unknown check %q", where, chk.Kind))
		}
	}
	return problems
}

// IDs returns the case IDs in matrix order.
func IDs(cases []domain.TestCase) []string {
	ids := make([]string, len(cases))
	for i, c := range cases {
		ids[i] = c.ID
	}
	return ids
}
