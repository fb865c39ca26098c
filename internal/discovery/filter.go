package discovery

import (
	"path/filepath"
	"strings"

	"transcheck/internal/domain"
)

// Filter narrows the case matrix by case ID, partition and previous failures
type Filter struct{}

// NewFilter creates a new Filter
func NewFilter() *Filter {
	return &Filter{}
}

// FilterByName filters case IDs by pattern using wildcard matching.
// Supports patterns like "PASS-*" or "*-0?"; a pattern without wildcards
// matches as a substring. Matching is case-insensitive.
func (f *Filter) FilterByName(ids []string, pattern string) []string {
	if pattern == "" {
		return ids
	}

	var filtered []string
	for _, id := range ids {
		if f.matches(id, pattern) {
			filtered = append(filtered, id)
		}
	}
	return filtered
}

func (f *Filter) matches(id, pattern string) bool {
	id, pattern = strings.ToUpper(id), strings.ToUpper(pattern)

	if matched, err := filepath.Match(pattern, id); err == nil && matched {
		return true
	}

	// "*PASS*" style patterns: every non-empty part must occur, in order
	if strings.Contains(pattern, "*") {
		rest := id
		nonEmpty := false
		for _, part := range strings.Split(pattern, "*") {
			if part == "" {
				continue
			}
			nonEmpty = true
			i := strings.Index(rest, part)
			if i < 0 {
				return false
			}
			rest = rest[i+len(part):]
		}
		return nonEmpty
	}

	if !strings.Contains(pattern, "?") {
		return strings.Contains(id, pattern)
	}
	return false
}

// FilterCases keeps the cases whose ID matches pattern and whose partition is
// one of partitions (all partitions when empty). Matrix order is preserved.
func (f *Filter) FilterCases(cases []domain.TestCase, pattern string, partitions []domain.Partition) []domain.TestCase {
	want := make(map[domain.Partition]bool, len(partitions))
	for _, p := range partitions {
		want[p] = true
	}

	var filtered []domain.TestCase
	for _, c := range cases {
		if len(want) > 0 && !want[c.Partition] {
			continue
		}
		if pattern != "" && !f.matches(c.ID, pattern) {
			continue
		}
		filtered = append(filtered, c)
	}
	return filtered
}

// FilterByIDs keeps the cases whose ID is in ids.
func (f *Filter) FilterByIDs(cases []domain.TestCase, ids map[string]struct{}) []domain.TestCase {
	var filtered []domain.TestCase
	for _, c := range cases {
		if _, ok := ids[c.ID]; ok {
			filtered = append(filtered, c)
		}
	}
	return filtered
}
