package discovery

import (
	"testing"

	"transcheck/internal/domain"
)

func TestFilter_FilterByName(t *testing.T) {
	filter := NewFilter()
	ids := []string{"UI-01", "PASS-01", "PASS-02", "PASS-12", "FAIL-01", "FAIL-10"}

	tests := []struct {
		name     string
		ids      []string
		pattern  string
		expected int
	}{
		{name: "empty pattern returns all", ids: ids, pattern: "", expected: 6},
		{name: "wildcard prefix", ids: ids, pattern: "PASS-*", expected: 3},
		{name: "wildcard substring", ids: ids, pattern: "*-1*", expected: 2},
		{name: "single character wildcard", ids: ids, pattern: "FAIL-0?", expected: 1},
		{name: "simple contains match", ids: ids, pattern: "UI", expected: 1},
		{name: "case insensitive", ids: ids, pattern: "fail-*", expected: 2},
		{name: "no matches", ids: ids, pattern: "*NOPE*", expected: 0},
		{name: "multiple wildcards keep order", ids: ids, pattern: "*A*S*", expected: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := filter.FilterByName(tt.ids, tt.pattern)
			if len(result) != tt.expected {
				t.Errorf("expected %d matches, got %d: %v", tt.expected, len(result), result)
			}
		})
	}
}

func TestFilter_FilterByName_EdgeCases(t *testing.T) {
	filter := NewFilter()

	t.Run("empty id list", func(t *testing.T) {
		result := filter.FilterByName([]string{}, "PASS-*")
		if len(result) != 0 {
			t.Errorf("expected empty result, got %d items", len(result))
		}
	})

	t.Run("only wildcards", func(t *testing.T) {
		result := filter.FilterByName([]string{"PASS-01", "FAIL-01"}, "**")
		if len(result) != 2 {
			t.Errorf("expected 2 matches, got %d", len(result))
		}
	})
}

func TestFilter_FilterCases(t *testing.T) {
	filter := NewFilter()
	cases := []domain.TestCase{
		{ID: "UI-01", Partition: domain.PartitionStructural},
		{ID: "PASS-01", Partition: domain.PartitionPositive},
		{ID: "PASS-02", Partition: domain.PartitionPositive},
		{ID: "FAIL-01", Partition: domain.PartitionNegative},
	}

	t.Run("partition only", func(t *testing.T) {
		got := filter.FilterCases(cases, "", []domain.Partition{domain.PartitionNegative, domain.PartitionStructural})
		if len(got) != 2 || got[0].ID != "UI-01" || got[1].ID != "FAIL-01" {
			t.Errorf("unexpected result: %+v", got)
		}
	})

	t.Run("pattern and partition", func(t *testing.T) {
		got := filter.FilterCases(cases, "*-02", []domain.Partition{domain.PartitionPositive})
		if len(got) != 1 || got[0].ID != "PASS-02" {
			t.Errorf("unexpected result: %+v", got)
		}
	})

	t.Run("by ids", func(t *testing.T) {
		got := filter.FilterByIDs(cases, map[string]struct{}{"PASS-01": {}, "GONE": {}})
		if len(got) != 1 || got[0].ID != "PASS-01" {
			t.Errorf("unexpected result: %+v", got)
		}
	})
}
