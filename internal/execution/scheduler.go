package execution

import (
	"fmt"
	"strconv"
	"strings"

	"transcheck/internal/domain"
)

// Scheduler distributes cases into buckets
type Scheduler interface {
	Schedule(cases []domain.TestCase, buckets int) [][]domain.TestCase
}

// RoundRobinScheduler distributes cases evenly across buckets
type RoundRobinScheduler struct{}

// NewRoundRobinScheduler creates a new RoundRobinScheduler
func NewRoundRobinScheduler() *RoundRobinScheduler {
	return &RoundRobinScheduler{}
}

// Schedule distributes cases evenly across buckets using round-robin
func (s *RoundRobinScheduler) Schedule(cases []domain.TestCase, buckets int) [][]domain.TestCase {
	if buckets <= 0 {
		buckets = 1
	}

	distribution := make([][]domain.TestCase, buckets)
	for i := range distribution {
		distribution[i] = make([]domain.TestCase, 0)
	}

	for i, c := range cases {
		distribution[i%buckets] = append(distribution[i%buckets], c)
	}

	return distribution
}

// ParseShard parses an "i/n" shard; i is one based.
func ParseShard(shard string) (index, total int, err error) {
	left, right, ok := strings.Cut(shard, "/")
	if !ok {
		return 0, 0, fmt.Errorf("invalid shard %q: want i/n", shard)
	}
	index, err = strconv.Atoi(strings.TrimSpace(left))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid shard index %q: %w", left, err)
	}
	total, err = strconv.Atoi(strings.TrimSpace(right))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid shard count %q: %w", right, err)
	}
	if total < 1 || index < 1 || index > total {
		return 0, 0, fmt.Errorf("invalid shard %q: want 1 <= i <= n", shard)
	}
	return index, total, nil
}

// SelectShard returns the cases of the given shard. An empty shard selects all cases.
func SelectShard(s Scheduler, cases []domain.TestCase, shard string) ([]domain.TestCase, error) {
	if shard == "" {
		return cases, nil
	}
	index, total, err := ParseShard(shard)
	if err != nil {
		return nil, err
	}
	return s.Schedule(cases, total)[index-1], nil
}
