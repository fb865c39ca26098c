package domain

// Outcome is the observed or expected behaviour of the transliteration service for one input.
type Outcome string

const (
	// OutcomeSuccess means the service renders non-empty transliterated text.
	OutcomeSuccess Outcome = "success"
	// OutcomeError means the service renders nothing or shows an error indicator.
	OutcomeError Outcome = "error"
	// OutcomeIndeterminate means the output surface never settled or the case was cancelled.
	OutcomeIndeterminate Outcome = "indeterminate"
)

// ParseOutcome maps a user supplied string onto an expected outcome.
// Only success and error are valid expectations.
func ParseOutcome(s string) (Outcome, bool) {
	switch Outcome(s) {
	case OutcomeSuccess, OutcomeError:
		return Outcome(s), true
	}
	return "", false
}

// Partition groups cases in the matrix.
type Partition string

const (
	PartitionStructural Partition = "structural"
	PartitionPositive   Partition = "positive"
	PartitionNegative   Partition = "negative"
)

// Partitions lists the partitions in report order.
var Partitions = []Partition{PartitionStructural, PartitionPositive, PartitionNegative}

// Valid reports whether p is a known partition.
func (p Partition) Valid() bool {
	for _, known := range Partitions {
		if p == known {
			return true
		}
	}
	return false
}

// Category separates UI affordance checks from transliteration outcome checks in reports.
type Category string

const (
	CategoryStructural  Category = "structural_check"
	CategoryTranslation Category = "translation_check"
)

// FailureKind names why a verdict failed.
type FailureKind string

const (
	FailureNone                FailureKind = ""
	FailureExtractionTimeout   FailureKind = "extraction_timeout"
	FailureOutcomeMismatch     FailureKind = "outcome_mismatch"
	FailureStructuralAssertion FailureKind = "structural_assertion_failure"
	FailureNonIdempotent       FailureKind = "non_idempotent"
	FailureCancelled           FailureKind = "cancelled"
)
