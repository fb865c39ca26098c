package domain

// CheckKind is a structural assertion about a UI control.
type CheckKind string

const (
	CheckTitle       CheckKind = "title"
	CheckPresent     CheckKind = "present"
	CheckVisible     CheckKind = "visible"
	CheckEditable    CheckKind = "editable"
	CheckClearResets CheckKind = "clear-resets"
)

// Check is one structural assertion of a structural case.
type Check struct {
	Kind    CheckKind `yaml:"check" json:"check"`
	Control string    `yaml:"control,omitempty" json:"control,omitempty"`
	Pattern string    `yaml:"pattern,omitempty" json:"pattern,omitempty"` // title regex
	Input   string    `yaml:"input,omitempty" json:"input,omitempty"`     // text typed before clear-resets
}

// TestCase is one entry of the case matrix.
type TestCase struct {
	ID          string    `yaml:"id" json:"id"`
	Partition   Partition `yaml:"partition" json:"partition"`
	Description string    `yaml:"description,omitempty" json:"description,omitempty"`
	Input       string    `yaml:"input,omitempty" json:"input,omitempty"`
	// RepeatInput, when above 1, repeats Input that many times at load.
	RepeatInput int `yaml:"repeat_input,omitempty" json:"repeat_input,omitempty"`
	// Expected is derived from the classifier when empty.
	Expected Outcome `yaml:"expect,omitempty" json:"expected,omitempty"`
	// Override documents why Expected differs from the classifier's outcome.
	Override string  `yaml:"override,omitempty" json:"override,omitempty"`
	Checks   []Check `yaml:"checks,omitempty" json:"checks,omitempty"`
}

// Category returns the verdict category the case reports under.
func (c TestCase) Category() Category {
	if c.Partition == PartitionStructural {
		return CategoryStructural
	}
	return CategoryTranslation
}

// Matrix is a named, ordered case set.
type Matrix struct {
	Name       string     `yaml:"name" json:"name"`
	Source     string     `yaml:"-" json:"source,omitempty"`
	Vocabulary []string   `yaml:"vocabulary,omitempty" json:"vocabulary,omitempty"`
	Cases      []TestCase `yaml:"cases" json:"cases"`
}

// ByPartition returns the cases of one partition, preserving matrix order.
func (m *Matrix) ByPartition(p Partition) []TestCase {
	var out []TestCase
	for _, c := range m.Cases {
		if c.Partition == p {
			out = append(out, c)
		}
	}
	return out
}
