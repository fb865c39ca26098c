package ui

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"unicode/utf8"

	"github.com/fatih/color"

	"transcheck/internal/classify"
	"transcheck/internal/domain"
	"transcheck/internal/storage"
)

// Formatter renders reports, case lists and rule tables for the terminal
type Formatter struct {
	out io.Writer
}

// NewFormatter creates a new Formatter writing to out
func NewFormatter(out io.Writer) *Formatter {
	return &Formatter{out: out}
}

type paint func(format string, a ...interface{}) string

const (
	boxTop    = "┌─────────────────────────────────┬─────────────────────────────┐"
	boxMiddle = "├─────────────────────────────────┼─────────────────────────────┤"
	boxBottom = "└─────────────────────────────────┴─────────────────────────────┘"
)

func (f *Formatter) header(title string) {
	fmt.Fprintln(f.out)
	fmt.Fprintln(f.out, color.CyanString("╔═══════════════════════════════════════════════════════════════╗"))
	fmt.Fprintln(f.out, color.CyanString("║ %-61s ║", center(title, 61)))
	fmt.Fprintln(f.out, color.CyanString("╚═══════════════════════════════════════════════════════════════╝"))
	fmt.Fprintln(f.out)
}

func (f *Formatter) row(label, value string, p paint) {
	fmt.Fprintf(f.out, "│ %-31s │ %s\n", label, p("%-27s │", truncate(value, 27)))
}

// PrintReport prints the aggregate table, the summary line and the failure tree.
func (f *Formatter) PrintReport(report *domain.RunReport) {
	meta := report.Meta
	f.header("Verification Run Statistics")

	type entry struct {
		label string
		value string
		p     paint
	}
	entries := []entry{
		{"Matrix", meta.Matrix, color.WhiteString},
		{"Target", meta.TargetURL, color.WhiteString},
		{"Total Cases", fmt.Sprint(meta.Total), color.WhiteString},
		{"Passed", fmt.Sprint(meta.Passed), color.GreenString},
		{"Failed", fmt.Sprint(meta.Failed), color.RedString},
		{"Indeterminate", fmt.Sprint(meta.Indeterminate), color.YellowString},
		{"Translation Checks Failed", fmt.Sprint(meta.TranslationFailed), color.RedString},
		{"Structural Checks Failed", fmt.Sprint(meta.StructuralFailed), color.RedString},
		{"Skipped", fmt.Sprint(meta.Skipped), color.WhiteString},
		{"Ambiguous Expectations", fmt.Sprint(meta.Ambiguous), color.YellowString},
		{"Duration", fmt.Sprintf("%.2fs", meta.DurationSeconds), color.WhiteString},
		{"Workers", fmt.Sprint(meta.Workers), color.WhiteString},
		{"Timestamp", meta.Timestamp, color.WhiteString},
	}

	fmt.Fprintln(f.out, boxTop)
	for i, e := range entries {
		if i > 0 {
			fmt.Fprintln(f.out, boxMiddle)
		}
		f.row(e.label, e.value, e.p)
	}
	fmt.Fprintln(f.out, boxBottom)
	fmt.Fprintln(f.out)

	if meta.Aborted != "" {
		fmt.Fprintln(f.out, color.RedString("✗ Run aborted: %s", meta.Aborted))
	}
	notPassed := meta.Failed + meta.Indeterminate
	if notPassed == 0 && meta.Aborted == "" {
		fmt.Fprintln(f.out, color.GreenString("✓ All %d case(s) passed!", meta.Passed))
	} else if notPassed > 0 {
		fmt.Fprintln(f.out, color.RedString("✗ %d case(s) did not pass: %d translation, %d structural, %d indeterminate",
			notPassed, meta.TranslationFailed, meta.StructuralFailed, meta.Indeterminate))
	}
	if meta.Skipped > 0 {
		fmt.Fprintln(f.out, color.YellowString("  %d case(s) skipped", meta.Skipped))
	}

	if failures := report.Failures(); len(failures) > 0 {
		fmt.Fprintln(f.out)
		f.printFailureTree(failures)
	}
}

// TreeNode is a node of a printed tree
type TreeNode struct {
	Name     string
	Paint    paint
	Children []*TreeNode
}

func (n *TreeNode) child(name string, p paint) *TreeNode {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	c := &TreeNode{Name: name, Paint: p}
	n.Children = append(n.Children, c)
	return c
}

// printFailureTree groups failed verdicts by category, then partition.
func (f *Formatter) printFailureTree(failures []domain.Verdict) {
	root := &TreeNode{}
	// fix group order independently of which failures exist
	for _, cat := range []domain.Category{domain.CategoryStructural, domain.CategoryTranslation} {
		for _, part := range domain.Partitions {
			for _, v := range failures {
				if v.Category != cat || v.Partition != part {
					continue
				}
				node := root.child(string(cat), color.CyanString).
					child(string(part), color.CyanString).
					child(verdictLabel(v), color.RedString)
				for _, d := range v.Diagnostics {
					node.Children = append(node.Children, &TreeNode{Name: truncate(d, 100), Paint: color.YellowString})
				}
			}
		}
	}

	fmt.Fprintln(f.out, color.WhiteString("Failures"))
	f.printTreeNode(root, "")
}

func verdictLabel(v domain.Verdict) string {
	label := fmt.Sprintf("%s [%s]", v.CaseID, v.Failure)
	if v.Category == domain.CategoryStructural {
		return label + " " + v.Observed
	}
	return fmt.Sprintf("%s input=%q expected=%s actual=%s observed=%q",
		label, truncate(v.Input, 40), v.Expected, v.Actual, truncate(v.Observed, 40))
}

func (f *Formatter) printTreeNode(node *TreeNode, prefix string) {
	for i, child := range node.Children {
		last := i == len(node.Children)-1
		connector, next := "├── ", "│   "
		if last {
			connector, next = "└── ", "    "
		}
		p := child.Paint
		if p == nil {
			p = color.WhiteString
		}
		fmt.Fprintf(f.out, "%s%s%s\n", prefix, connector, p("%s", child.Name))
		f.printTreeNode(child, prefix+next)
	}
}

// PrintCaseList prints the cases grouped by partition with their expected
// outcome and deciding rule. Cases in failed (from the last run) are marked [F].
func (f *Formatter) PrintCaseList(name string, cases []domain.TestCase, cls *classify.Classifier, failed map[string]struct{}, showChecks bool) {
	fmt.Fprintln(f.out, color.GreenString("Found %d case(s) in %s:", len(cases), name))
	fmt.Fprintln(f.out)

	root := &TreeNode{}
	for _, part := range domain.Partitions {
		var group []domain.TestCase
		for _, c := range cases {
			if c.Partition == part {
				group = append(group, c)
			}
		}
		if len(group) == 0 {
			continue
		}
		partNode := root.child(fmt.Sprintf("%s (%d)", part, len(group)), color.CyanString)
		for _, c := range group {
			label := caseLabel(c, cls)
			if _, ok := failed[c.ID]; ok {
				label += " [F]"
			}
			caseNode := partNode.child(label, color.YellowString)
			if showChecks {
				for _, chk := range c.Checks {
					caseNode.Children = append(caseNode.Children, &TreeNode{Name: checkLabel(chk)})
				}
			}
		}
	}
	f.printTreeNode(root, "")
}

func caseLabel(c domain.TestCase, cls *classify.Classifier) string {
	if c.Partition == domain.PartitionStructural {
		return fmt.Sprintf("%s %d check(s)", c.ID, len(c.Checks))
	}
	got := cls.Classify(c.Input)
	rule := got.Rule
	if got.Ambiguous {
		rule += ", ambiguous"
	}
	if c.Override != "" {
		rule += ", override: " + c.Override
	}
	return fmt.Sprintf("%s %s (%s) %q", c.ID, c.Expected, rule, truncate(c.Input, 40))
}

func checkLabel(chk domain.Check) string {
	parts := []string{string(chk.Kind)}
	if chk.Control != "" {
		parts = append(parts, chk.Control)
	}
	if chk.Pattern != "" {
		parts = append(parts, chk.Pattern)
	}
	if chk.Input != "" {
		parts = append(parts, fmt.Sprintf("%q", chk.Input))
	}
	return strings.Join(parts, " ")
}

// PrintRules prints the classifier rule table in evaluation order.
func (f *Formatter) PrintRules(rules []classify.Rule) {
	w := tabwriter.NewWriter(f.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tRULE\tOUTCOME\tDESCRIPTION")
	for i, r := range rules {
		outcome := string(r.Outcome)
		if r.Ambiguous {
			outcome += "*"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", i+1, r.Name, outcome, r.Description)
	}
	fmt.Fprintf(w, "-\t%s\t%s\t%s\n", classify.FallbackRule, domain.OutcomeError, "no rule matched")
	w.Flush()
	fmt.Fprintln(f.out, "* ambiguous: the expectation is a configurable policy, flagged in reports")
}

// PrintHistory prints past run summaries, newest first.
func (f *Formatter) PrintHistory(runs []storage.RunSummary) {
	if len(runs) == 0 {
		fmt.Fprintln(f.out, color.YellowString("No runs recorded yet."))
		return
	}
	w := tabwriter.NewWriter(f.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "RUN\tSTARTED\tMATRIX\tTOTAL\tPASSED\tFAILED\tINDETERMINATE\tSKIPPED\tDURATION")
	for _, r := range runs {
		id := r.RunID
		if len(id) > 8 {
			id = id[:8]
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%d\t%s\n",
			id, r.StartedAt, r.Matrix, r.Total, r.Passed, r.Failed, r.Indeterminate, r.Skipped, r.Duration)
	}
	w.Flush()
}

// PrintCaseHistory prints the past results of one case.
func (f *Formatter) PrintCaseHistory(caseID string, results []storage.CaseResult) {
	fmt.Fprintln(f.out, color.GreenString("History of %s:", caseID))
	w := tabwriter.NewWriter(f.out, 0, 0, 2, ' ', 0)
	for _, r := range results {
		mark := "✓"
		if !r.Passed {
			mark = "✗"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%q\n", mark, r.StartedAt, r.Actual, r.Failure, truncate(r.Observed, 40))
	}
	w.Flush()
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-3]) + "..."
}

func center(s string, width int) string {
	pad := width - utf8.RuneCountInString(s)
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad/2) + s
}
