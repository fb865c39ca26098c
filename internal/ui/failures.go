package ui

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"transcheck/internal/domain"
	"transcheck/internal/storage"
)

// FailureViewer browses failed and indeterminate verdicts. Pressing R toggles
// the reviewed mark, which is written back to the persisted report.
type FailureViewer struct {
	storage storage.Storage
}

// NewFailureViewer creates a new FailureViewer
func NewFailureViewer(st storage.Storage) *FailureViewer {
	return &FailureViewer{storage: st}
}

var _ Viewer = (*FailureViewer)(nil)

// failureIndex returns the positions of non-passing verdicts in report order.
func failureIndex(report *domain.RunReport) []int {
	var idx []int
	for i, v := range report.Verdicts {
		if !v.Passed {
			idx = append(idx, i)
		}
	}
	return idx
}

// View displays the failures of report
func (fv *FailureViewer) View(report *domain.RunReport) error {
	failures := failureIndex(report)
	if len(failures) == 0 {
		color.Green("✓ No failed cases found!")
		return nil
	}

	screen := newFailureScreen(report, failures, fv.storage.SaveOutput)
	if err := screen.app.SetRoot(screen.layout(), true).SetFocus(screen.list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}
	return nil
}

// failureScreen holds the widgets of one viewer session.
type failureScreen struct {
	report   *domain.RunReport
	failures []int
	save     func(*domain.RunReport) error

	app     *tview.Application
	list    *tview.List
	header  *tview.TextView
	status  *tview.TextView
	stats   *tview.TextView
	details *tview.TextView
}

func newFailureScreen(report *domain.RunReport, failures []int, save func(*domain.RunReport) error) *failureScreen {
	fs := &failureScreen{
		report:   report,
		failures: failures,
		save:     save,
		app:      tview.NewApplication(),
		list:     tview.NewList().ShowSecondaryText(false).SetHighlightFullLine(true),
		header:   tview.NewTextView().SetTextAlign(tview.AlignCenter).SetDynamicColors(true),
		status:   tview.NewTextView().SetDynamicColors(true),
		stats:    tview.NewTextView().SetDynamicColors(true).SetWrap(false),
		details:  tview.NewTextView().SetDynamicColors(true).SetWrap(true).SetWordWrap(true),
	}

	for n := range failures {
		fs.list.AddItem(fs.itemText(n), "", 0, nil)
	}
	fs.list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan)

	fs.list.SetChangedFunc(func(int, string, string, rune) { fs.refresh() })
	fs.list.SetInputCapture(fs.onListKey)
	fs.details.SetInputCapture(fs.onDetailsKey)
	fs.refresh()
	return fs
}

// layout puts the list on the left third and stats over details on the right.
func (fs *failureScreen) layout() tview.Primitive {
	right := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(fs.stats, 3, 0, false).
		AddItem(tview.NewFlex().
			AddItem(fs.details, 0, 1, false).
			AddItem(tview.NewBox(), 2, 0, false), 0, 1, false)

	body := tview.NewFlex().
		AddItem(fs.list, 0, 1, true).
		AddItem(right, 0, 2, false)

	return tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(fs.header, 1, 0, false).
		AddItem(fs.status, 1, 0, false).
		AddItem(body, 0, 1, true)
}

func (fs *failureScreen) verdict(n int) domain.Verdict {
	return fs.report.Verdicts[fs.failures[n]]
}

func (fs *failureScreen) itemText(n int) string {
	v := fs.verdict(n)
	if v.Reviewed {
		return fmt.Sprintf("[gray]✓ %d. %s [%s][white]", n+1, v.CaseID, v.Failure)
	}
	return fmt.Sprintf("[yellow]%d.[white] %s [red][%s][white]", n+1, v.CaseID, v.Failure)
}

// refresh redraws the header and the panes of the selected verdict.
func (fs *failureScreen) refresh() {
	fs.header.SetText(fmt.Sprintf(" Failed Cases (%d total, %d unreviewed) | ↑↓ navigate, [yellow]R[white] mark reviewed, → details, ← back, Ctrl+C exit ",
		len(fs.failures), countUnreviewed(fs.report, fs.failures)))

	n := fs.list.GetCurrentItem()
	if n < 0 || n >= len(fs.failures) {
		return
	}
	v := fs.verdict(n)
	fs.stats.SetText(formatFailureStats(v, fs.report.Meta.TargetURL))
	fs.details.SetText(formatFailureDetails(v))
}

// toggle flips the reviewed mark of the selected verdict and persists the report.
func (fs *failureScreen) toggle() {
	n := fs.list.GetCurrentItem()
	if n < 0 || n >= len(fs.failures) {
		return
	}
	toggleReviewed(fs.report, fs.failures[n])
	fs.list.SetItemText(n, fs.itemText(n), "")
	fs.refresh()

	if err := fs.save(fs.report); err != nil {
		fs.status.SetText(fmt.Sprintf("[red]save failed: %s[white]", tview.Escape(err.Error())))
		return
	}
	fs.status.SetText("")
}

func (fs *failureScreen) onListKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyEnter, tcell.KeyRight:
		fs.app.SetFocus(fs.details)
		return nil
	case tcell.KeyCtrlC:
		fs.app.Stop()
		return nil
	case tcell.KeyRune:
		if event.Rune() == 'r' || event.Rune() == 'R' {
			fs.toggle()
			return nil
		}
	}
	return event
}

func (fs *failureScreen) onDetailsKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyLeft, tcell.KeyEsc:
		fs.app.SetFocus(fs.list)
		return nil
	case tcell.KeyCtrlC:
		fs.app.Stop()
		return nil
	}
	return event
}

func toggleReviewed(report *domain.RunReport, i int) {
	report.Verdicts[i].Reviewed = !report.Verdicts[i].Reviewed
}

func countUnreviewed(report *domain.RunReport, failures []int) int {
	count := 0
	for _, i := range failures {
		if !report.Verdicts[i].Reviewed {
			count++
		}
	}
	return count
}

// formatFailureDetails formats a verdict using tview color tags
func formatFailureDetails(v domain.Verdict) string {
	var builder strings.Builder
	w := tabwriter.NewWriter(&builder, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "[red]✗ Case: %s[white]\n\n", v.CaseID)
	fmt.Fprintf(w, "[cyan]Category:[white]\t%s\n", v.Category)
	fmt.Fprintf(w, "[cyan]Failure:[white]\t%s\n", v.Failure)
	if v.Category == domain.CategoryTranslation {
		fmt.Fprintf(w, "[cyan]Expected:[white]\t%s\n", v.Expected)
		fmt.Fprintf(w, "[cyan]Actual:[white]\t%s\n", v.Actual)
		rule := v.Rule
		if v.Ambiguous {
			rule += " (ambiguous)"
		}
		if rule != "" {
			fmt.Fprintf(w, "[cyan]Rule:[white]\t%s\n", rule)
		}
	}
	fmt.Fprintf(w, "[cyan]Duration:[white]\t%dms\n", v.DurationMS)
	fmt.Fprintf(w, "\n")

	if v.Input != "" {
		fmt.Fprintf(w, "[yellow]Input:[white]\n%s\n\n", tview.Escape(v.Input))
	}
	if v.Observed != "" {
		fmt.Fprintf(w, "[yellow]Observed:[white]\n%s\n\n", tview.Escape(v.Observed))
	}

	if len(v.Diagnostics) > 0 {
		fmt.Fprintf(w, "[yellow]Diagnostics:[white]\n")
		for i, d := range v.Diagnostics {
			if i < 10 {
				fmt.Fprintf(w, "  %s\n", tview.Escape(d))
			}
		}
		if len(v.Diagnostics) > 10 {
			fmt.Fprintf(w, "  [gray]... and %d more lines[white]\n", len(v.Diagnostics)-10)
		}
	}

	w.Flush()
	return builder.String()
}

// formatFailureStats formats the stats header for a verdict
func formatFailureStats(v domain.Verdict, target string) string {
	if target == "" {
		target = "unknown target"
	}
	status := "[red]unreviewed[white]"
	if v.Reviewed {
		status = "[green]reviewed[white]"
	}
	return fmt.Sprintf("[cyan]target:[white] [yellow]%s[white]::[yellow]%s[white] (%s, %s)\n",
		target, v.CaseID, v.Partition, status)
}
