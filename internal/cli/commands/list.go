package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"transcheck/internal/config"
	"transcheck/internal/discovery"
	"transcheck/internal/storage"
	"transcheck/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	config    *config.Config
	filter    *discovery.Filter
	formatter *ui.Formatter
	storage   storage.Storage
}

// NewListCommand creates a new ListCommand
func NewListCommand(
	cfg *config.Config,
	filter *discovery.Filter,
	formatter *ui.Formatter,
	st storage.Storage,
) *ListCommand {
	return &ListCommand{
		config:    cfg,
		filter:    filter,
		formatter: formatter,
		storage:   st,
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	m, cls, err := loadMatrix(lc.config, args)
	if err != nil {
		return err
	}

	if lc.config.Flags.ShowRules {
		lc.formatter.PrintRules(cls.Rules())
		return nil
	}

	partitions, err := parsePartitions(lc.config.Flags.Partitions)
	if err != nil {
		return err
	}
	cases := lc.filter.FilterCases(m.Cases, lc.config.Flags.NameFilter, partitions)

	if len(cases) == 0 {
		color.Yellow("No cases found")
		return nil
	}

	// mark cases that failed in the last run, if there was one
	failed := map[string]struct{}{}
	if last, err := lc.storage.Load(); err == nil {
		failed = last.FailedCaseIDs()
	}

	lc.formatter.PrintCaseList(m.Name, cases, cls, failed, lc.config.Flags.ShowChecks)
	return nil
}
