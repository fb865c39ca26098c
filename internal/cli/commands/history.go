package commands

import (
	"github.com/spf13/cobra"

	"transcheck/internal/config"
	"transcheck/internal/storage"
	"transcheck/internal/ui"
)

// HistoryCommand handles the history command
type HistoryCommand struct {
	config    *config.Config
	formatter *ui.Formatter
}

// NewHistoryCommand creates a new HistoryCommand
func NewHistoryCommand(cfg *config.Config, formatter *ui.Formatter) *HistoryCommand {
	return &HistoryCommand{
		config:    cfg,
		formatter: formatter,
	}
}

// Execute runs the command
func (hc *HistoryCommand) Execute(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	history, err := storage.OpenHistory(hc.config.History.Driver, hc.config.GetHistoryDSN())
	if err != nil {
		return err
	}
	defer history.Close()

	if err := history.EnsureSchema(ctx); err != nil {
		return err
	}

	limit := hc.config.Flags.Limit
	if limit <= 0 {
		limit = 10
	}

	if id := hc.config.Flags.CaseID; id != "" {
		results, err := history.CaseHistory(ctx, id, limit)
		if err != nil {
			return err
		}
		hc.formatter.PrintCaseHistory(id, results)
		return nil
	}

	runs, err := history.Recent(ctx, limit)
	if err != nil {
		return err
	}
	hc.formatter.PrintHistory(runs)
	return nil
}
