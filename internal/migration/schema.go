package migration

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"transcheck/internal/config"
	"transcheck/internal/storage"
)

// SchemaMigrator creates the history database if needed and applies the
// history schema.
type SchemaMigrator struct {
	config          *config.Config
	databaseManager *DatabaseManager
	out             io.Writer
}

// NewSchemaMigrator creates a new SchemaMigrator writing its progress to out
func NewSchemaMigrator(cfg *config.Config, dbManager *DatabaseManager, out io.Writer) *SchemaMigrator {
	return &SchemaMigrator{
		config:          cfg,
		databaseManager: dbManager,
		out:             out,
	}
}

// Run applies every schema statement with a progress bar
func (sm *SchemaMigrator) Run(ctx context.Context) error {
	fmt.Fprintln(sm.out, color.CyanString("\n╔════════════════════════════════════════════════════════════╗"))
	fmt.Fprintln(sm.out, color.CyanString("║               Preparing Run History Store                  ║"))
	fmt.Fprintln(sm.out, color.CyanString("╚════════════════════════════════════════════════════════════╝"))

	created, err := sm.databaseManager.EnsureDatabase(ctx)
	if err != nil {
		return fmt.Errorf("failed to check database: %w", err)
	}
	if created {
		fmt.Fprintln(sm.out, color.GreenString("✓ Created database %s", sm.config.HistoryDatabaseName()))
	}

	history, err := storage.OpenHistory(sm.config.History.Driver, sm.config.GetHistoryDSN())
	if err != nil {
		return err
	}
	defer history.Close()

	statements := storage.Schema()
	fmt.Fprintln(sm.out, color.WhiteString("Driver: %s | Statements: %d\n", history.Driver(), len(statements)))

	bar := progressbar.NewOptions(len(statements),
		progressbar.OptionSetDescription(color.CyanString("Migrating: ")+
			color.GreenString("[completed: 0/%d]", len(statements))),
		progressbar.OptionSetWidth(50),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        color.CyanString("█"),
			SaucerHead:    color.CyanString("█"),
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(sm.out),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprint(sm.out, "\n")
		}),
		progressbar.OptionSetRenderBlankState(true),
	)

	startTime := time.Now()
	for i, stmt := range statements {
		if err := storage.ApplyStatement(ctx, history.DB(), history.Driver(), stmt); err != nil {
			fmt.Fprintln(sm.out, color.RedString("\n✗ Migration failed at statement %d: %v", i+1, err))
			return err
		}
		bar.Set(i + 1)
		bar.Describe(color.CyanString("Migrating: ") +
			color.GreenString("[completed: %d/%d]", i+1, len(statements)))
	}
	bar.Finish()

	fmt.Fprintln(sm.out, color.GreenString("\n✓ History schema is up to date"))
	fmt.Fprintln(sm.out, color.WhiteString("Duration: %s", time.Since(startTime).Round(time.Millisecond)))
	return nil
}

var _ Migrator = (*SchemaMigrator)(nil)
