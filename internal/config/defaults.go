package config

import (
	"time"

	"transcheck/internal/domain"
	"transcheck/internal/driver"
)

const (
	// DefaultProjectPath is the default project path
	DefaultProjectPath = "."
	// DefaultOutputJSONFile is the default report file name
	DefaultOutputJSONFile = "transcheck-report.json"
	// DefaultOutputJSONDir is the default output directory
	DefaultOutputJSONDir = "storage"
	// DefaultConfigFile is read when --config is not given and the file exists
	DefaultConfigFile = "transcheck.yaml"
	// DefaultTargetURL is the transliteration page under test
	DefaultTargetURL = "https://www.swifttranslator.com/"
	// DefaultWorkers is the default number of parallel browser sessions
	DefaultWorkers = 4
	// DefaultStableReads is how many identical reads make output stable
	DefaultStableReads = 3
	// DefaultMaxInputLength is the oversized-input threshold in runes
	DefaultMaxInputLength = 1000
	// DefaultRepeat is the number of submissions per translation case
	DefaultRepeat = 1
	// DefaultHistoryDriver is the database/sql driver of the run history
	DefaultHistoryDriver = "sqlite"
	// DefaultHistoryFile is the SQLite history file under the output directory
	DefaultHistoryFile = "history.db"
	// DefaultHistoryDatabase is the MySQL schema name of the run history
	DefaultHistoryDatabase = "transcheck"
)

const (
	DefaultPollInterval      = 250 * time.Millisecond
	DefaultExtractTimeout    = 10 * time.Second
	MinExtractTimeout        = 5 * time.Second
	MaxExtractTimeout        = 15 * time.Second
	DefaultEmptyGrace        = 2 * time.Second
	DefaultNavigationTimeout = 30 * time.Second
	DefaultRunTimeout        = 10 * time.Minute
)

// DefaultEmptyInput is the expected outcome for blank input.
const DefaultEmptyInput = domain.OutcomeSuccess

// Control names used by locators and structural checks.
const (
	ControlInput          = "input"
	ControlOutput         = "output"
	ControlOutputTitle    = "output-title"
	ControlClear          = "clear"
	ControlLanguage       = "language"
	ControlHeading        = "heading"
	ControlErrorIndicator = "error-indicator"
)

// DefaultLocators returns the locators of the Swift Translator page.
func DefaultLocators() map[string]driver.Locator {
	return map[string]driver.Locator{
		ControlInput:       {CSS: "textarea"},
		ControlOutput:      {XPath: `//*[contains(concat(' ', normalize-space(@class), ' '), ' panel-title ') and contains(., 'Sinhala')]/following-sibling::div[1]`},
		ControlOutputTitle: {CSS: ".panel-title", Text: "Sinhala"},
		ControlClear:       {CSS: "button", Text: "(?i)clear"},
		ControlLanguage:    {CSS: "select"},
		ControlHeading:     {XPath: `(//*[contains(text(), 'Sinhala')])[2]`},
	}
}

// DefaultPathsToIgnore are the directories skipped when scanning for matrix files
var DefaultPathsToIgnore = []string{
	"vendor",
	"node_modules",
	"storage",
	"testdata",
}
