package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"transcheck/internal/domain"
	"transcheck/internal/driver"
)

// Config holds all configuration for the application
type Config struct {
	// Project settings
	ProjectPath string `yaml:"project_path"`

	// Output settings
	OutputJSONFile string `yaml:"report_file"`
	OutputJSONDir  string `yaml:"storage_dir"`

	// Target and browser
	TargetURL  string `yaml:"target_url"`
	Headless   bool   `yaml:"headless"`
	BrowserBin string `yaml:"browser_bin"`
	ControlURL string `yaml:"control_url"`

	// Execution settings
	Workers           int           `yaml:"workers"`
	PollInterval      time.Duration `yaml:"poll_interval"`
	ExtractTimeout    time.Duration `yaml:"extract_timeout"`
	StableReads       int           `yaml:"stable_reads"`
	EmptyGrace        time.Duration `yaml:"empty_grace"`
	NavigationTimeout time.Duration `yaml:"navigation_timeout"`
	RunTimeout        time.Duration `yaml:"run_timeout"`
	Repeat            int           `yaml:"repeat"`

	// Classification
	MaxInputLength int            `yaml:"max_input_length"`
	EmptyInput     domain.Outcome `yaml:"empty_input"`

	// UI locators by control name
	Locators map[string]driver.Locator `yaml:"locators"`

	// Paths to ignore when scanning for matrix files
	PathsToIgnore []string `yaml:"paths_to_ignore"`

	History HistoryConfig `yaml:"history"`

	// Command flags
	Flags Flags `yaml:"-"`

	source string
}

// HistoryConfig selects the SQL run history store.
type HistoryConfig struct {
	Driver   string `yaml:"driver"` // sqlite or mysql
	DSN      string `yaml:"dsn"`
	Database string `yaml:"database"`
}

// Flags holds command-line flags
type Flags struct {
	Workers        int
	TargetURL      string
	NameFilter     string
	Partitions     []string
	Shard          string
	FailFast       bool
	OnlyFailed     bool
	OpenFailures   bool
	Watch          bool
	History        bool
	Timeout        time.Duration
	ExtractTimeout time.Duration
	Repeat         int
	EmptyInput     string
	Headless       *bool
	ShowRules      bool
	ShowChecks     bool
	Limit          int
	CaseID         string
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		ProjectPath:       DefaultProjectPath,
		OutputJSONFile:    DefaultOutputJSONFile,
		OutputJSONDir:     DefaultOutputJSONDir,
		TargetURL:         DefaultTargetURL,
		Headless:          true,
		Workers:           DefaultWorkers,
		PollInterval:      DefaultPollInterval,
		ExtractTimeout:    DefaultExtractTimeout,
		StableReads:       DefaultStableReads,
		EmptyGrace:        DefaultEmptyGrace,
		NavigationTimeout: DefaultNavigationTimeout,
		RunTimeout:        DefaultRunTimeout,
		Repeat:            DefaultRepeat,
		MaxInputLength:    DefaultMaxInputLength,
		EmptyInput:        DefaultEmptyInput,
		Locators:          DefaultLocators(),
		History:           HistoryConfig{Driver: DefaultHistoryDriver},
		Flags:             Flags{Workers: DefaultWorkers},
	}
	// Copy default paths to ignore
	cfg.PathsToIgnore = make([]string, len(DefaultPathsToIgnore))
	copy(cfg.PathsToIgnore, DefaultPathsToIgnore)
	return cfg
}

// LoadFile overlays a YAML config file. A missing file is not an error when
// the path is the implicit default.
func (c *Config) LoadFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = filepath.Join(c.ProjectPath, DefaultConfigFile)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	c.source = path
	return nil
}

// Source returns the config file applied by LoadFile, or "" when none was.
func (c *Config) Source() string {
	return c.source
}

// ApplyFlags copies flag overrides into the config.
func (c *Config) ApplyFlags(flags Flags) error {
	c.Flags = flags
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.TargetURL != "" {
		c.TargetURL = flags.TargetURL
	}
	if flags.Timeout > 0 {
		c.RunTimeout = flags.Timeout
	}
	if flags.ExtractTimeout > 0 {
		c.ExtractTimeout = flags.ExtractTimeout
	}
	if flags.Repeat > 0 {
		c.Repeat = flags.Repeat
	}
	if flags.Headless != nil {
		c.Headless = *flags.Headless
	}
	if flags.EmptyInput != "" {
		outcome, ok := domain.ParseOutcome(strings.ToLower(flags.EmptyInput))
		if !ok {
			return fmt.Errorf("invalid --empty-input %q: want success or error", flags.EmptyInput)
		}
		c.EmptyInput = outcome
	}
	return c.Validate()
}

// Validate normalizes values that have hard bounds.
func (c *Config) Validate() error {
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.ExtractTimeout < MinExtractTimeout {
		c.ExtractTimeout = MinExtractTimeout
	}
	if c.ExtractTimeout > MaxExtractTimeout {
		c.ExtractTimeout = MaxExtractTimeout
	}
	if c.PollInterval <= 0 {
		c.PollInterval = DefaultPollInterval
	}
	if c.StableReads <= 0 {
		c.StableReads = DefaultStableReads
	}
	if c.Repeat <= 0 {
		c.Repeat = DefaultRepeat
	}
	if _, ok := domain.ParseOutcome(string(c.EmptyInput)); !ok {
		return fmt.Errorf("invalid empty_input %q: want success or error", c.EmptyInput)
	}
	for _, name := range []string{ControlInput, ControlOutput} {
		if c.Locator(name).IsZero() {
			return fmt.Errorf("locator %q is required", name)
		}
	}
	return nil
}

// Locator returns the locator of a control, or the zero Locator.
func (c *Config) Locator(control string) driver.Locator {
	return c.Locators[control]
}

// GetOutputPath returns the full path to the report file (under project so run and failures use the same file).
// Resolves to an absolute path so run and failures always read/write the same file regardless of cwd.
func (c *Config) GetOutputPath() string {
	p := filepath.Join(c.ProjectPath, c.OutputJSONDir, c.OutputJSONFile)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// GetMatrixPaths returns the matrix sources given on the command line,
// resolved against the project path.
func (c *Config) GetMatrixPaths(args []string) []string {
	paths := make([]string, 0, len(args))
	for _, a := range args {
		if filepath.IsAbs(a) {
			paths = append(paths, a)
			continue
		}
		paths = append(paths, filepath.Join(c.ProjectPath, a))
	}
	return paths
}

// HistoryDatabaseName returns the MySQL schema used for run history.
func (c *Config) HistoryDatabaseName() string {
	if c.History.Database != "" {
		return c.History.Database
	}
	if name := os.Getenv("DB_DATABASE"); name != "" {
		return name
	}
	return DefaultHistoryDatabase
}

// GetHistoryDSN returns the data source name of the run history store.
func (c *Config) GetHistoryDSN() string {
	if c.History.DSN != "" {
		return c.History.DSN
	}
	if c.History.Driver == "mysql" {
		return c.GetServerDSN() + c.HistoryDatabaseName() + "?parseTime=true"
	}
	return filepath.Join(c.ProjectPath, c.OutputJSONDir, DefaultHistoryFile)
}

// GetServerDSN returns a MySQL DSN without a database, built from the DB_*
// environment variables.
func (c *Config) GetServerDSN() string {
	dbHost := envOr("DB_HOST", "127.0.0.1")
	dbPort := envOr("DB_PORT", "3306")
	dbUser := envOr("DB_USERNAME", "root")
	dbPassword := os.Getenv("DB_PASSWORD")
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/", dbUser, dbPassword, dbHost, dbPort)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, dst *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	*dst = n
	return nil
}
