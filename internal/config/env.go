package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"transcheck/internal/domain"
)

// LoadEnv loads the project's .env file and applies TRANSCHECK_* variables.
// Variables already present in the process environment win over .env values.
func (c *Config) LoadEnv() error {
	envPath := filepath.Join(c.ProjectPath, ".env")
	if err := godotenv.Load(envPath); err != nil {
		// .env file might not exist, that's okay - use environment variables
		_ = err
	}

	if v := os.Getenv("TRANSCHECK_TARGET_URL"); v != "" {
		c.TargetURL = v
	}
	if v := os.Getenv("TRANSCHECK_BROWSER_BIN"); v != "" {
		c.BrowserBin = v
	}
	if v := os.Getenv("TRANSCHECK_CONTROL_URL"); v != "" {
		c.ControlURL = v
	}
	if v := os.Getenv("TRANSCHECK_HEADLESS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TRANSCHECK_HEADLESS: %w", err)
		}
		c.Headless = b
	}
	if err := envInt("TRANSCHECK_WORKERS", &c.Workers); err != nil {
		return err
	}
	if v := os.Getenv("TRANSCHECK_EXTRACT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TRANSCHECK_EXTRACT_TIMEOUT: %w", err)
		}
		c.ExtractTimeout = d
	}
	if v := os.Getenv("TRANSCHECK_EMPTY_INPUT"); v != "" {
		outcome, ok := domain.ParseOutcome(v)
		if !ok {
			return fmt.Errorf("TRANSCHECK_EMPTY_INPUT: invalid outcome %q", v)
		}
		c.EmptyInput = outcome
	}
	if v := os.Getenv("TRANSCHECK_HISTORY_DRIVER"); v != "" {
		c.History.Driver = v
	}
	if v := os.Getenv("TRANSCHECK_HISTORY_DSN"); v != "" {
		c.History.DSN = v
	}
	return nil
}
