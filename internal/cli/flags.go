package cli

import (
	"time"

	"transcheck/internal/config"
)

// Flags holds command-line flags
type Flags struct {
	ConfigFile     string
	Verbose        bool
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
	Headless       bool
	ShowRules      bool
	ShowChecks     bool
	Limit          int
	CaseID         string
}

// ToConfigFlags converts CLI flags to config flags. headlessSet reports
// whether --headless was given explicitly.
func (f *Flags) ToConfigFlags(headlessSet bool) config.Flags {
	out := config.Flags{
		Workers:        f.Workers,
		TargetURL:      f.TargetURL,
		NameFilter:     f.NameFilter,
		Partitions:     append([]string(nil), f.Partitions...),
		Shard:          f.Shard,
		FailFast:       f.FailFast,
		OnlyFailed:     f.OnlyFailed,
		OpenFailures:   f.OpenFailures,
		Watch:          f.Watch,
		History:        f.History,
		Timeout:        f.Timeout,
		ExtractTimeout: f.ExtractTimeout,
		Repeat:         f.Repeat,
		EmptyInput:     f.EmptyInput,
		ShowRules:      f.ShowRules,
		ShowChecks:     f.ShowChecks,
		Limit:          f.Limit,
		CaseID:         f.CaseID,
	}
	if headlessSet {
		headless := f.Headless
		out.Headless = &headless
	}
	return out
}
