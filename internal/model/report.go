package model

import (
	"fmt"
	"time"
)

// Status is the outcome of one load attempt.
type Status int

const (
	// Success indicates the unit loaded without error.
	Success Status = iota
	// Failure indicates the unit raised an error or an escalated warning.
	Failure
)

// String returns the lowercase status label.
func (s Status) String() string {
	switch s {
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return "unknown"
	}
}

// MarshalYAML implements yaml.Marshaler.
func (s Status) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}

// UnmarshalYAML implements the yaml.v3 unmarshaler contract.
func (s *Status) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var label string
	if err := unmarshal(&label); err != nil {
		return err
	}

	switch label {
	case "success":
		*s = Success
	case "failure":
		*s = Failure
	default:
		return fmt.Errorf("unknown status %q", label)
	}

	return nil
}

// Result records the outcome of loading one unit.
type Result struct {
	Unit   Unit   `yaml:"unit"`
	Status Status `yaml:"status"`
	// Detail is the captured error text for failures, or the warning text for
	// successes that raised a reported warning.
	Detail   string        `yaml:"detail,omitempty"`
	Duration time.Duration `yaml:"duration"`
	// Err is the original error. It is not persisted.
	Err error `yaml:"-"`
}

// FailedUnit pairs a unit name with its captured error detail.
type FailedUnit struct {
	Name   string `yaml:"name"`
	Detail string `yaml:"detail"`
}

// Report is the ordered record of one engine run.
type Report struct {
	Results []Result `yaml:"results"`
}

// Successes returns the names of the units that loaded, in attempt order.
func (r Report) Successes() []string {
	names := make([]string, 0, len(r.Results))

	for _, result := range r.Results {
		if result.Status == Success {
			names = append(names, result.Unit.Name)
		}
	}

	return names
}

// Failures returns the failed units with their detail, in attempt order.
func (r Report) Failures() []FailedUnit {
	failures := make([]FailedUnit, 0)

	for _, result := range r.Results {
		if result.Status == Failure {
			failures = append(failures, FailedUnit{Name: result.Unit.Name, Detail: result.Detail})
		}
	}

	return failures
}

// Len returns the number of attempted units.
func (r Report) Len() int {
	return len(r.Results)
}

// Reconciliation compares a report against the expected failures.
type Reconciliation struct {
	// Unexpected are failures of units that were not expected to fail.
	Unexpected []FailedUnit `yaml:"unexpected"`
	// FailedToFail are units expected to fail that loaded successfully.
	FailedToFail []string `yaml:"failed_to_fail"`
	// Expected are failures that were expected; they are not surfaced as errors.
	Expected []FailedUnit `yaml:"expected"`
	// Missing are expected failures that were never attempted.
	Missing []string `yaml:"missing"`
}

// OK reports whether the run should be considered passing.
func (r Reconciliation) OK() bool {
	return len(r.Unexpected) == 0 && len(r.FailedToFail) == 0
}

// SavedReport is the document written by the report store.
type SavedReport struct {
	RunID          string         `yaml:"run_id"`
	StartedAt      time.Time      `yaml:"started_at"`
	Config         SavedConfig    `yaml:"config"`
	Report         Report         `yaml:",inline"`
	Reconciliation Reconciliation `yaml:"reconciliation"`
}

// SavedConfig is the persisted subset of Config.
type SavedConfig struct {
	Roots            []Path        `yaml:"roots"`
	Include          []string      `yaml:"include,omitempty"`
	Exclude          []string      `yaml:"exclude,omitempty"`
	ExpectedFailures []string      `yaml:"expected_failures,omitempty"`
	RecurseAll       bool          `yaml:"recurse_all"`
	Warnings         WarningPolicy `yaml:"warnings"`
	FailFast         bool          `yaml:"fail_fast"`
	ClearState       bool          `yaml:"clear_state"`
}

// Saved returns the persisted form of c.
func (c Config) Saved() SavedConfig {
	return SavedConfig{
		Roots:            c.Roots,
		Include:          c.Include,
		Exclude:          c.Exclude,
		ExpectedFailures: c.ExpectedFailures,
		RecurseAll:       c.RecurseAll,
		Warnings:         c.Warnings,
		FailFast:         c.FailFast,
		ClearState:       c.ClearState,
	}
}
