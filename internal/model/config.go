package model

import (
	"fmt"
	"strings"
)

// WarningPolicy decides what happens to a warning raised while loading a unit.
type WarningPolicy string

// Supported warning policies. The names follow the Python warnings filter actions.
const (
	WarningsDefault WarningPolicy = "default"
	WarningsError   WarningPolicy = "error"
	WarningsIgnore  WarningPolicy = "ignore"
	WarningsAlways  WarningPolicy = "always"
	WarningsModule  WarningPolicy = "module"
	WarningsOnce    WarningPolicy = "once"
)

// WarningPolicies lists every accepted policy in display order.
var WarningPolicies = []WarningPolicy{
	WarningsDefault,
	WarningsError,
	WarningsIgnore,
	WarningsAlways,
	WarningsModule,
	WarningsOnce,
}

// ParseWarningPolicy validates a policy name. An empty value means default.
func ParseWarningPolicy(value string) (WarningPolicy, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return WarningsDefault, nil
	}

	for _, policy := range WarningPolicies {
		if string(policy) == value {
			return policy, nil
		}
	}

	return "", fmt.Errorf("unknown warning policy %q (want one of %s)", value, joinPolicies())
}

func joinPolicies() string {
	names := make([]string, 0, len(WarningPolicies))
	for _, policy := range WarningPolicies {
		names = append(names, string(policy))
	}

	return strings.Join(names, ", ")
}

// Config is the resolved set of options for one engine run.
type Config struct {
	// Roots are the directories to walk. Empty means guess from the working directory.
	Roots []Path
	// Include restricts loading to matching names. Empty means everything.
	Include []string
	// Exclude skips matching names before Include is consulted.
	Exclude []string
	// ExpectedFailures are names that must fail to load.
	ExpectedFailures []string
	// RecurseAll descends into every non-ignored directory instead of only packages.
	RecurseAll bool
	Warnings   WarningPolicy
	// FailFast aborts the run on the first load failure.
	FailFast bool
	// ClearState restores the module registry after every attempt.
	ClearState bool
	Layout     Layout
}

// DefaultConfig returns the defaults used when no option is overridden.
func DefaultConfig() Config {
	return Config{
		Warnings:   WarningsDefault,
		ClearState: true,
		Layout:     DefaultLayout,
	}
}

// SplitList splits colon-separated list values and drops empty entries.
// Both "a:b" and []string{"a", "b:c"} forms are accepted.
func SplitList(values ...string) []string {
	var out []string

	for _, value := range values {
		for _, part := range strings.Split(value, ":") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}

	return out
}
