package domain

import (
	"fmt"
	"slices"

	"github.com/pmezard/go-difflib/difflib"

	m "impall.dev/pkg/impall/internal/model"
)

// Reconcile compares the failures of report against the names expected to
// fail. Expected names may be colon-separated or written in path form.
func Reconcile(report m.Report, expected []string) m.Reconciliation {
	want := expectedSet(expected)

	rec := m.Reconciliation{
		Unexpected:   []m.FailedUnit{},
		FailedToFail: []string{},
		Expected:     []m.FailedUnit{},
		Missing:      []string{},
	}

	attempted := map[string]struct{}{}

	for _, result := range report.Results {
		name := result.Unit.Name
		attempted[name] = struct{}{}

		_, isExpected := want[name]

		switch {
		case result.Status == m.Failure && isExpected:
			rec.Expected = append(rec.Expected, m.FailedUnit{Name: name, Detail: result.Detail})
		case result.Status == m.Failure:
			rec.Unexpected = append(rec.Unexpected, m.FailedUnit{Name: name, Detail: result.Detail})
		case isExpected:
			rec.FailedToFail = append(rec.FailedToFail, name)
		}
	}

	for name := range want {
		if _, ok := attempted[name]; !ok {
			rec.Missing = append(rec.Missing, name)
		}
	}

	slices.Sort(rec.Missing)

	return rec
}

// ExpectationDiff renders a unified diff between the expected failures and
// the failures the run produced. It is empty when they agree.
func ExpectationDiff(report m.Report, expected []string) (string, error) {
	want := make([]string, 0, len(expected))
	for name := range expectedSet(expected) {
		want = append(want, name)
	}

	got := make([]string, 0)
	for _, failure := range report.Failures() {
		got = append(got, failure.Name)
	}

	slices.Sort(want)
	slices.Sort(got)
	got = slices.Compact(got)

	if slices.Equal(want, got) {
		return "", nil
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(joinLines(want)),
		B:        difflib.SplitLines(joinLines(got)),
		FromFile: "expected failures",
		ToFile:   "actual failures",
		Context:  1,
	})
	if err != nil {
		return "", fmt.Errorf("failed to diff failures: %w", err)
	}

	return diff, nil
}

func expectedSet(expected []string) map[string]struct{} {
	set := map[string]struct{}{}
	for _, name := range m.SplitList(expected...) {
		set[m.DefaultLayout.NormalizeName(name)] = struct{}{}
	}

	return set
}

func joinLines(lines []string) string {
	var out string
	for _, line := range lines {
		out += line + "\n"
	}

	return out
}
