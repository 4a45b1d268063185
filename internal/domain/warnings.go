package domain

import (
	"errors"

	m "impall.dev/pkg/impall/internal/model"
)

// warningFilter applies a warning policy across one run. It remembers which
// warnings were already reported so repeated ones are suppressed the way the
// policy asks.
type warningFilter struct {
	policy m.WarningPolicy
	seen   map[string]struct{}
}

func newWarningFilter(policy m.WarningPolicy) *warningFilter {
	if policy == "" {
		policy = m.WarningsDefault
	}

	return &warningFilter{policy: policy, seen: map[string]struct{}{}}
}

// apply splits warnings into those to report and whether any must be
// escalated to a failure.
func (f *warningFilter) apply(unit string, warnings []*m.Warning) (reported []*m.Warning, escalate bool) {
	for _, warning := range warnings {
		switch f.policy {
		case m.WarningsIgnore:
			continue
		case m.WarningsError:
			reported = append(reported, warning)
			escalate = true
		case m.WarningsAlways:
			reported = append(reported, warning)
		default:
			if f.firstTime(f.key(unit, warning)) {
				reported = append(reported, warning)
			}
		}
	}

	return reported, escalate
}

func (f *warningFilter) key(unit string, w *m.Warning) string {
	switch f.policy {
	case m.WarningsOnce:
		return w.Category + "\x00" + w.Message
	case m.WarningsModule:
		return unit + "\x00" + w.Category + "\x00" + w.Message
	default:
		return unit + "\x00" + w.Source + "\x00" + w.Category + "\x00" + w.Message
	}
}

func (f *warningFilter) firstTime(key string) bool {
	if _, ok := f.seen[key]; ok {
		return false
	}

	f.seen[key] = struct{}{}

	return true
}

// splitWarnings separates warnings from a loader error. A nil rest means the
// error carried nothing but warnings.
func splitWarnings(err error) (warnings []*m.Warning, rest error) {
	if err == nil {
		return nil, nil
	}

	if single, ok := err.(*m.Warning); ok {
		return []*m.Warning{single}, nil
	}

	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		return nil, err
	}

	var others []error

	for _, inner := range joined.Unwrap() {
		if w, isWarning := inner.(*m.Warning); isWarning {
			warnings = append(warnings, w)
			continue
		}

		others = append(others, inner)
	}

	if len(others) > 0 {
		return warnings, errors.Join(others...)
	}

	return warnings, nil
}
