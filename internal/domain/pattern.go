package domain

import (
	"strings"

	m "impall.dev/pkg/impall/internal/model"
)

const (
	singleWildcard   = "*"
	trailingWildcard = "**"
)

// SegmentKind tags one step of a compiled pattern.
type SegmentKind int

// Segment kinds.
const (
	// Literal matches a name segment exactly.
	Literal SegmentKind = iota
	// Single matches exactly one name segment.
	Single
	// Trailing matches zero or more remaining segments. It is always last.
	Trailing
)

// Segment is one compiled pattern step.
type Segment struct {
	Kind SegmentKind
	Text string
}

// Pattern is a compiled dotted-name pattern.
type Pattern struct {
	source   string
	segments []Segment
}

// String returns the pattern as written, after path normalisation.
func (p Pattern) String() string {
	return p.source
}

// Segments returns the compiled steps.
func (p Pattern) Segments() []Segment {
	return p.segments
}

// Matches runs the segment automaton over name.
func (p Pattern) Matches(name string) bool {
	parts := m.SplitName(name)

	for i, seg := range p.segments {
		if seg.Kind == Trailing {
			return true
		}

		if i >= len(parts) {
			return false
		}

		if seg.Kind == Literal && seg.Text != parts[i] {
			return false
		}
	}

	return len(parts) == len(p.segments)
}

// Matcher decides whether dotted names are selected by a set of patterns.
type Matcher struct {
	patterns []Pattern
	// empty is the answer when no patterns were given.
	empty bool
}

// Compile builds an exclude-style matcher: with no patterns nothing matches.
// Each argument may hold several colon-separated patterns.
func Compile(patterns ...string) (*Matcher, error) {
	return compileMatcher(m.DefaultLayout, false, patterns)
}

// CompileInclude builds an include-style matcher: with no patterns everything
// matches.
func CompileInclude(patterns ...string) (*Matcher, error) {
	return compileMatcher(m.DefaultLayout, true, patterns)
}

func compileMatcher(layout m.Layout, matchAllWhenEmpty bool, patterns []string) (*Matcher, error) {
	matcher := &Matcher{empty: matchAllWhenEmpty}

	for _, raw := range m.SplitList(patterns...) {
		pattern, err := CompilePattern(layout.NormalizeName(raw))
		if err != nil {
			return nil, err
		}

		matcher.patterns = append(matcher.patterns, pattern)
	}

	return matcher, nil
}

// CompilePattern compiles a single dotted pattern.
func CompilePattern(text string) (Pattern, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Pattern{}, &PatternError{Pattern: text, Reason: "empty pattern"}
	}

	parts := m.SplitName(text)
	segments := make([]Segment, 0, len(parts))

	for i, part := range parts {
		switch {
		case part == "":
			return Pattern{}, &PatternError{Pattern: text, Reason: "empty segment"}
		case part == trailingWildcard:
			if i != len(parts)-1 {
				return Pattern{}, &PatternError{Pattern: text, Reason: "** must be the last segment"}
			}

			segments = append(segments, Segment{Kind: Trailing, Text: part})
		case part == singleWildcard:
			segments = append(segments, Segment{Kind: Single, Text: part})
		case strings.Contains(part, singleWildcard):
			return Pattern{}, &PatternError{Pattern: text, Reason: "wildcards must fill a whole segment"}
		default:
			segments = append(segments, Segment{Kind: Literal, Text: part})
		}
	}

	return Pattern{source: text, segments: segments}, nil
}

// Matches reports whether any pattern matches name.
func (mt *Matcher) Matches(name string) bool {
	if len(mt.patterns) == 0 {
		return mt.empty
	}

	for _, pattern := range mt.patterns {
		if pattern.Matches(name) {
			return true
		}
	}

	return false
}

// Patterns returns the compiled patterns.
func (mt *Matcher) Patterns() []Pattern {
	return mt.patterns
}

// Filter holds the compiled include and exclude matchers of a run.
type Filter struct {
	Include *Matcher
	Exclude *Matcher
}

// NewFilter compiles the include and exclude patterns of cfg.
func NewFilter(cfg m.Config) (Filter, error) {
	layout := cfg.Layout.OrDefault()

	include, err := compileMatcher(layout, true, cfg.Include)
	if err != nil {
		return Filter{}, err
	}

	exclude, err := compileMatcher(layout, false, cfg.Exclude)
	if err != nil {
		return Filter{}, err
	}

	return Filter{Include: include, Exclude: exclude}, nil
}

// Accepts applies exclude before include.
func (f Filter) Accepts(name string) bool {
	if f.Exclude.Matches(name) {
		return false
	}

	return f.Include.Matches(name)
}
