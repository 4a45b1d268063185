package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "impall.dev/pkg/impall/internal/model"
)

func TestPattern_Matches(t *testing.T) {
	tests := []struct {
		pattern string
		name    string
		want    bool
	}{
		{"a.**", "a", true},
		{"a.**", "a.b", true},
		{"a.**", "a.b.c", true},
		{"a.**", "ab", false},
		{"a.*", "a.b", true},
		{"a.*", "a", false},
		{"a.*", "a.b.c", false},
		{"foo", "foo", true},
		{"foo", "foo.foo", false},
		{"*", "foo", true},
		{"*", "foo.bar", false},
		{"**", "foo.bar", true},
		{"*.b", "a.b", true},
		{"*.b", "a.c", false},
		{"a.*.c", "a.x.c", true},
		{"a.*.**", "a", false},
		{"a.*.**", "a.b", true},
		{"a.b.c", "a.b", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+" "+tt.name, func(t *testing.T) {
			pattern, err := CompilePattern(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.want, pattern.Matches(tt.name))
		})
	}
}

func TestCompilePattern_Segments(t *testing.T) {
	pattern, err := CompilePattern("a.*.**")
	require.NoError(t, err)

	assert.Equal(t, []Segment{
		{Kind: Literal, Text: "a"},
		{Kind: Single, Text: "*"},
		{Kind: Trailing, Text: "**"},
	}, pattern.Segments())
	assert.Equal(t, "a.*.**", pattern.String())
}

func TestCompilePattern_Rejects(t *testing.T) {
	tests := []struct {
		pattern string
		reason  string
	}{
		{"a.**.b", "** must be the last segment"},
		{"a..b", "empty segment"},
		{".a", "empty segment"},
		{"a.b*", "wildcards must fill a whole segment"},
		{"a.***", "wildcards must fill a whole segment"},
		{"  ", "empty pattern"},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			_, err := CompilePattern(tt.pattern)

			var patternErr *PatternError
			require.True(t, errors.As(err, &patternErr), "got %v", err)
			assert.Equal(t, tt.reason, patternErr.Reason)
		})
	}
}

func TestCompile_EmptySets(t *testing.T) {
	exclude, err := Compile()
	require.NoError(t, err)
	assert.False(t, exclude.Matches("anything"))

	include, err := CompileInclude()
	require.NoError(t, err)
	assert.True(t, include.Matches("anything"))

	include, err = CompileInclude("", ":")
	require.NoError(t, err)
	assert.True(t, include.Matches("anything"), "blank entries are dropped")
}

func TestCompile_ColonSeparatedAndPathForm(t *testing.T) {
	matcher, err := Compile("foo:bar.*", "baz/qux.py")
	require.NoError(t, err)

	require.Len(t, matcher.Patterns(), 3)
	assert.True(t, matcher.Matches("foo"))
	assert.True(t, matcher.Matches("bar.x"))
	assert.True(t, matcher.Matches("baz.qux"))
	assert.False(t, matcher.Matches("bar"))
}

func TestCompile_PropagatesPatternError(t *testing.T) {
	_, err := CompileInclude("ok", "bad.**.x")

	var patternErr *PatternError
	require.ErrorAs(t, err, &patternErr)
	assert.Equal(t, "bad.**.x", patternErr.Pattern)
}

func TestFilter_ExcludeBeforeInclude(t *testing.T) {
	cfg := m.DefaultConfig()
	cfg.Include = []string{"pkg.**"}
	cfg.Exclude = []string{"pkg.bad"}

	filter, err := NewFilter(cfg)
	require.NoError(t, err)

	assert.True(t, filter.Accepts("pkg"))
	assert.True(t, filter.Accepts("pkg.good"))
	assert.False(t, filter.Accepts("pkg.bad"))
	assert.False(t, filter.Accepts("other"))
}

func TestFilter_CustomLayoutPathForm(t *testing.T) {
	cfg := m.DefaultConfig()
	cfg.Layout = m.Layout{Marker: "init.rb", Suffix: ".rb"}
	cfg.Exclude = []string{"lib/slow.rb"}

	filter, err := NewFilter(cfg)
	require.NoError(t, err)

	assert.False(t, filter.Accepts("lib.slow"))
	assert.True(t, filter.Accepts("lib.fast"))
}
