package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePattern(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pattern    string
		wantParams []string
		catchAll   bool
	}{
		{pattern: "/", wantParams: nil},
		{pattern: "/view", wantParams: nil},
		{pattern: "/projects/:project", wantParams: []string{"project"}},
		{pattern: "/projects/:project/@:version", wantParams: []string{"project", "version"}},
		{pattern: "/projects/:project/:old..:new", wantParams: []string{"project", "old", "new"}},
		{pattern: "/projects/:project/:old&:new", wantParams: []string{"project", "old", "new"}},
		{pattern: "/:path*", wantParams: []string{"path"}, catchAll: true},
		{pattern: "/docs/:path*", wantParams: []string{"path"}, catchAll: true},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			t.Parallel()

			p, err := ParsePattern(tt.pattern)
			require.NoError(t, err)
			assert.Equal(t, tt.pattern, p.String())
			assert.Equal(t, tt.wantParams, p.ParamNames())
			assert.Equal(t, tt.catchAll, p.IsCatchAll())
		})
	}
}

func TestParsePatternErrors(t *testing.T) {
	t.Parallel()

	for _, pattern := range []string{
		"",
		"view",
		"/:",
		"/x:",
		"/:a/:a",
		"/:a..:a",
		"/:a..",
		"/:a..:",
		"/@:a..:b",
		"/:rest*/more",
		"/p:rest*",
		"/:re-st*",
	} {
		t.Run(pattern, func(t *testing.T) {
			t.Parallel()

			_, err := ParsePattern(pattern)
			assert.Error(t, err)
		})
	}
}

func TestPatternMatch(t *testing.T) {
	t.Parallel()

	p, err := ParsePattern("/files/:name/:rest*")
	require.NoError(t, err)

	params, ok := p.Match("/files/a/b/c")
	require.True(t, ok)
	assert.Equal(t, map[string]string{"name": "a", "rest": "b/c"}, params)

	params, ok = p.Match("/files/a")
	require.True(t, ok)
	assert.Equal(t, map[string]string{"name": "a", "rest": ""}, params)

	_, ok = p.Match("/files")
	assert.False(t, ok)

	pair, err := ParsePattern("/:old..:new")
	require.NoError(t, err)
	params, ok = pair.Match("/a%2Fb..c")
	require.True(t, ok)
	assert.Equal(t, map[string]string{"old": "a/b", "new": "c"}, params)
}
