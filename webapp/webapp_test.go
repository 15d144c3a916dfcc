package webapp

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/maxence-charriere/go-app/v10/pkg/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aexpy/aexpyweb/router"
)

func TestPickerPath(t *testing.T) {
	tests := []struct {
		name    string
		kind    router.ViewID
		project string
		old     string
		new     string
		want    string
		wantErr bool
	}{
		{name: "project", kind: router.ViewProject, project: "demo", want: "/projects/demo"},
		{name: "default kind", project: " demo ", want: "/projects/demo"},
		{name: "distribution", kind: router.ViewDistribution, project: "demo", old: "1.0.0", want: "/projects/demo/@1.0.0"},
		{name: "description", kind: router.ViewDescription, project: "demo", old: "1.0.0", want: "/projects/demo/1.0.0"},
		{name: "difference", kind: router.ViewDifference, project: "demo", old: "1.0.0", new: "2.0.0", want: "/projects/demo/1.0.0..2.0.0"},
		{name: "report", kind: router.ViewReport, project: "demo", old: "1.0.0", new: "2.0.0", want: "/projects/demo/1.0.0&2.0.0"},
		{name: "missing project", kind: router.ViewProject, wantErr: true},
		{name: "missing version", kind: router.ViewDescription, project: "demo", wantErr: true},
		{name: "missing new version", kind: router.ViewReport, project: "demo", old: "1.0.0", wantErr: true},
		{name: "unknown kind", kind: "nope", project: "demo", wantErr: true},
	}

	table := router.AppTable()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pickerPath(tt.kind, tt.project, tt.old, tt.new)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			if tt.kind != "" {
				assert.Equal(t, tt.kind, table.Resolve(got).View())
			}
		})
	}
}

func TestResultAPIPath(t *testing.T) {
	assert.Equal(t, "/api/projects/demo/1.0.0/distribution", resultAPIPath(router.ViewDistribution, "demo", "1.0.0", "", ""))
	assert.Equal(t, "/api/projects/demo/1.0.0/description", resultAPIPath(router.ViewDescription, "demo", "1.0.0", "", ""))
	assert.Equal(t, "/api/projects/demo/1.0.0/2.0.0/difference", resultAPIPath(router.ViewDifference, "demo", "", "1.0.0", "2.0.0"))
	assert.Equal(t, "/api/projects/my%20pkg/1.0.0/2.0.0/report", resultAPIPath(router.ViewReport, "my pkg", "", "1.0.0", "2.0.0"))
	assert.Empty(t, resultAPIPath(router.ViewHome, "demo", "", "", ""))
}

func TestPrettyJSON(t *testing.T) {
	assert.Equal(t, "{\n  \"a\": 1\n}", prettyJSON([]byte(`{"a":1}`)))
	assert.Equal(t, "not json", prettyJSON([]byte("not json")))
}

func TestTruncate(t *testing.T) {
	names := []string{"a", "b", "c"}

	shown, more := truncate(names, 2)
	assert.Equal(t, []string{"a", "b"}, shown)
	assert.Equal(t, 1, more)

	shown, more = truncate(names, 5)
	assert.Equal(t, names, shown)
	assert.Zero(t, more)
}

func TestAPIResponseDecode(t *testing.T) {
	var names []string
	ok := apiResponse{Status: 200, Body: []byte(`["a","b"]`)}
	require.NoError(t, ok.Decode(&names))
	assert.Equal(t, []string{"a", "b"}, names)

	missing := apiResponse{Status: 404, Body: []byte(`{"error":"result not found"}`)}
	err := missing.Decode(&names)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "result not found")
	assert.Contains(t, err.Error(), "404")

	bare := apiResponse{Status: 500}
	assert.EqualError(t, bare.Decode(&names), "request failed with status: 500")
}

func TestGenerateIconsPlaceholder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "icons")

	icon, err := GenerateIcons(filepath.Join(t.TempDir(), "missing.png"), dir)
	require.NoError(t, err)
	assert.Equal(t, "/icons/icon-192.png", icon.Default)
	assert.Equal(t, "/icons/icon-512.png", icon.Large)

	for _, size := range []int{DefaultIconSize, LargeIconSize} {
		img, err := imaging.Open(filepath.Join(dir, iconName(size)))
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, size, size), img.Bounds())
	}
}

func TestGenerateIconsFromLogo(t *testing.T) {
	src := filepath.Join(t.TempDir(), "logo.png")
	require.NoError(t, imaging.Save(imaging.New(800, 400, placeholderColor), src))
	dir := t.TempDir()

	_, err := GenerateIcons(src, dir)
	require.NoError(t, err)

	img, err := imaging.Open(filepath.Join(dir, iconName(DefaultIconSize)))
	require.NoError(t, err)
	assert.Equal(t, DefaultIconSize, img.Bounds().Dx())
	assert.Equal(t, DefaultIconSize, img.Bounds().Dy())
}

func TestGenerateIconsBrokenLogo(t *testing.T) {
	src := filepath.Join(t.TempDir(), "logo.png")
	require.NoError(t, os.WriteFile(src, []byte("not a png"), 0o644))

	_, err := GenerateIcons(src, t.TempDir())
	assert.Error(t, err)
}

func TestShellRendersResolvedView(t *testing.T) {
	tests := []struct {
		path string
		want app.UI
	}{
		{"/", &HomePage{}},
		{"/view", &ViewPage{}},
		{"/projects", &HomePage{}},
		{"/projects/demo", &ProjectPage{Project: "demo"}},
		{"/projects/demo/@1.0.0", &ResultPage{Kind: router.ViewDistribution, Project: "demo", Version: "1.0.0"}},
		{"/projects/demo/1.0.0", &ResultPage{Kind: router.ViewDescription, Project: "demo", Version: "1.0.0"}},
		{"/projects/demo/1.0.0..2.0.0", &ResultPage{Kind: router.ViewDifference, Project: "demo", Old: "1.0.0", New: "2.0.0"}},
		{"/projects/demo/1.0.0&2.0.0", &ResultPage{Kind: router.ViewReport, Project: "demo", Old: "1.0.0", New: "2.0.0"}},
		{"/foo/bar/baz", &NotFoundPage{Path: "/foo/bar/baz"}},
		{"//view", &NotFoundPage{Path: "//view"}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			s := &Shell{location: routes.Resolve(tt.path)}
			assert.Equal(t, tt.want, s.renderPage())
		})
	}
}

func TestShellStartsOnHome(t *testing.T) {
	s := &Shell{}
	assert.Equal(t, &HomePage{}, s.renderPage())
}

func TestRedirectURL(t *testing.T) {
	loc := routes.Resolve("/projects")
	assert.Equal(t, "/projects", loc.RedirectedFrom)

	u := redirectURL(loc)
	require.NotNil(t, u)
	assert.Equal(t, "/", u.String())

	assert.Nil(t, redirectURL(routes.Resolve("/projects/demo")))
}

type recordedTitles struct {
	titles []string
}

func (r *recordedTitles) SetTitle(title string) {
	r.titles = append(r.titles, title)
}

func TestPageNavigatorSetsTitle(t *testing.T) {
	page := &recordedTitles{}
	nav := newPageNavigator(router.AppTable(), page)

	nav.Navigate("/")
	assert.Empty(t, page.titles)

	nav.Navigate("/projects/demo/1.0.0..2.0.0")
	nav.Navigate("/projects/demo/1.0.0..2.0.0?tab=report")
	nav.Navigate("/no/such/page")
	assert.Equal(t, []string{"Changes - AexPy", "Not Found - AexPy"}, page.titles)
}
