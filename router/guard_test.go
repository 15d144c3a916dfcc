package router

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingApplier collects every applied title.
type recordingApplier struct {
	mu     sync.Mutex
	titles []string
}

func (r *recordingApplier) ApplyTitle(title string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.titles = append(r.titles, title)
}

func (r *recordingApplier) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.titles) == 0 {
		return ""
	}
	return r.titles[len(r.titles)-1]
}

func TestFormatTitle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Projects - AexPy", FormatTitle("Projects", nil))
	assert.Equal(t, "Not Found - AexPy", FormatTitle("Not Found", map[string]string{"path": "x"}))
	assert.Equal(t, "X - APIs - AexPy", FormatTitle("APIs", map[string]string{"id": "X"}))
	assert.Equal(t, "APIs - AexPy", FormatTitle("APIs", map[string]string{"id": ""}))
}

func TestDecideTitle(t *testing.T) {
	t.Parallel()

	table := AppTable()

	t.Run("same path keeps the title", func(t *testing.T) {
		t.Parallel()

		from := table.Resolve("/projects/demo?tab=a")
		to := table.Resolve("/projects/demo#section")
		assert.Equal(t, NoChange(), DecideTitle(to, from))
	})

	t.Run("different path sets the title", func(t *testing.T) {
		t.Parallel()

		d := DecideTitle(table.Resolve("/projects/demo"), table.Resolve("/"))
		assert.True(t, d.Change)
		assert.Equal(t, "Projects - AexPy", d.Title)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		d := DecideTitle(table.Resolve("/foo/bar/baz"), table.Resolve("/view"))
		assert.Equal(t, SetTitle("Not Found - AexPy"), d)
	})

	t.Run("id parameter prefixes the title", func(t *testing.T) {
		t.Parallel()

		items := MustTable([]Route{
			{Path: "/items/:id", View: "item", Title: "Item"},
			{Path: "/:rest*", View: "missing", Title: "Missing"},
		})
		for _, id := range []string{"X", "42", "a b"} {
			d := DecideTitle(items.Resolve("/items/"+strings.ReplaceAll(id, " ", "%20")), StartLocation)
			require.True(t, d.Change)
			assert.True(t, strings.HasPrefix(d.Title, id+" - "), d.Title)
			assert.Equal(t, id+" - Item - AexPy", d.Title)
		}
	})
}

func TestNavigator(t *testing.T) {
	t.Parallel()

	t.Run("first navigation to the start path leaves the title", func(t *testing.T) {
		t.Parallel()

		applier := &recordingApplier{}
		nav := NewNavigator(AppTable(), applier)

		loc := nav.Navigate("/")
		assert.Equal(t, ViewHome, loc.View())
		assert.Empty(t, applier.titles)
	})

	t.Run("titles follow navigation", func(t *testing.T) {
		t.Parallel()

		applier := &recordingApplier{}
		nav := NewNavigator(AppTable(), applier)

		nav.Navigate("/projects/demo")
		assert.Equal(t, "Projects - AexPy", applier.last())

		loc := nav.Navigate("/projects/demo/@1.0.0")
		assert.Equal(t, ViewDistribution, loc.View())
		assert.Equal(t, "Distributions - AexPy", applier.last())

		nav.Navigate("/projects/demo/1.0.0..2.0.0")
		assert.Equal(t, "Changes - AexPy", applier.last())

		nav.Navigate("/foo/bar/baz")
		assert.Equal(t, "Not Found - AexPy", applier.last())
		assert.Len(t, applier.titles, 4)
	})

	t.Run("same path navigation does not touch the title", func(t *testing.T) {
		t.Parallel()

		applier := &recordingApplier{}
		nav := NewNavigator(AppTable(), applier)

		nav.Navigate("/view")
		nav.Navigate("/view?x=1")
		nav.Navigate("/view#y")
		assert.Equal(t, []string{"View - AexPy"}, applier.titles)
		assert.Equal(t, "/view#y", nav.Current().FullPath)
	})

	t.Run("redirect resolves like its target", func(t *testing.T) {
		t.Parallel()

		applier := &recordingApplier{}
		nav := NewNavigator(AppTable(), applier)

		nav.Navigate("/view")
		loc := nav.Navigate("/projects")
		assert.Equal(t, ViewHome, loc.View())
		assert.Equal(t, "Home - AexPy", applier.last())
		assert.Equal(t, "/", nav.Current().Path)
	})

	t.Run("nil applier", func(t *testing.T) {
		t.Parallel()

		nav := NewNavigator(AppTable(), nil)
		assert.NotPanics(t, func() { nav.Navigate("/view") })
	})

	t.Run("title func adapter", func(t *testing.T) {
		t.Parallel()

		var got string
		nav := NewNavigator(AppTable(), TitleFunc(func(title string) { got = title }))
		nav.Navigate("/projects/demo/1.0.0&2.0.0")
		assert.Equal(t, "Reports - AexPy", got)
	})
}

func TestNavigatorConcurrent(t *testing.T) {
	t.Parallel()

	applier := &recordingApplier{}
	nav := NewNavigator(AppTable(), applier)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				nav.Navigate("/view")
			} else {
				nav.Navigate("/projects/demo")
			}
		}(i)
	}
	wg.Wait()

	for _, title := range applier.titles {
		assert.Contains(t, []string{"View - AexPy", "Projects - AexPy"}, title)
	}
}
