package webapp

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/aexpy/aexpyweb/router"
)

// homeListLimit caps how many project links the home page renders at once
const homeListLimit = 200

// HomePage lists the indexed projects and lets the user search them
type HomePage struct {
	app.Compo
	index    ProjectIndex
	loaded   bool
	term     string
	results  []string
	searched bool
	loading  bool
	error    string
}

// OnMount observes the shared project list
func (h *HomePage) OnMount(ctx app.Context) {
	ctx.ObserveState(stateProjects, &h.index).OnChange(func() {
		h.loaded = true
	})
}

// Render renders the home page
func (h *HomePage) Render() app.UI {
	return app.Div().
		Class("home-page").
		Body(
			app.H2().Text("API Evolution Explorer"),
			app.P().Text("Browse the API descriptions, changes and reports of Python packages."),
			app.Form().
				Class("search-form").
				OnSubmit(h.onSearch).
				Body(
					app.Input().
						Type("search").
						Placeholder("Search projects...").
						Value(h.term).
						OnInput(h.onInput),
					app.Button().
						Type("submit").
						Disabled(h.loading).
						Text("Search"),
				),
			h.renderStatus(),
			h.renderList(),
			&RefreshPanel{},
		)
}

func (h *HomePage) renderStatus() app.UI {
	switch {
	case h.loading:
		return app.Div().Class("loading").Text("Searching...")
	case h.error != "":
		return app.Div().Class("error").Text("Error: " + h.error)
	case h.index.Error != "":
		return app.Div().Class("error").Text("Error: " + h.index.Error)
	case !h.loaded && !h.searched:
		return app.Div().Class("loading").Text("Loading projects...")
	}
	return app.Div()
}

func (h *HomePage) renderList() app.UI {
	names := h.index.Projects
	caption := fmt.Sprintf("%d projects", len(names))
	if h.index.Snapshot != nil {
		caption = fmt.Sprintf("%d projects indexed at %s", h.index.Snapshot.ProjectCount, h.index.Snapshot.FetchedAt)
	}
	if h.searched {
		names = h.results
		caption = fmt.Sprintf("%d matches for %q", len(names), h.term)
	}
	shown, more := truncate(names, homeListLimit)

	items := make([]app.UI, 0, len(shown))
	for _, name := range shown {
		items = append(items, app.Li().Body(
			app.A().Href(router.ProjectPath(name)).Text(name),
		))
	}
	footer := app.UI(app.Span())
	if more > 0 {
		footer = app.P().Class("more").Text(fmt.Sprintf("and %d more, refine the search to see them", more))
	}

	return app.Div().Class("project-list").Body(
		app.P().Class("caption").Text(caption),
		app.Ul().Body(items...),
		footer,
	)
}

func (h *HomePage) onInput(ctx app.Context, e app.Event) {
	h.term = ctx.JSSrc().Get("value").String()
	if strings.TrimSpace(h.term) == "" {
		h.searched = false
		h.results = nil
		h.error = ""
	}
}

func (h *HomePage) onSearch(ctx app.Context, e app.Event) {
	e.PreventDefault()
	term := strings.TrimSpace(h.term)
	if term == "" {
		return
	}
	h.loading = true
	h.error = ""
	fetchAPI(ctx, "GET", "/api/projects/search?q="+url.QueryEscape(term), func(ctx app.Context, res apiResponse) {
		h.loading = false
		var names []string
		if err := res.Decode(&names); err != nil {
			h.error = err.Error()
			return
		}
		h.results = names
		h.searched = true
	})
}

// truncate returns at most limit names and how many were left out
func truncate(names []string, limit int) ([]string, int) {
	if limit <= 0 || len(names) <= limit {
		return names, 0
	}
	return names[:limit], len(names) - limit
}
