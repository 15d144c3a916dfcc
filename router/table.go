// Package router resolves client-side URLs of the web app to views and
// derives the document title for each navigation.
package router

import (
	"errors"
	"fmt"
	"strings"
)

// ViewID identifies the view a route renders.
type ViewID string

// Route binds a path pattern to a view and its display title.
// A route with a non-empty Redirect renders nothing itself: resolution
// continues as if the client had navigated to Redirect.
type Route struct {
	Path     string
	View     ViewID
	Title    string
	Props    bool // pass extracted params to the view
	Redirect string

	pattern Pattern
}

// Pattern returns the compiled pattern of the route.
func (r *Route) Pattern() Pattern { return r.pattern }

// Location is one side of a navigation: where the client is going to or
// coming from.
type Location struct {
	Path           string
	FullPath       string
	Params         map[string]string
	Route          *Route
	RedirectedFrom string
}

// Title returns the title declared on the matched route.
func (l Location) Title() string {
	if l.Route == nil {
		return ""
	}
	return l.Route.Title
}

// View returns the view of the matched route.
func (l Location) View() ViewID {
	if l.Route == nil {
		return ""
	}
	return l.Route.View
}

// maxRedirects bounds redirect chains during resolution.
const maxRedirects = 8

// Table is an ordered, immutable list of routes. The first route whose
// pattern matches wins. A Table is safe for concurrent use.
type Table struct {
	routes []*Route
}

// NewTable compiles and validates routes. The last route must be a
// catch-all so that resolution can never fail.
func NewTable(routes []Route) (*Table, error) {
	if len(routes) == 0 {
		return nil, errors.New("router: no routes declared")
	}
	t := &Table{}
	seen := map[string]bool{}
	for i := range routes {
		r := routes[i]
		p, err := ParsePattern(r.Path)
		if err != nil {
			return nil, fmt.Errorf("router: %w", err)
		}
		if seen[r.Path] {
			return nil, fmt.Errorf("router: duplicate route %q", r.Path)
		}
		seen[r.Path] = true
		if r.Redirect == "" && r.Title == "" {
			return nil, fmt.Errorf("router: route %q has no title", r.Path)
		}
		if p.IsCatchAll() && i != len(routes)-1 {
			return nil, fmt.Errorf("router: catch-all %q must be declared last", r.Path)
		}
		r.pattern = p
		t.routes = append(t.routes, &r)
	}
	last := t.routes[len(t.routes)-1]
	if !last.pattern.IsCatchAll() {
		return nil, errors.New("router: the last route must be a catch-all")
	}
	if last.Redirect != "" {
		return nil, errors.New("router: the catch-all route cannot redirect")
	}
	for _, r := range t.routes {
		if r.Redirect == "" {
			continue
		}
		if _, err := t.follow(r.Redirect); err != nil {
			return nil, fmt.Errorf("router: redirect from %q: %w", r.Path, err)
		}
	}
	return t, nil
}

// MustTable is like NewTable but panics on an invalid declaration.
func MustTable(routes []Route) *Table {
	t, err := NewTable(routes)
	if err != nil {
		panic(err)
	}
	return t
}

// Routes returns the declared routes in precedence order.
func (t *Table) Routes() []Route {
	out := make([]Route, len(t.routes))
	for i, r := range t.routes {
		out[i] = *r
	}
	return out
}

// Resolve maps a navigated URL (path with optional query and hash) to the
// first matching route. It always succeeds: unmatched paths land on the
// catch-all route.
func (t *Table) Resolve(raw string) Location {
	loc, err := t.follow(raw)
	if err != nil {
		// Only reachable through a redirect loop, which NewTable rejects.
		return t.fallback(raw)
	}
	return loc
}

func (t *Table) follow(raw string) (Location, error) {
	from := ""
	for hops := 0; hops <= maxRedirects; hops++ {
		path, full := normalize(raw)
		r, params := t.match(path)
		if r.Redirect == "" {
			return Location{
				Path:           path,
				FullPath:       full,
				Params:         params,
				Route:          r,
				RedirectedFrom: from,
			}, nil
		}
		if from == "" {
			from = full
		}
		raw = r.Redirect
	}
	return Location{}, fmt.Errorf("redirect chain longer than %d", maxRedirects)
}

func (t *Table) match(path string) (*Route, map[string]string) {
	for _, r := range t.routes {
		if params, ok := r.pattern.Match(path); ok {
			return r, params
		}
	}
	// Unreachable with a validated table: the last route is a catch-all.
	return t.routes[len(t.routes)-1], map[string]string{}
}

func (t *Table) fallback(raw string) Location {
	path, full := normalize(raw)
	last := t.routes[len(t.routes)-1]
	params, _ := last.pattern.Match(path)
	return Location{Path: path, FullPath: full, Params: params, Route: last}
}

// normalize splits raw into the matchable path and the full path. raw is
// always a path: a leading "//" is an empty segment, never an authority.
// The path keeps its escaping so that encoded slashes stay inside a segment.
func normalize(raw string) (path, full string) {
	full = raw
	if full == "" || full[0] != '/' {
		full = "/" + full
	}
	path, _, _ = strings.Cut(full, "#")
	path, _, _ = strings.Cut(path, "?")
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	return path, full
}
