package router

import "sync"

// AppName is appended to every document title.
const AppName = "AexPy"

// titleSeparator joins the parts of a document title.
const titleSeparator = " - "

// TitleDecision is the outcome of the title guard for one navigation.
type TitleDecision struct {
	Change bool
	Title  string
}

// NoChange leaves the current document title in place.
func NoChange() TitleDecision { return TitleDecision{} }

// SetTitle replaces the document title.
func SetTitle(title string) TitleDecision { return TitleDecision{Change: true, Title: title} }

// FormatTitle builds "[id - ]title - AexPy" for a route title and the
// navigated params.
func FormatTitle(title string, params map[string]string) string {
	label := title + titleSeparator + AppName
	if id := params["id"]; id != "" {
		label = id + titleSeparator + label
	}
	return label
}

// DecideTitle is the navigation guard. It never blocks a navigation; it only
// reports whether the document title has to change.
func DecideTitle(to, from Location) TitleDecision {
	if to.Path == from.Path {
		return NoChange()
	}
	return SetTitle(FormatTitle(to.Title(), to.Params))
}

// TitleApplier performs the title side effect, e.g. writing the page title.
type TitleApplier interface {
	ApplyTitle(title string)
}

// TitleFunc adapts a function to TitleApplier.
type TitleFunc func(title string)

// ApplyTitle calls f(title).
func (f TitleFunc) ApplyTitle(title string) { f(title) }

// StartLocation is where every Navigator begins.
var StartLocation = Location{Path: "/", FullPath: "/", Params: map[string]string{}}

// Navigator drives navigations over a Table: it resolves the target, runs
// the title guard against the current location, applies the title and
// commits the target as the new current location.
type Navigator struct {
	table   *Table
	applier TitleApplier

	mu      sync.Mutex
	current Location
}

// NewNavigator returns a Navigator positioned at StartLocation.
func NewNavigator(table *Table, applier TitleApplier) *Navigator {
	return &Navigator{table: table, applier: applier, current: StartLocation}
}

// Navigate moves to raw and returns the resolved location. Navigation is
// always allowed.
func (n *Navigator) Navigate(raw string) Location {
	to := n.table.Resolve(raw)

	n.mu.Lock()
	defer n.mu.Unlock()
	if d := DecideTitle(to, n.current); d.Change && n.applier != nil {
		n.applier.ApplyTitle(d.Title)
	}
	n.current = to
	return to
}

// Current returns the last committed location.
func (n *Navigator) Current() Location {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}
