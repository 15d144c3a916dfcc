package webapp

import (
	"net/url"
	"sync"

	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/aexpy/aexpyweb/router"
)

var (
	routes = router.AppTable()

	navigatorOnce sync.Once
	navigator     *router.Navigator
)

// titleSetter is the part of app.Page the navigator writes the title through
type titleSetter interface {
	SetTitle(string)
}

// pageTitles adapts app.Page, whose SetTitle is variadic, to titleSetter
type pageTitles struct {
	page app.Page
}

func (p pageTitles) SetTitle(title string) { p.page.SetTitle(title) }

// newPageNavigator returns a navigator over table that titles page
func newPageNavigator(table *router.Table, page titleSetter) *router.Navigator {
	return router.NewNavigator(table, router.TitleFunc(page.SetTitle))
}

// sharedNavigator is the single navigator of the running client
func sharedNavigator(page app.Page) *router.Navigator {
	navigatorOnce.Do(func() {
		navigator = newPageNavigator(routes, pageTitles{page})
	})
	return navigator
}

// redirectURL is the URL the browser must show for loc, nil when loc was not redirected
func redirectURL(loc router.Location) *url.URL {
	if loc.RedirectedFrom == "" {
		return nil
	}
	return &url.URL{Path: loc.Path}
}

// Shell is the root component: it resolves the current URL and renders the matching view
type Shell struct {
	app.Compo
	location router.Location
}

// OnPreRender sets the title when the page is rendered on the server
func (s *Shell) OnPreRender(ctx app.Context) {
	s.location = routes.Resolve(ctx.Page().URL().RequestURI())
	ctx.Page().SetTitle(router.FormatTitle(s.location.Title(), s.location.Params))
}

// OnMount loads the shared models once per client
func (s *Shell) OnMount(ctx app.Context) {
	LoadPublicModels(ctx)
}

// OnNav runs on every client side navigation
func (s *Shell) OnNav(ctx app.Context) {
	page := ctx.Page()
	s.location = sharedNavigator(page).Navigate(page.URL().RequestURI())
	if u := redirectURL(s.location); u != nil {
		page.ReplaceURL(u)
	}
}

// Render renders the app
func (s *Shell) Render() app.UI {
	return app.Div().
		Class("app-container").
		Body(
			app.Header().Body(
				&NavBar{Active: s.location.View()},
			),
			app.Main().Body(
				app.Div().Class("content").Body(
					s.renderPage(),
				),
			),
		)
}

// renderPage renders the view of the resolved route
func (s *Shell) renderPage() app.UI {
	p := s.location.Params
	switch s.location.View() {
	case router.ViewHome, "":
		return &HomePage{}
	case router.ViewPicker:
		return &ViewPage{}
	case router.ViewProject:
		return &ProjectPage{Project: p["project"]}
	case router.ViewDistribution, router.ViewDescription:
		return &ResultPage{Kind: s.location.View(), Project: p["project"], Version: p["version"]}
	case router.ViewDifference, router.ViewReport:
		return &ResultPage{Kind: s.location.View(), Project: p["project"], Old: p["old"], New: p["new"]}
	default:
		return &NotFoundPage{Path: s.location.Path}
	}
}
