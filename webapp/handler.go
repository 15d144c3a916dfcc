package webapp

import (
	"net/http"

	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/aexpy/aexpyweb/config"
	"github.com/aexpy/aexpyweb/router"
)

// Register hands every path to the Shell; the route table decides what it renders
func Register(table *router.Table) {
	routes = table
	app.RouteWithRegexp("^/.*", func() app.Composer { return &Shell{} })
}

// Handler returns an HTTP handler for the web app
func Handler(frontEnd config.FrontEndConfig, icons app.Icon) http.Handler {
	Register(router.AppTable())
	app.RunWhenOnBrowser()

	name := frontEnd.AppName
	if name == "" {
		name = router.AppName
	}
	// wasm_exec.js and app.wasm are served from /web by Echo
	return &app.Handler{
		Name:        name,
		ShortName:   name,
		Title:       name,
		Description: frontEnd.Description,
		Icon:        icons,
		Styles: []string{
			frontEnd.StylePath,
		},
		RawHeaders: []string{
			`<meta name="viewport" content="width=device-width, initial-scale=1">`,
		},
	}
}
