package webapp

import (
	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/aexpy/aexpyweb/router"
)

// NavBar is the navigation bar component
type NavBar struct {
	app.Compo
	Active router.ViewID
}

func (n *NavBar) itemClass(view router.ViewID) string {
	if n.Active == view {
		return "navbar-item active"
	}
	return "navbar-item"
}

// Render renders the navigation bar
func (n *NavBar) Render() app.UI {
	return app.Nav().
		Class("navbar").
		Body(
			app.Div().Class("navbar-brand").Body(
				app.A().Href("/").Body(app.H1().Text(router.AppName)),
			),
			app.Div().Class("navbar-menu").Body(
				app.A().
					Href("/").
					Class(n.itemClass(router.ViewHome)).
					Body(app.Text("Home")),
				app.A().
					Href("/view").
					Class(n.itemClass(router.ViewPicker)).
					Body(app.Text("View")),
			),
		)
}
