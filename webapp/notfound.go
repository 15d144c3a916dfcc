package webapp

import "github.com/maxence-charriere/go-app/v10/pkg/app"

// NotFoundPage is rendered for every path no other route matches
type NotFoundPage struct {
	app.Compo
	Path string
}

// Render renders the not found page
func (n *NotFoundPage) Render() app.UI {
	return app.Div().
		Class("notfound-page").
		Body(
			app.H2().Text("Not Found"),
			app.P().Text("Nothing lives at "+n.Path+"."),
			app.A().Href("/").Text("Back to the project list"),
		)
}
