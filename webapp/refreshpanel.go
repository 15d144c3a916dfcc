package webapp

import (
	"fmt"
	"time"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

const refreshReloadDelay = 5 * time.Second

// RefreshPanel asks the server to download the project index again
type RefreshPanel struct {
	app.Compo
	running bool
	result  string
	error   string
}

// Render renders the refresh panel
func (r *RefreshPanel) Render() app.UI {
	buttonText := "Refresh Project Index"
	if r.running {
		buttonText = "Requesting..."
	}

	return app.Div().
		Class("refresh-panel").
		Body(
			app.H3().Text("Project Index"),
			app.P().Text("The project list is downloaded from the package index on a schedule. You can also start a download now."),
			app.Button().
				Disabled(r.running).
				OnClick(r.onRefreshClick).
				Body(app.Text(buttonText)),
			r.renderStatus(),
		)
}

func (r *RefreshPanel) renderStatus() app.UI {
	if r.error != "" {
		return app.Div().Class("error").Text("Error: " + r.error)
	}
	if r.result != "" {
		return app.Div().Class("success").Body(app.P().Text(r.result))
	}
	return app.Div()
}

func (r *RefreshPanel) onRefreshClick(ctx app.Context, e app.Event) {
	r.running = true
	r.result = ""
	r.error = ""

	fetchAPI(ctx, "POST", "/api/index/refresh", func(ctx app.Context, res apiResponse) {
		r.running = false
		if res.Err != nil {
			r.error = res.Err.Error()
			return
		}
		if !res.OK() {
			r.error = fmt.Sprintf("Refresh failed with status: %d", res.Status)
			return
		}
		var payload struct {
			Message string `json:"message"`
		}
		if err := res.Decode(&payload); err == nil && payload.Message != "" {
			r.result = payload.Message
		} else {
			r.result = "Index refresh started"
		}
		// the list updates once the background refresh has stored the snapshot
		ctx.After(refreshReloadDelay, reloadProjects)
	})
}
