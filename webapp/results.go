package webapp

import (
	"bytes"
	"encoding/json"
	"net/url"

	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/aexpy/aexpyweb/router"
)

// resultAPIPath maps a result view to the API endpoint serving its data
func resultAPIPath(kind router.ViewID, project, version, old, new string) string {
	base := "/api/projects/" + url.PathEscape(project) + "/"
	switch kind {
	case router.ViewDistribution:
		return base + url.PathEscape(version) + "/distribution"
	case router.ViewDescription:
		return base + url.PathEscape(version) + "/description"
	case router.ViewDifference:
		return base + url.PathEscape(old) + "/" + url.PathEscape(new) + "/difference"
	case router.ViewReport:
		return base + url.PathEscape(old) + "/" + url.PathEscape(new) + "/report"
	}
	return ""
}

// prettyJSON indents a result document for display, leaving invalid input as is
func prettyJSON(data []byte) string {
	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		return string(data)
	}
	return out.String()
}

// ResultPage shows a distribution, description, difference or report
type ResultPage struct {
	app.Compo
	Kind    router.ViewID
	Project string
	Version string
	Old     string
	New     string

	loadedFrom string
	body       string
	loading    bool
	error      string
}

// OnMount loads the result
func (r *ResultPage) OnMount(ctx app.Context) {
	r.load(ctx)
}

// OnUpdate reloads when the route parameters change
func (r *ResultPage) OnUpdate(ctx app.Context) {
	r.load(ctx)
}

func (r *ResultPage) load(ctx app.Context) {
	endpoint := resultAPIPath(r.Kind, r.Project, r.Version, r.Old, r.New)
	if endpoint == "" || endpoint == r.loadedFrom {
		return
	}
	r.loadedFrom = endpoint
	r.loading = true
	r.error = ""
	r.body = ""

	fetchAPI(ctx, "GET", endpoint, func(ctx app.Context, res apiResponse) {
		if r.loadedFrom != endpoint {
			return
		}
		r.loading = false
		if res.Err != nil {
			r.error = res.Err.Error()
			return
		}
		if !res.OK() {
			r.error = apiFailure(res.Status, res.Body).Error()
			return
		}
		r.body = prettyJSON(res.Body)
	})
}

func (r *ResultPage) heading() string {
	switch r.Kind {
	case router.ViewDistribution:
		return r.Project + " @ " + r.Version + ": distribution"
	case router.ViewDescription:
		return r.Project + " " + r.Version + ": APIs"
	case router.ViewDifference:
		return r.Project + " " + r.Old + " → " + r.New + ": changes"
	case router.ViewReport:
		return r.Project + " " + r.Old + " → " + r.New + ": report"
	}
	return r.Project
}

// Render renders the result page
func (r *ResultPage) Render() app.UI {
	var content app.UI
	switch {
	case r.loading:
		content = app.Div().Class("loading").Text("Loading...")
	case r.error != "":
		content = app.Div().Class("error").Text("Error: " + r.error)
	default:
		content = app.Pre().Class("result").Text(r.body)
	}

	return app.Div().
		Class("result-page").
		Body(
			app.P().Body(
				app.A().Href(router.ProjectPath(r.Project)).Text("← "+r.Project),
			),
			app.H2().Text(r.heading()),
			content,
		)
}
