package webapp

import (
	"net/url"

	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/aexpy/aexpyweb/router"
)

// projectInfo mirrors /api/projects/:project
type projectInfo struct {
	Name     string   `json:"name"`
	Versions []string `json:"versions"`
	Pairs    []struct {
		Old string `json:"old"`
		New string `json:"new"`
	} `json:"pairs"`
}

// ProjectPage lists the versions and version pairs of a project
type ProjectPage struct {
	app.Compo
	Project string

	loadedFor string
	info      projectInfo
	loading   bool
	error     string
}

// OnMount loads the project
func (p *ProjectPage) OnMount(ctx app.Context) {
	p.load(ctx)
}

// OnUpdate reloads when the route parameters change
func (p *ProjectPage) OnUpdate(ctx app.Context) {
	p.load(ctx)
}

func (p *ProjectPage) load(ctx app.Context) {
	if p.Project == p.loadedFor {
		return
	}
	project := p.Project
	p.loadedFor = project
	p.loading = true
	p.error = ""

	fetchAPI(ctx, "GET", "/api/projects/"+url.PathEscape(project), func(ctx app.Context, res apiResponse) {
		if p.loadedFor != project {
			return
		}
		p.loading = false
		p.info = projectInfo{}
		if err := res.Decode(&p.info); err != nil {
			p.error = err.Error()
		}
	})
}

// Render renders the project page
func (p *ProjectPage) Render() app.UI {
	if p.loading {
		return app.Div().Class("loading").Text("Loading " + p.Project + "...")
	}
	if p.error != "" {
		return app.Div().Class("project-page").Body(
			app.H2().Text(p.Project),
			app.Div().Class("error").Text("Error: "+p.error),
		)
	}

	versions := make([]app.UI, 0, len(p.info.Versions))
	for _, v := range p.info.Versions {
		versions = append(versions, app.Li().Body(
			app.A().Href(router.DescriptionPath(p.Project, v)).Text(v),
			app.Text(" "),
			app.A().Class("secondary").Href(router.DistributionPath(p.Project, v)).Text("distribution"),
		))
	}

	pairs := make([]app.UI, 0, len(p.info.Pairs))
	for _, pair := range p.info.Pairs {
		pairs = append(pairs, app.Li().Body(
			app.A().Href(router.DifferencePath(p.Project, pair.Old, pair.New)).Text(pair.Old+" → "+pair.New),
			app.Text(" "),
			app.A().Class("secondary").Href(router.ReportPath(p.Project, pair.Old, pair.New)).Text("report"),
		))
	}

	return app.Div().
		Class("project-page").
		Body(
			app.H2().Text(p.Project),
			app.H3().Text("Versions"),
			listOrEmpty(versions, "No versions analysed yet."),
			app.H3().Text("Changes"),
			listOrEmpty(pairs, "No version pairs compared yet."),
		)
}

func listOrEmpty(items []app.UI, empty string) app.UI {
	if len(items) == 0 {
		return app.P().Class("empty").Text(empty)
	}
	return app.Ul().Body(items...)
}
