package webapp

import (
	"errors"
	"strings"

	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/aexpy/aexpyweb/router"
)

// ViewPage picks a project, one or two versions and the view to open
type ViewPage struct {
	app.Compo
	kind    router.ViewID
	project string
	old     string
	new     string
	error   string
}

var pickerKinds = []struct {
	view  router.ViewID
	label string
}{
	{router.ViewProject, "Project"},
	{router.ViewDistribution, "Distribution"},
	{router.ViewDescription, "API description"},
	{router.ViewDifference, "Changes"},
	{router.ViewReport, "Report"},
}

// pickerPath builds the location the picker navigates to
func pickerPath(kind router.ViewID, project, old, new string) (string, error) {
	project = strings.TrimSpace(project)
	old = strings.TrimSpace(old)
	new = strings.TrimSpace(new)
	if project == "" {
		return "", errors.New("a project is required")
	}

	switch kind {
	case router.ViewProject, "":
		return router.ProjectPath(project), nil
	case router.ViewDistribution, router.ViewDescription:
		if old == "" {
			return "", errors.New("a version is required")
		}
		if kind == router.ViewDistribution {
			return router.DistributionPath(project, old), nil
		}
		return router.DescriptionPath(project, old), nil
	case router.ViewDifference, router.ViewReport:
		if old == "" || new == "" {
			return "", errors.New("both versions are required")
		}
		if kind == router.ViewDifference {
			return router.DifferencePath(project, old, new), nil
		}
		return router.ReportPath(project, old, new), nil
	}
	return "", errors.New("unknown view " + string(kind))
}

// Render renders the view picker
func (v *ViewPage) Render() app.UI {
	options := make([]app.UI, 0, len(pickerKinds))
	for _, k := range pickerKinds {
		options = append(options, app.Option().
			Value(string(k.view)).
			Selected(v.kind == k.view).
			Text(k.label))
	}

	pair := v.kind == router.ViewDifference || v.kind == router.ViewReport
	versionLabel := "Version"
	if pair {
		versionLabel = "Old version"
	}

	var newVersion app.UI = app.Span()
	if pair {
		newVersion = app.Label().Body(
			app.Text("New version"),
			app.Input().Type("text").Value(v.new).OnInput(v.onNew),
		)
	}

	var version app.UI = app.Span()
	if v.kind != router.ViewProject && v.kind != "" {
		version = app.Label().Body(
			app.Text(versionLabel),
			app.Input().Type("text").Value(v.old).OnInput(v.onOld),
		)
	}

	var status app.UI = app.Div()
	if v.error != "" {
		status = app.Div().Class("error").Text(v.error)
	}

	return app.Div().
		Class("view-page").
		Body(
			app.H2().Text("Open a view"),
			app.Form().
				Class("picker").
				OnSubmit(v.onSubmit).
				Body(
					app.Label().Body(
						app.Text("View"),
						app.Select().OnChange(v.onKind).Body(options...),
					),
					app.Label().Body(
						app.Text("Project"),
						app.Input().Type("text").Value(v.project).OnInput(v.onProject),
					),
					version,
					newVersion,
					app.Button().Type("submit").Text("Open"),
				),
			status,
		)
}

func (v *ViewPage) onKind(ctx app.Context, e app.Event) {
	v.kind = router.ViewID(ctx.JSSrc().Get("value").String())
}

func (v *ViewPage) onProject(ctx app.Context, e app.Event) {
	v.project = ctx.JSSrc().Get("value").String()
}

func (v *ViewPage) onOld(ctx app.Context, e app.Event) {
	v.old = ctx.JSSrc().Get("value").String()
}

func (v *ViewPage) onNew(ctx app.Context, e app.Event) {
	v.new = ctx.JSSrc().Get("value").String()
}

func (v *ViewPage) onSubmit(ctx app.Context, e app.Event) {
	e.PreventDefault()
	path, err := pickerPath(v.kind, v.project, v.old, v.new)
	if err != nil {
		v.error = err.Error()
		return
	}
	v.error = ""
	ctx.Navigate(path)
}
