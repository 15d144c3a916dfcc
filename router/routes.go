package router

import "net/url"

// Views of the AexPy web app.
const (
	ViewHome         ViewID = "home"
	ViewPicker       ViewID = "view"
	ViewProject      ViewID = "project"
	ViewDistribution ViewID = "distribution"
	ViewDescription  ViewID = "description"
	ViewDifference   ViewID = "difference"
	ViewReport       ViewID = "report"
	ViewNotFound     ViewID = "notfound"
)

// AppRoutes is the route declaration of the AexPy web app.
//
// Routes sharing "/projects/:project/<segment>" are ordered from the most
// to the least constrained segment, so a version pair is never taken for a
// single version.
func AppRoutes() []Route {
	return []Route{
		{Path: "/", View: ViewHome, Title: "Home"},
		{Path: "/view", View: ViewPicker, Title: "View"},
		{Path: "/projects", Redirect: "/"},
		{Path: "/projects/:project", View: ViewProject, Title: "Projects", Props: true},
		{Path: "/projects/:project/@:version", View: ViewDistribution, Title: "Distributions", Props: true},
		{Path: "/projects/:project/:old..:new", View: ViewDifference, Title: "Changes", Props: true},
		{Path: "/projects/:project/:old&:new", View: ViewReport, Title: "Reports", Props: true},
		{Path: "/projects/:project/:version", View: ViewDescription, Title: "APIs", Props: true},
		{Path: "/:path*", View: ViewNotFound, Title: "Not Found"},
	}
}

// AppTable compiles AppRoutes.
func AppTable() *Table {
	return MustTable(AppRoutes())
}

// ProjectPath links to the project view.
func ProjectPath(project string) string {
	return "/projects/" + url.PathEscape(project)
}

// DistributionPath links to the distributions of a version.
func DistributionPath(project, version string) string {
	return ProjectPath(project) + "/@" + url.PathEscape(version)
}

// DescriptionPath links to the API description of a version.
func DescriptionPath(project, version string) string {
	return ProjectPath(project) + "/" + url.PathEscape(version)
}

// DifferencePath links to the changes between two versions.
func DifferencePath(project, old, new string) string {
	return ProjectPath(project) + "/" + url.PathEscape(old) + ".." + url.PathEscape(new)
}

// ReportPath links to the report between two versions.
func ReportPath(project, old, new string) string {
	return ProjectPath(project) + "/" + url.PathEscape(old) + "&" + url.PathEscape(new)
}
