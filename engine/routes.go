package engine

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/blevesearch/bleve"
	"github.com/labstack/echo/v4"

	"github.com/aexpy/aexpyweb/config"
	"github.com/aexpy/aexpyweb/database"
	"github.com/aexpy/aexpyweb/models"
	"github.com/aexpy/aexpyweb/router"
)

// Version is set at build time via ldflags
var Version = "dev"

// ServerHandler will inject the variables needed into routes
type ServerHandler struct {
	DB           database.DBInterface
	SearchDB     bleve.Index
	Echo         *echo.Echo
	ServerConfig config.ServerConfig
	Routes       *router.Table
	Results      *models.Repository
	Fetcher      IndexFetcher
	Ephemeral    bool
	Clock        func() time.Time

	refresh refreshState
}

// routeInfo describes one declared client route
type routeInfo struct {
	Pattern  string   `json:"pattern"`
	View     string   `json:"view,omitempty"`
	Title    string   `json:"title,omitempty"`
	Redirect string   `json:"redirect,omitempty"`
	Params   []string `json:"params"`
}

// resolution is the JSON form of a resolved location
type resolution struct {
	View           string            `json:"view"`
	Title          string            `json:"title"`
	DocumentTitle  string            `json:"documentTitle"`
	Pattern        string            `json:"pattern"`
	Path           string            `json:"path"`
	FullPath       string            `json:"fullPath"`
	Params         map[string]string `json:"params"`
	RedirectedFrom string            `json:"redirectedFrom,omitempty"`
}

type titleDecision struct {
	Change bool   `json:"change"`
	Title  string `json:"title,omitempty"`
}

type projectList struct {
	Projects []string           `json:"projects"`
	Snapshot *database.Snapshot `json:"snapshot"`
}

type apiError struct {
	Error string `json:"error"`
}

func toResolution(loc router.Location) resolution {
	params := loc.Params
	if params == nil {
		params = map[string]string{}
	}
	return resolution{
		View:           string(loc.View()),
		Title:          loc.Title(),
		DocumentTitle:  router.FormatTitle(loc.Title(), params),
		Pattern:        loc.Route.Path,
		Path:           loc.Path,
		FullPath:       loc.FullPath,
		Params:         params,
		RedirectedFrom: loc.RedirectedFrom,
	}
}

// RegisterRoutes adds all API routes to the echo instance
func (serverHandler *ServerHandler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")
	api.GET("/routes", serverHandler.GetRoutes)
	api.GET("/resolve", serverHandler.ResolveRoute)
	api.GET("/title", serverHandler.DecideTitle)
	api.GET("/projects", serverHandler.GetProjects)
	api.GET("/projects/search", serverHandler.SearchProjects)
	api.GET("/projects/:project", serverHandler.GetProject)
	api.GET("/projects/:project/:version/distribution", serverHandler.GetDistribution)
	api.GET("/projects/:project/:version/description", serverHandler.GetDescription)
	api.GET("/projects/:project/:old/:new/difference", serverHandler.GetDifference)
	api.GET("/projects/:project/:old/:new/report", serverHandler.GetReport)
	api.POST("/index/refresh", serverHandler.RunRefreshNow)
	api.GET("/about", serverHandler.GetAboutInfo)
}

// GetRoutes lists the client routes in precedence order
func (serverHandler *ServerHandler) GetRoutes(context echo.Context) error {
	routes := serverHandler.Routes.Routes()
	infos := make([]routeInfo, 0, len(routes))
	for _, r := range routes {
		params := r.Pattern().ParamNames()
		if params == nil {
			params = []string{}
		}
		infos = append(infos, routeInfo{
			Pattern:  r.Path,
			View:     string(r.View),
			Title:    r.Title,
			Redirect: r.Redirect,
			Params:   params,
		})
	}
	return context.JSON(http.StatusOK, infos)
}

// ResolveRoute resolves a client path through the route table
func (serverHandler *ServerHandler) ResolveRoute(context echo.Context) error {
	path := context.QueryParam("path")
	if path == "" {
		return context.JSON(http.StatusBadRequest, apiError{Error: "missing path"})
	}
	loc := serverHandler.Routes.Resolve(path)
	Logger.Debug("Resolved client route", "path", path, "view", loc.View())
	return context.JSON(http.StatusOK, toResolution(loc))
}

// DecideTitle runs the title guard for a navigation from one path to another
func (serverHandler *ServerHandler) DecideTitle(context echo.Context) error {
	to := context.QueryParam("to")
	if to == "" {
		return context.JSON(http.StatusBadRequest, apiError{Error: "missing to"})
	}
	from := router.StartLocation
	if raw := context.QueryParam("from"); raw != "" {
		from = serverHandler.Routes.Resolve(raw)
	}
	d := router.DecideTitle(serverHandler.Routes.Resolve(to), from)
	return context.JSON(http.StatusOK, titleDecision{Change: d.Change, Title: d.Title})
}

// GetProjects returns the project names of the latest index snapshot
func (serverHandler *ServerHandler) GetProjects(context echo.Context) error {
	snapshot, err := serverHandler.DB.LatestSnapshot()
	if err != nil {
		Logger.Error("Unable to read latest snapshot", "error", err)
		return context.JSON(http.StatusInternalServerError, apiError{Error: err.Error()})
	}
	projects, err := serverHandler.DB.GetProjects(0)
	if err != nil {
		Logger.Error("Unable to read projects", "error", err)
		return context.JSON(http.StatusInternalServerError, apiError{Error: err.Error()})
	}
	if len(projects) == 0 && serverHandler.Results != nil {
		// no index fetched yet: fall back to the projects we have results for
		projects, err = serverHandler.Results.Projects()
		if err != nil {
			Logger.Error("Unable to list result projects", "error", err)
			return context.JSON(http.StatusInternalServerError, apiError{Error: err.Error()})
		}
	}
	return context.JSON(http.StatusOK, projectList{Projects: projects, Snapshot: snapshot})
}

// SearchProjects will take the search term and search all project names
func (serverHandler *ServerHandler) SearchProjects(context echo.Context) error {
	term := strings.TrimSpace(context.QueryParam("q"))
	if term == "" {
		return context.JSON(http.StatusBadRequest, apiError{Error: "empty search term"})
	}
	if serverHandler.SearchDB == nil {
		return context.JSON(http.StatusServiceUnavailable, apiError{Error: "search is not available"})
	}
	names, err := database.SearchProjects(serverHandler.SearchDB, term, 50)
	if err != nil {
		return context.JSON(http.StatusInternalServerError, apiError{Error: err.Error()})
	}
	return context.JSON(http.StatusOK, names)
}

// GetProject lists the versions and version pairs with results
func (serverHandler *ServerHandler) GetProject(context echo.Context) error {
	project, err := serverHandler.Results.Project(context.Param("project"))
	if err != nil {
		return resultError(context, err)
	}
	return context.JSON(http.StatusOK, project)
}

// GetDistribution serves the distribution result of a version
func (serverHandler *ServerHandler) GetDistribution(context echo.Context) error {
	data, err := serverHandler.Results.Distribution(context.Param("project"), context.Param("version"))
	return serveResult(context, data, err)
}

// GetDescription serves the API description of a version
func (serverHandler *ServerHandler) GetDescription(context echo.Context) error {
	data, err := serverHandler.Results.Description(context.Param("project"), context.Param("version"))
	return serveResult(context, data, err)
}

// GetDifference serves the difference between two versions
func (serverHandler *ServerHandler) GetDifference(context echo.Context) error {
	data, err := serverHandler.Results.Difference(context.Param("project"), context.Param("old"), context.Param("new"))
	return serveResult(context, data, err)
}

// GetReport serves the report between two versions
func (serverHandler *ServerHandler) GetReport(context echo.Context) error {
	data, err := serverHandler.Results.Report(context.Param("project"), context.Param("old"), context.Param("new"))
	return serveResult(context, data, err)
}

func serveResult(context echo.Context, data json.RawMessage, err error) error {
	if err != nil {
		return resultError(context, err)
	}
	return context.JSONBlob(http.StatusOK, data)
}

func resultError(context echo.Context, err error) error {
	switch {
	case errors.Is(err, models.ErrInvalidName):
		return context.JSON(http.StatusBadRequest, apiError{Error: err.Error()})
	case errors.Is(err, models.ErrNotFound):
		return context.JSON(http.StatusNotFound, apiError{Error: err.Error()})
	default:
		Logger.Error("Unable to read result", "path", context.Request().URL.Path, "error", err)
		return context.JSON(http.StatusInternalServerError, apiError{Error: "unable to read result"})
	}
}

// RunRefreshNow triggers the index refresh manually
func (serverHandler *ServerHandler) RunRefreshNow(c echo.Context) error {
	Logger.Info("Manual index refresh triggered via API")

	// Run refresh in a goroutine so we can return immediately
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(serverHandler.ServerConfig.IndexTimeout)*time.Second*2)
		defer cancel()
		if _, err := serverHandler.RefreshIndex(ctx, true); err != nil {
			Logger.Warn("Manual index refresh failed", "error", err)
			return
		}
		Logger.Info("Manual index refresh completed")
	}()

	return c.JSON(http.StatusAccepted, map[string]string{
		"status":  "started",
		"message": "Index refresh started in background",
	})
}

// GetAboutInfo returns information about the server
func (serverHandler *ServerHandler) GetAboutInfo(c echo.Context) error {
	snapshot, err := serverHandler.DB.LatestSnapshot()
	if err != nil {
		Logger.Error("Unable to read latest snapshot", "error", err)
	}
	count, err := serverHandler.DB.CountProjects()
	if err != nil {
		Logger.Error("Unable to count projects", "error", err)
	}

	aboutInfo := map[string]interface{}{
		"name":         serverHandler.ServerConfig.AppName,
		"version":      Version,
		"databaseType": serverHandler.DB.Type(),
		"isEphemeral":  serverHandler.Ephemeral,
		"indexURL":     serverHandler.ServerConfig.IndexURL,
		"projectCount": count,
		"snapshot":     snapshot,
		"routeCount":   len(serverHandler.Routes.Routes()),
	}

	return c.JSON(http.StatusOK, aboutInfo)
}
