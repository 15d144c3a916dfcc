package webapp

import (
	"sync"

	"github.com/maxence-charriere/go-app/v10/pkg/app"
)

// State keys shared between components
const (
	stateProjects = "aexpy.projects"
	stateAbout    = "aexpy.about"
)

// ProjectIndex is the project list loaded once per client
type ProjectIndex struct {
	Projects []string `json:"projects"`
	Snapshot *struct {
		ID           string `json:"id"`
		FetchedAt    string `json:"fetchedAt"`
		ProjectCount int    `json:"projectCount"`
	} `json:"snapshot"`
	Error string `json:"-"`
}

// AboutInfo mirrors /api/about
type AboutInfo struct {
	Name         string `json:"name"`
	Version      string `json:"version"`
	DatabaseType string `json:"databaseType"`
	IsEphemeral  bool   `json:"isEphemeral"`
	IndexURL     string `json:"indexURL"`
	ProjectCount int    `json:"projectCount"`
	RouteCount   int    `json:"routeCount"`
}

var loadOnce sync.Once

// LoadPublicModels fetches the models every view can use, once per client
func LoadPublicModels(ctx app.Context) {
	loadOnce.Do(func() {
		reloadProjects(ctx)
		fetchAPI(ctx, "GET", "/api/about", func(ctx app.Context, res apiResponse) {
			var about AboutInfo
			if err := res.Decode(&about); err != nil {
				app.Log("unable to load server info:", err)
				return
			}
			ctx.SetState(stateAbout, about)
		})
	})
}

// reloadProjects refreshes the shared project list
func reloadProjects(ctx app.Context) {
	fetchAPI(ctx, "GET", "/api/projects", func(ctx app.Context, res apiResponse) {
		var index ProjectIndex
		if err := res.Decode(&index); err != nil {
			index.Error = err.Error()
		}
		ctx.SetState(stateProjects, index)
	})
}
