package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aexpy/aexpyweb/database"
)

// ErrRefreshRunning is returned when a refresh is requested while one is in progress
var ErrRefreshRunning = errors.New("index refresh already running")

// IndexFetcher downloads the list of project names
type IndexFetcher interface {
	Fetch(ctx context.Context) ([]string, error)
}

// refreshState guards against overlapping refreshes started from the API and the scheduler
type refreshState struct {
	mu      sync.Mutex
	running bool
}

func (r *refreshState) begin() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running {
		return false
	}
	r.running = true
	return true
}

func (r *refreshState) end() {
	r.mu.Lock()
	r.running = false
	r.mu.Unlock()
}

// RefreshIndex fetches the project index and stores it as a new snapshot.
// Unless force or IndexRedo is set, a snapshot younger than the refresh
// interval is kept and nothing is fetched.
func (serverHandler *ServerHandler) RefreshIndex(ctx context.Context, force bool) (snapshot *database.Snapshot, err error) {
	// Add panic recovery so a bad index page cannot take the scheduler down
	defer func() {
		if r := recover(); r != nil {
			Logger.Error("Panic recovered in index refresh", "panic", r)
			snapshot = nil
			err = fmt.Errorf("index refresh panicked: %v", r)
		}
	}()

	if !serverHandler.refresh.begin() {
		return nil, ErrRefreshRunning
	}
	defer serverHandler.refresh.end()

	latest, err := serverHandler.DB.LatestSnapshot()
	if err != nil {
		Logger.Error("Error reading latest snapshot", "error", err)
		return nil, err
	}
	interval := time.Duration(serverHandler.ServerConfig.IndexRefreshInterval) * time.Minute
	if latest != nil && !force && !serverHandler.ServerConfig.IndexRedo && serverHandler.now().Sub(latest.FetchedAt) < interval {
		Logger.Info("Project index is fresh, skipping refresh", "snapshot", latest.ULID.String(), "fetchedAt", latest.FetchedAt)
		return latest, nil
	}

	Logger.Info("Starting project index refresh", "url", serverHandler.ServerConfig.IndexURL)
	names, err := serverHandler.Fetcher.Fetch(ctx)
	if err != nil {
		Logger.Error("Failed to request index, keeping previous snapshot", "error", err)
		return latest, err
	}
	if len(names) == 0 && latest != nil && latest.ProjectCount > 0 {
		Logger.Warn("Fetched index is empty, keeping previous snapshot", "snapshot", latest.ULID.String())
		return latest, nil
	}

	previous, err := serverHandler.DB.GetProjects(0)
	if err != nil {
		Logger.Error("Error reading current projects", "error", err)
		return latest, err
	}
	snapshot = database.NewSnapshot(serverHandler.ServerConfig.IndexURL, serverHandler.now())
	if err := serverHandler.DB.SaveSnapshot(snapshot, names); err != nil {
		Logger.Error("Failed to save index snapshot", "error", err)
		return latest, err
	}
	if serverHandler.SearchDB != nil {
		if err := database.SyncSearchIndex(serverHandler.SearchDB, previous, names); err != nil {
			Logger.Error("Failed to update search index", "error", err)
			return snapshot, err
		}
	}
	Logger.Info("Project index refreshed", "snapshot", snapshot.ULID.String(), "projects", snapshot.ProjectCount)
	return snapshot, nil
}

func (serverHandler *ServerHandler) now() time.Time {
	if serverHandler.Clock != nil {
		return serverHandler.Clock()
	}
	return time.Now()
}
