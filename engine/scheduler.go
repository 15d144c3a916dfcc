package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Logger is global since we will need it everywhere
var Logger = slog.Default()

// InitializeSchedules starts all the cron jobs (currently just the index refresh)
func (serverHandler *ServerHandler) InitializeSchedules() *cron.Cron {
	interval := serverHandler.ServerConfig.IndexRefreshInterval
	timeout := time.Duration(serverHandler.ServerConfig.IndexTimeout) * time.Second * 2

	refreshJobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if _, err := serverHandler.RefreshIndex(ctx, false); err != nil {
			Logger.Warn("Scheduled index refresh failed", "error", err)
		}
	}

	// Run refresh job immediately at startup in a goroutine
	Logger.Info("Running index refresh at startup")
	go refreshJobFunc()

	c := cron.New()
	var refreshJob cron.Job
	refreshJob = cron.FuncJob(refreshJobFunc)
	refreshJob = cron.NewChain(cron.SkipIfStillRunning(cron.DefaultLogger)).Then(refreshJob) //ensure we don't kick off another if old one is still running
	if _, err := c.AddJob(fmt.Sprintf("@every %dm", interval), refreshJob); err != nil {
		Logger.Error("Unable to schedule index refresh", "error", err)
	}
	Logger.Info("Adding index refresh scheduler", "interval_minutes", interval)
	c.Start()
	return c
}
