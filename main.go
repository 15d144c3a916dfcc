package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/blevesearch/bleve"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	config "github.com/aexpy/aexpyweb/config"
	database "github.com/aexpy/aexpyweb/database"
	engine "github.com/aexpy/aexpyweb/engine"
	"github.com/aexpy/aexpyweb/models"
	"github.com/aexpy/aexpyweb/pypi"
	"github.com/aexpy/aexpyweb/router"
	"github.com/aexpy/aexpyweb/webapp"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// injectGlobals injects all of our globals into their packages
func injectGlobals(logger *slog.Logger) {
	Logger = logger
	database.Logger = Logger
	config.Logger = Logger
	engine.Logger = Logger
	pypi.Logger = Logger
	webapp.Logger = Logger
}

// newServerHandler wires the stores, the route table and the index fetcher together
func newServerHandler(serverConfig config.ServerConfig, db database.DBInterface, searchDB bleve.Index, e *echo.Echo) *engine.ServerHandler {
	return &engine.ServerHandler{
		DB:           db,
		SearchDB:     searchDB,
		Echo:         e,
		ServerConfig: serverConfig,
		Routes:       router.AppTable(),
		Results:      models.NewRepository(serverConfig.DataPath),
		Fetcher:      pypi.NewFetcher(serverConfig.IndexURL, time.Duration(serverConfig.IndexTimeout)*time.Second),
	}
}

// registerRoutes adds the API, the static assets and the web app to echo
func registerRoutes(e *echo.Echo, serverHandler *engine.ServerHandler, appHandler http.Handler) {
	e.Use(middleware.CORSWithConfig(middleware.DefaultCORSConfig))

	//Start the API routes
	serverHandler.RegisterRoutes(e)

	// Serve wasm_exec.js (go-app expects it here)
	e.GET("/wasm_exec.js", func(c echo.Context) error {
		return c.File("web/wasm_exec.js")
	})

	// Register go-app specific resources
	e.GET("/app.js", echo.WrapHandler(appHandler))
	e.GET("/app.css", echo.WrapHandler(appHandler))
	e.GET("/manifest.webmanifest", echo.WrapHandler(appHandler))

	// Serve static assets
	e.Static("/web", "web")
	e.Static(webapp.IconsURL, serverHandler.ServerConfig.IconPath)
	e.File("/webapp/webapp.css", "webapp/webapp.css")

	// Serve go-app handler for all other routes (must be last)
	e.Any("/*", echo.WrapHandler(appHandler))
}

func main() {
	// Parse command-line flags
	devMode := flag.Bool("dev", false, "Run in development mode with ephemeral PostgreSQL")
	flag.Parse()

	serverConfig, logger := config.SetupServer()
	injectGlobals(logger) //inject the logger into all of the packages

	// Setup database based on dev mode or configuration
	var db database.DBInterface
	if *devMode {
		fmt.Println("\n" + strings.Repeat("=", 50))
		fmt.Println("🚀  DEVELOPMENT MODE - Ephemeral PostgreSQL")
		fmt.Println(strings.Repeat("=", 50))
		fmt.Println("• Database will be destroyed on exit")
		fmt.Println("• The project index is fetched again at startup")
		fmt.Println(strings.Repeat("=", 50) + "\n")

		Logger.Info("Starting ephemeral PostgreSQL for development")
		ephemeralDB, err := database.SetupEphemeralPostgresDatabase()
		if err != nil {
			Logger.Error("Failed to setup ephemeral PostgreSQL", "error", err)
			os.Exit(1)
		}
		db = ephemeralDB
		// Ensure cleanup happens on exit
		defer func() {
			Logger.Info("Shutting down ephemeral PostgreSQL...")
			ephemeralDB.Close()
		}()
	} else {
		Logger.Info("About to setup database", "type", serverConfig.DatabaseType)
		var err error
		db, err = database.SetupDatabase(serverConfig.DatabaseType, serverConfig.DatabaseConnString, serverConfig.SQLitePath)
		if err != nil {
			Logger.Error("Unable to setup database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
	}
	Logger.Info("Database setup complete, about to setup search DB")
	searchDB, err := database.SetupSearchDB(serverConfig.SearchIndexPath)
	if err != nil {
		Logger.Error("Unable to setup search database", "error", err)
		os.Exit(1)
	}
	Logger.Info("Search DB setup complete")
	defer searchDB.Close()

	icons, err := webapp.GenerateIcons(serverConfig.LogoPath, serverConfig.IconPath)
	if err != nil {
		Logger.Error("Unable to generate icons", "error", err)
		os.Exit(1)
	}

	e := echo.New()
	Logger.Info("Echo created")
	serverHandler := newServerHandler(serverConfig, db, searchDB, e) //injecting the stores into the handler for routes
	serverHandler.Ephemeral = *devMode
	Logger.Info("About to initialize schedules")
	scheduler := serverHandler.InitializeSchedules() //initialize all the cron jobs
	defer scheduler.Stop()

	Logger.Info("Setting up go-app WASM UI")
	appHandler := webapp.Handler(serverConfig.FrontEndConfig, icons)
	registerRoutes(e, serverHandler, appHandler)

	if serverConfig.ListenAddrIP == "" {
		Logger.Info("No Ip Addr set, binding on ALL addresses")
	}

	Logger.Info("Starting HTTP server")

	// Try to start server with automatic port increment if port is in use
	maxRetries := 5
	startPort := serverConfig.ListenAddrPort
	var startErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		addr := fmt.Sprintf("%s:%s", serverConfig.ListenAddrIP, serverConfig.ListenAddrPort)
		Logger.Info("Attempting to start server", "address", addr, "attempt", attempt+1)

		startErr = e.Start(addr)

		// Check if error is "address already in use"
		if startErr != nil && isAddressInUse(startErr) {
			Logger.Warn("Port already in use, trying next port",
				"port", serverConfig.ListenAddrPort,
				"attempt", attempt+1,
				"max_attempts", maxRetries)

			// Increment port for next attempt
			portNum := 0
			fmt.Sscanf(serverConfig.ListenAddrPort, "%d", &portNum)
			portNum++
			serverConfig.ListenAddrPort = fmt.Sprintf("%d", portNum)

			if attempt == maxRetries-1 {
				Logger.Error("Failed to find available port after maximum retries",
					"start_port", startPort,
					"end_port", serverConfig.ListenAddrPort,
					"max_retries", maxRetries)
				os.Exit(1)
			}
		} else if startErr != nil && startErr != http.ErrServerClosed {
			// Some other error occurred
			Logger.Error("Failed to start server", "error", startErr)
			os.Exit(1)
		} else {
			break
		}
	}

	if serverConfig.ListenAddrPort != startPort {
		Logger.Warn("Server started on alternative port due to conflicts",
			"requested_port", startPort,
			"actual_port", serverConfig.ListenAddrPort)
	}
}

// isAddressInUse checks if the error is due to address already in use
func isAddressInUse(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "address already in use")
}
