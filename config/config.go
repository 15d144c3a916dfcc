package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Logger is global since we will need it everywhere
var Logger *slog.Logger

// ServerConfig contains all of the server settings defined in the TOML file
type ServerConfig struct {
	ListenAddrIP         string
	ListenAddrPort       string
	DatabaseType         string // "sqlite" or "postgres"
	DatabaseConnString   string
	SQLitePath           string
	SearchIndexPath      string
	DataPath             string //absolute path to the processed results (distributing, extracting, diffing, reporting)
	IndexURL             string
	IndexRefreshInterval int //minutes
	IndexRedo            bool
	IndexTimeout         int //seconds
	UseReverseProxy      bool
	BaseURL              string
	FrontEndConfig
}

// FrontEndConfig stores all of the frontend settings
type FrontEndConfig struct {
	AppName     string
	Description string
	LogoPath    string
	IconPath    string //directory generated icons are written to
	StylePath   string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("serverConfig.ServerAddr", "")
	v.SetDefault("serverConfig.ServerPort", "8000")
	v.SetDefault("database.Type", "sqlite")
	v.SetDefault("database.ConnString", "")
	v.SetDefault("database.SQLitePath", "databases/aexpy.db")
	v.SetDefault("database.SearchIndexPath", "databases/projects.bleve")
	v.SetDefault("data.DataPath", "data")
	v.SetDefault("index.URL", "https://pypi.org/simple/")
	v.SetDefault("index.RefreshInterval", 720)
	v.SetDefault("index.Redo", false)
	v.SetDefault("index.Timeout", 60)
	v.SetDefault("reverseProxy.ProxyEnabled", false)
	v.SetDefault("reverseProxy.BaseURL", "")
	v.SetDefault("frontend.AppName", "AexPy")
	v.SetDefault("frontend.Description", "API evolution of Python packages")
	v.SetDefault("frontend.LogoPath", "web/logo.png")
	v.SetDefault("frontend.IconPath", "web/icons")
	v.SetDefault("frontend.StylePath", "/webapp/webapp.css")
	v.SetDefault("logging.Level", "warn")
	v.SetDefault("logging.OutputPath", "stdout")
	v.SetDefault("logging.LogFileLocation", "aexpy.log")
}

// SetupServer does the initial configuration
func SetupServer() (ServerConfig, *slog.Logger) {
	v := viper.New()
	v.AddConfigPath("config/")
	v.AddConfigPath(".")
	v.SetConfigName("serverConfig")
	v.SetEnvPrefix("AEXPY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	err := v.ReadInConfig() // Find and read the config file
	var notFound viper.ConfigFileNotFoundError
	if err != nil && !errors.As(err, &notFound) { // a broken file is fatal, a missing one is not
		panic(fmt.Errorf("fatal error config file: %s \n", err))
	}
	logger := setupLogging(v)
	if err != nil {
		logger.Warn("No serverConfig file found, using defaults")
	} else {
		logger.Info("Config file loaded", "file", v.ConfigFileUsed())
	}
	return Load(v, logger), logger
}

// Load builds a ServerConfig from an already populated viper instance
func Load(v *viper.Viper, logger *slog.Logger) ServerConfig {
	var serverConfigLive ServerConfig
	serverConfigLive.ListenAddrIP = v.GetString("serverConfig.ServerAddr")
	serverConfigLive.ListenAddrPort = v.GetString("serverConfig.ServerPort")
	serverConfigLive.DatabaseType = strings.ToLower(v.GetString("database.Type"))
	serverConfigLive.DatabaseConnString = v.GetString("database.ConnString")
	serverConfigLive.SQLitePath = absPath(v.GetString("database.SQLitePath"), logger)
	serverConfigLive.SearchIndexPath = absPath(v.GetString("database.SearchIndexPath"), logger)
	serverConfigLive.DataPath = absPath(v.GetString("data.DataPath"), logger)
	serverConfigLive.IndexURL = v.GetString("index.URL")
	serverConfigLive.IndexRefreshInterval = v.GetInt("index.RefreshInterval")
	if serverConfigLive.IndexRefreshInterval <= 0 {
		logger.Warn("Invalid index refresh interval, falling back to 12 hours", "interval", serverConfigLive.IndexRefreshInterval)
		serverConfigLive.IndexRefreshInterval = 720
	}
	serverConfigLive.IndexRedo = v.GetBool("index.Redo")
	serverConfigLive.IndexTimeout = v.GetInt("index.Timeout")
	serverConfigLive.UseReverseProxy = v.GetBool("reverseProxy.ProxyEnabled")
	serverConfigLive.BaseURL = v.GetString("reverseProxy.BaseURL")
	serverConfigLive.FrontEndConfig = FrontEndConfig{
		AppName:     v.GetString("frontend.AppName"),
		Description: v.GetString("frontend.Description"),
		LogoPath:    v.GetString("frontend.LogoPath"),
		IconPath:    v.GetString("frontend.IconPath"),
		StylePath:   v.GetString("frontend.StylePath"),
	}
	logger.Debug("Server config loaded", "database", serverConfigLive.DatabaseType, "data", serverConfigLive.DataPath)
	return serverConfigLive
}

// Defaults returns the configuration used when no file is present
func Defaults(logger *slog.Logger) ServerConfig {
	v := viper.New()
	setDefaults(v)
	return Load(v, logger)
}

func absPath(path string, logger *slog.Logger) string {
	abs, err := filepath.Abs(filepath.ToSlash(path)) //Converting to an absolute file path
	if err != nil {
		logger.Error("Failed creating absolute path", "path", path, "error", err)
		return path
	}
	return abs
}

func setupLogging(v *viper.Viper) *slog.Logger {
	loglevel := ParseLevel(v.GetString("logging.Level"))

	var logWriter io.Writer
	logOutput := v.GetString("logging.OutputPath")
	if logOutput == "file" {
		logPath, err := filepath.Abs(filepath.ToSlash(v.GetString("logging.LogFileLocation")))
		if err != nil {
			fmt.Println("Unable to create log file path: ", err)
			logPath = "output.log"
		}
		logFile, err := os.Create(logPath)
		if err != nil {
			fmt.Println("Unable to create log file: ", err)
			logWriter = os.Stdout
		} else {
			logWriter = logFile
			fmt.Println("Logging to file: ", logPath)
		}
	} else {
		logWriter = os.Stdout
	}

	opts := &slog.HandlerOptions{
		Level: loglevel,
	}
	handler := slog.NewTextHandler(logWriter, opts)
	return slog.New(handler)
}

// ParseLevel maps the configured level name to a slog level, warn by default
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
