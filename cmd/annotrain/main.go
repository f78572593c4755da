package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/ehsaniara/annotrain/internal/modes"
	"github.com/ehsaniara/annotrain/pkg/config"
	"github.com/ehsaniara/annotrain/pkg/logger"
)

func main() {
	cfg, path, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	closeLog := initializeLogging(cfg)
	defer closeLog()

	mainLogger := logger.WithField("component", "main")
	mainLogger.Debug("configuration loaded", "path", path, "logLevel", cfg.Logging.Level)

	if err := modes.RunServer(cfg); err != nil {
		mainLogger.Error("annotrain failed", "error", err)
		closeLog()
		os.Exit(1)
	}
}

// initializeLogging configures the global logger and returns a function
// closing the log file, if any.
func initializeLogging(cfg *config.Config) func() {
	level, err := logger.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Printf("Invalid log level '%s', using INFO", cfg.Logging.Level)
		level = logger.INFO
	}

	lc := logger.Config{Level: level, Format: cfg.Logging.Format, Output: os.Stdout, Mode: "server"}
	closeFn := func() {}

	if cfg.Logging.Output != "stdout" && cfg.Logging.Output != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Logging.Output), 0755); err != nil {
			log.Printf("Failed to setup log file, using stdout: %v", err)
		} else if f, err := os.OpenFile(cfg.Logging.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			log.Printf("Failed to open log file, using stdout: %v", err)
		} else {
			lc.Output = f
			closeFn = func() { _ = f.Close() }
		}
	}

	logger.Configure(lc)
	return closeFn
}
