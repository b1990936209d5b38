package main

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// setupLogging installs charmbracelet/log as the slog default handler.
func setupLogging(level, format string) {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
	})

	if lvl, err := log.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	} else {
		logger.Warn("unknown log level, using info", "level", level)
	}

	switch strings.ToLower(format) {
	case "json":
		logger.SetFormatter(log.JSONFormatter)
	case "logfmt":
		logger.SetFormatter(log.LogfmtFormatter)
	default:
		logger.SetFormatter(log.TextFormatter)
	}

	slog.SetDefault(slog.New(logger))
}
