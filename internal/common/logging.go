// Package common provides shared utilities for Dojo
package common

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"
)

// NewLogger builds an arbor logger from the logging configuration.
// Outputs may contain "console" (or "stdout") and "file".
func NewLogger(config LoggingConfig) arbor.ILogger {
	logger := arbor.NewLogger()

	for _, output := range config.Outputs {
		switch output {
		case "console", "stdout":
			logger = logger.WithConsoleWriter(models.WriterConfiguration{
				Type:             models.LogWriterTypeConsole,
				TimeFormat:       "15:04:05",
				DisableTimestamp: false,
			})
		case "file":
			path := config.FilePath
			if path == "" {
				path = "./logs/dojo.log"
			}
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to create log directory: %v\n", err)
				continue
			}
			logger = logger.WithFileWriter(models.WriterConfiguration{
				Type:             models.LogWriterTypeFile,
				FileName:         path,
				TimeFormat:       "15:04:05",
				MaxSize:          100 * 1024 * 1024, // 100 MB
				MaxBackups:       3,
				DisableTimestamp: false,
			})
		}
	}

	level := config.Level
	if level == "" {
		level = "info"
	}
	return logger.WithLevelFromString(level)
}

// NewSilentLogger returns a logger with no writers attached
func NewSilentLogger() arbor.ILogger {
	return arbor.NewLogger()
}
