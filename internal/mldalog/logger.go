// Package mldalog builds the logrus logger used throughout the sampler,
// configured from the sampler's own logger settings rather than a global.
package mldalog

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Config mirrors spec.md §6's logger settings: whether to print at all, a
// log file path, a separate debug file path, and the file open mode.
type Config struct {
	DoPrinting bool
	LogFile    string
	DebugFile  string
	// WriteMode is "w" to truncate or "a" to append on each run.
	WriteMode string
}

// New builds a *logrus.Logger per cfg. When DoPrinting is false the logger
// discards everything; otherwise it writes structured fields to LogFile
// (falling back to stderr if LogFile is empty) at info level.
func New(cfg Config) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	if !cfg.DoPrinting {
		logger.SetOutput(io.Discard)
		return logger, nil
	}

	if cfg.LogFile == "" {
		logger.SetOutput(os.Stderr)
		return logger, nil
	}

	flags := os.O_CREATE | os.O_WRONLY
	if cfg.WriteMode == "a" {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	file, err := os.OpenFile(cfg.LogFile, flags, 0o644)
	if err != nil {
		return nil, err
	}
	logger.SetOutput(file)
	return logger, nil
}

// OpenDebugFile opens cfg.DebugFile for the tree-export diagnostics
// written on fatal error, honoring the same write mode as the main log.
// It returns (nil, nil) when no debug file is configured.
func OpenDebugFile(cfg Config) (*os.File, error) {
	if cfg.DebugFile == "" {
		return nil, nil
	}
	flags := os.O_CREATE | os.O_WRONLY
	if cfg.WriteMode == "a" {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	return os.OpenFile(cfg.DebugFile, flags, 0o644)
}
