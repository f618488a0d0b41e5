// Package config holds the defaults shared by the command line front ends.
package config

import (
	"github.com/retroenv/retrogolib/log"
)

const (
	DefaultCyclesPerFrame = 10
	DefaultFrameRate      = 60
	DefaultScale          = 10
	DefaultStallFrames    = 120
	DefaultStatsAddr      = "localhost:12600"
)

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}
