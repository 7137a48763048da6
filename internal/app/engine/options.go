package engine

import (
	"io"
	"os"
	"time"
)

// Options represents configuration options for the Engine.
type Options struct {
	SnapshotInterval time.Duration
	RenderWriter     io.Writer
}

// DefaultEngineOptions returns the default engine options.
func DefaultEngineOptions() *Options {
	return &Options{
		SnapshotInterval: 30 * time.Second,
		RenderWriter:     os.Stdout,
	}
}
