// Package logx exposes the process-wide structured logger (spec §4.0
// Ambient: logging, mirroring core/logger.hh's singleton log()), grounded
// on the pack's own zerolog usage in
// other_examples/freeeve-chessgraph__router_tablebase.go.
package logx

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu     sync.RWMutex
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
)

// Log returns the process-wide logger.
func Log() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// SetLogger replaces the process-wide logger.
func SetLogger(l zerolog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	logger = l
}
