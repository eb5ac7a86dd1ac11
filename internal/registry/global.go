package registry

import (
	"errors"
	"sync"

	"go.uber.org/zap"
)

var ErrInitialized = errors.New("registry already initialized")

var (
	globalMu sync.Mutex
	global   *Registry
)

// Init creates the process-wide registry. Call once at startup, pair with
// Shutdown.
func Init(log *zap.Logger) (*Registry, error) {
	globalMu.Lock()
	defer globalMu.Unlock()
	if global != nil {
		return global, ErrInitialized
	}
	global = New(log)
	return global, nil
}

// Default returns the process-wide registry. Using it before Init is a
// programming error and panics.
func Default() *Registry {
	globalMu.Lock()
	defer globalMu.Unlock()
	if global == nil {
		panic("registry: Default called before Init")
	}
	return global
}

// Shutdown clears and releases the process-wide registry. Safe to call twice.
func Shutdown() {
	globalMu.Lock()
	defer globalMu.Unlock()
	if global == nil {
		return
	}
	global.Clear()
	global = nil
}
