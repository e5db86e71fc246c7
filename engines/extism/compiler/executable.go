package compiler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/robbyt/go-chartbridge/bridge"
	"github.com/robbyt/go-chartbridge/engines/extism/adapters"
	"github.com/robbyt/go-chartbridge/platform/script/loader"
)

var ErrExecutableClosed = errors.New("executable is closed")

// Executable is a compiled WASM chart module. Each evaluation creates its own plugin
// instance from it.
type Executable struct {
	source     *loader.Source
	plugin     adapters.CompiledPlugin
	entryPoint string
	role       bridge.Role
	registry   *bridge.Registry
	jsonHelper bool

	closed  atomic.Bool
	rwMutex sync.RWMutex
}

// NewExecutable assembles an Executable from an already compiled plugin. It returns nil when
// any part is missing.
func NewExecutable(
	source *loader.Source,
	plugin adapters.CompiledPlugin,
	entryPoint string,
	role bridge.Role,
	registry *bridge.Registry,
	jsonHelper bool,
) *Executable {
	if source == nil || len(source.Body) == 0 || plugin == nil || entryPoint == "" || registry == nil {
		return nil
	}
	return &Executable{
		source:     source,
		plugin:     plugin,
		entryPoint: entryPoint,
		role:       role,
		registry:   registry,
		jsonHelper: jsonHelper,
	}
}

// GetSource returns the module bytes as a string.
func (e *Executable) GetSource() string {
	return string(e.source.Body)
}

// Checksum is the SHA-256 of the module bytes.
func (e *Executable) Checksum() string {
	return e.source.Checksum
}

// GetExtismByteCode returns the compiled plugin, or nil after Close.
func (e *Executable) GetExtismByteCode() adapters.CompiledPlugin {
	e.rwMutex.RLock()
	defer e.rwMutex.RUnlock()
	if e.closed.Load() {
		return nil
	}
	return e.plugin
}

// GetEntryPoint returns the name of the entry point function
func (e *Executable) GetEntryPoint() string {
	return e.entryPoint
}

func (e *Executable) Role() bridge.Role          { return e.role }
func (e *Executable) Registry() *bridge.Registry { return e.registry }
func (e *Executable) JSONHelper() bool           { return e.jsonHelper }

// Close releases the compiled module. It is safe to call more than once.
func (e *Executable) Close(ctx context.Context) error {
	e.rwMutex.Lock()
	defer e.rwMutex.Unlock()

	if e.closed.CompareAndSwap(false, true) {
		return e.plugin.Close(ctx)
	}
	return nil
}
