package compiler

import (
	"github.com/robbyt/go-chartbridge/bridge"
	"github.com/robbyt/go-chartbridge/platform/script/loader"
	starlarkLib "go.starlark.net/starlark"
)

// Executable is a compiled chart script. It holds no guest state and may be evaluated
// concurrently.
type Executable struct {
	source     *loader.Source
	program    *starlarkLib.Program
	prelude    *starlarkLib.Program
	role       bridge.Role
	registry   *bridge.Registry
	jsonHelper bool
}

// GetSource returns the script text.
func (e *Executable) GetSource() string {
	return string(e.source.Body)
}

// Checksum is the SHA-256 of the script text.
func (e *Executable) Checksum() string {
	return e.source.Checksum
}

// GetByteCode returns the compiled user program.
func (e *Executable) GetByteCode() *starlarkLib.Program {
	return e.program
}

// Prelude returns the compiled guest prelude.
func (e *Executable) Prelude() *starlarkLib.Program {
	return e.prelude
}

// Role is the role the script was compiled for.
func (e *Executable) Role() bridge.Role {
	return e.role
}

// Registry is the registry the script was compiled against.
func (e *Executable) Registry() *bridge.Registry {
	return e.registry
}

// JSONHelper reports whether the script was compiled with the JSON helper visible.
func (e *Executable) JSONHelper() bool {
	return e.jsonHelper
}
