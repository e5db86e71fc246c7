package compiler

import (
	risorCompiler "github.com/risor-io/risor/compiler"
	"github.com/robbyt/go-chartbridge/bridge"
	"github.com/robbyt/go-chartbridge/platform/script/loader"
)

// Executable is a compiled chart script. The bytecode is never mutated by the VM, so one
// Executable may back concurrent evaluations.
type Executable struct {
	source     *loader.Source
	code       *risorCompiler.Code
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

// GetByteCode returns the compiled bytecode.
func (e *Executable) GetByteCode() *risorCompiler.Code {
	return e.code
}

func (e *Executable) Role() bridge.Role          { return e.role }
func (e *Executable) Registry() *bridge.Registry { return e.registry }
func (e *Executable) JSONHelper() bool           { return e.jsonHelper }
