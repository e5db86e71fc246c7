// Package compiler turns chart scripts into Starlark programs that can be run by many guest
// contexts. The guest prelude is compiled once per process.
package compiler

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/robbyt/go-chartbridge/bridge"
	"github.com/robbyt/go-chartbridge/bridge/prelude"
	"github.com/robbyt/go-chartbridge/engines/starlark/internal"
	"github.com/robbyt/go-chartbridge/internal/helpers"
	"github.com/robbyt/go-chartbridge/platform/constants"
	"github.com/robbyt/go-chartbridge/platform/script/loader"
	starlarkLib "go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
}

var compilePrelude = sync.OnceValues(func() (*starlarkLib.Program, error) {
	predeclared := starlarkLib.StringDict{
		prelude.BridgeGlobal: starlarkLib.None,
		prelude.JSONGlobal:   starlarkLib.None,
		prelude.NoJSONGlobal: starlarkLib.None,
		prelude.StructGlobal: starlarkLib.None,
	}
	prog, err := compile(prelude.Filename, []byte(prelude.Source()), predeclared.Has)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPrelude, err)
	}
	return prog, nil
})

// Compiler compiles chart scripts for one role.
type Compiler struct {
	role       bridge.Role
	registry   *bridge.Registry
	jsonHelper *bool

	logHandler slog.Handler
	logger     *slog.Logger
}

// New creates a Compiler for role.
func New(role bridge.Role, opts ...FunctionalOption) (*Compiler, error) {
	c := &Compiler{role: role}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("error applying option: %w", err)
		}
	}
	if c.registry == nil {
		c.registry = bridge.DefaultRegistry()
	}
	if _, err := c.registry.Capabilities(role); err != nil {
		return nil, err
	}
	c.logHandler, c.logger = helpers.SetupLogger(c.logHandler, "starlark", "Compiler")
	return c, nil
}

func (c *Compiler) String() string {
	return fmt.Sprintf("starlark.Compiler{Role: %s}", c.role)
}

// Compile loads the script and compiles it against the names the guest context will
// predeclare: the prelude exports, ctx and the safe modules.
func (c *Compiler) Compile(l loader.Loader) (*Executable, error) {
	logger := c.logger.WithGroup("Compile")
	if l == nil {
		return nil, ErrContentNil
	}

	src, err := loader.Load(l)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrContentNil, err)
	}

	preludeProg, err := compilePrelude()
	if err != nil {
		return nil, err
	}

	caps, err := c.registry.Capabilities(c.role)
	if err != nil {
		return nil, err
	}
	jsonHelper := caps.JSONHelper
	if c.jsonHelper != nil {
		jsonHelper = *c.jsonHelper
	}

	names := c.predeclared(jsonHelper)
	prog, err := compile(src.Name(), src.Body, func(name string) bool {
		_, ok := names[name]
		return ok
	})
	if err != nil {
		logger.Warn("compile failed", "source", src.Name(), "error", err)
		return nil, err
	}
	logger.Debug("compiled", "source", src.Name(), "checksum", helpers.ShortChecksum(src.Checksum))

	return &Executable{
		source:     src,
		program:    prog,
		prelude:    preludeProg,
		role:       c.role,
		registry:   c.registry,
		jsonHelper: jsonHelper,
	}, nil
}

func (c *Compiler) predeclared(jsonHelper bool) map[string]struct{} {
	names := map[string]struct{}{constants.Ctx: {}}
	for name := range internal.StarlarkModules(jsonHelper) {
		names[name] = struct{}{}
	}
	for _, name := range prelude.Exports() {
		if name == prelude.JSONHelper && !jsonHelper {
			continue
		}
		names[name] = struct{}{}
	}
	return names
}

func compile(
	filename string,
	body []byte,
	isPredeclared func(string) bool,
) (*starlarkLib.Program, error) {
	if body == nil {
		return nil, ErrContentNil
	}
	f, err := fileOptions.Parse(filename, body, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompileFailed, err)
	}
	prog, err := starlarkLib.FileProgram(f, isPredeclared)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompileFailed, err)
	}
	return prog, nil
}
