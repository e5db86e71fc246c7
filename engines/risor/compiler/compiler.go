// Package compiler turns chart scripts into Risor bytecode. Scripts are compiled against the
// exact set of globals a guest context will hold, so references to anything else, including
// the default Risor globals, fail at compile time.
package compiler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	risorCompiler "github.com/risor-io/risor/compiler"
	risorErrors "github.com/risor-io/risor/errz"
	risorParser "github.com/risor-io/risor/parser"
	"github.com/robbyt/go-chartbridge/bridge"
	"github.com/robbyt/go-chartbridge/engines/risor/internal"
	"github.com/robbyt/go-chartbridge/internal/helpers"
	"github.com/robbyt/go-chartbridge/platform/script/loader"
)

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
	c.logHandler, c.logger = helpers.SetupLogger(c.logHandler, "risor", "Compiler")
	return c, nil
}

func (c *Compiler) String() string {
	return fmt.Sprintf("risor.Compiler{Role: %s}", c.role)
}

// Compile loads the script and compiles it to bytecode.
func (c *Compiler) Compile(l loader.Loader) (*Executable, error) {
	logger := c.logger.WithGroup("Compile")
	if l == nil {
		return nil, ErrContentNil
	}

	src, err := loader.Load(l)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrContentNil, err)
	}

	caps, err := c.registry.Capabilities(c.role)
	if err != nil {
		return nil, err
	}
	jsonHelper := caps.JSONHelper
	if c.jsonHelper != nil {
		jsonHelper = *c.jsonHelper
	}

	code, err := compile(string(src.Body), internal.GuestNames(jsonHelper))
	if err != nil {
		logger.Warn("compile failed", "source", src.Name(), "error", err)
		return nil, err
	}
	logger.Debug("compiled", "source", src.Name(), "checksum", helpers.ShortChecksum(src.Checksum))

	return &Executable{
		source:     src,
		code:       code,
		role:       c.role,
		registry:   c.registry,
		jsonHelper: jsonHelper,
	}, nil
}

func compile(body string, globals []string) (*risorCompiler.Code, error) {
	if body == "" {
		return nil, ErrContentNil
	}

	ast, err := risorParser.Parse(context.Background(), body)
	if err != nil {
		// syntax errors read better in their friendly form
		errMsg := err.Error()
		var friendlyErr risorErrors.FriendlyError
		if errors.As(err, &friendlyErr) {
			errMsg = friendlyErr.FriendlyErrorMessage()
		}
		return nil, fmt.Errorf("%w: %s", ErrCompileFailed, errMsg)
	}

	code, err := risorCompiler.Compile(ast, risorCompiler.WithGlobalNames(globals))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompileFailed, err)
	}
	return code, nil
}
