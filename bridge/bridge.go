package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"time"

	"github.com/robbyt/go-chartbridge/bridge/marshal"
	"github.com/robbyt/go-chartbridge/internal/helpers"
)

// Bridge is the set of bindings for one guest context. It is built for exactly one role and
// one adapter and must not be shared between concurrently running guests.
type Bridge struct {
	role       Role
	bindings   []Binding
	index      map[string]int
	jsonHelper bool

	observer Observer
	logger   *slog.Logger
}

// New consults the registry for role and binds every granted operation to api. Optional
// operations the adapter does not implement are left out. A granted tier whose interface
// the adapter lacks is a configuration error.
func New(role Role, api HostAPI, opts ...Option) (*Bridge, error) {
	cfg := &config{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, fmt.Errorf("error applying option: %w", err)
		}
	}
	if cfg.registry == nil {
		cfg.registry = DefaultRegistry()
	}
	if cfg.observer == nil {
		cfg.observer = nopObserver{}
	}
	if isNilAdapter(api) {
		return nil, ErrNilAdapter
	}

	caps, err := cfg.registry.Capabilities(role)
	if err != nil {
		return nil, err
	}

	_, logger := helpers.SetupLogger(cfg.handler, "bridge", "Bridge")
	logger = logger.With("role", role)

	b := &Bridge{
		role:       role,
		index:      make(map[string]int, len(caps.Operations)),
		jsonHelper: caps.JSONHelper,
		observer:   cfg.observer,
		logger:     logger,
	}
	if cfg.jsonHelper != nil {
		b.jsonHelper = *cfg.jsonHelper
	}

	for _, op := range caps.Operations {
		binding, err := b.bind(op, api)
		if errors.Is(err, errUnavailable) {
			logger.Debug("optional operation not provided by adapter", "op", op.Name)
			continue
		}
		if err != nil {
			return nil, err
		}
		b.index[binding.Name] = len(b.bindings)
		b.bindings = append(b.bindings, binding)
	}

	for _, name := range cfg.required {
		if !cfg.registry.Has(role, name) {
			return nil, fmt.Errorf("%w: %s is not available to role %s",
				ErrCapabilityNotGranted, name, role)
		}
		if !b.HasOperation(name) {
			return nil, fmt.Errorf("%w: %s required for role %s",
				ErrMissingCapability, name, role)
		}
	}

	logger.Debug("bridge ready", "operations", len(b.bindings), "jsonHelper", b.jsonHelper)
	return b, nil
}

// isNilAdapter also catches a typed nil pointer wrapped in the interface, which would
// otherwise fail later when the constants are read.
func isNilAdapter(api HostAPI) bool {
	if api == nil {
		return true
	}
	v := reflect.ValueOf(api)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}

func (b *Bridge) bind(op Operation, api HostAPI) (Binding, error) {
	binding := Binding{Op: op, Name: op.WireName()}

	if op.Direction == DirectionConstant {
		value, ok := constants[op.Name]
		if !ok {
			return Binding{}, fmt.Errorf("%w: %q", ErrUnknownOperation, op.Name)
		}
		binding.Value = value(api)
		return binding, nil
	}

	build, ok := binders[op.Name]
	if !ok {
		return Binding{}, fmt.Errorf("%w: %q", ErrUnknownOperation, op.Name)
	}
	h, err := build(api)
	if err != nil {
		if errors.Is(err, errUnavailable) && op.Optional {
			return Binding{}, errUnavailable
		}
		return Binding{}, fmt.Errorf("%w: %s for role %s", ErrMissingCapability, op.Name, b.role)
	}
	binding.Call = b.wrap(op, h)
	return binding, nil
}

// wrap applies the calling convention around a handler: arity checks, failure
// classification, logging and observation.
func (b *Bridge) wrap(op Operation, h handler) CallFunc {
	return func(ctx context.Context, args ...marshal.Payload) (marshal.Payload, error) {
		start := time.Now()
		out, err := b.invoke(ctx, op, h, args)
		elapsed := time.Since(start)

		b.observer.ObserveCall(b.role, op.Name, elapsed, err)
		if err != nil {
			b.logger.WarnContext(ctx, "bridge call failed", "op", op.Name, "error", err)
			return marshal.Absent(), err
		}
		b.logger.DebugContext(ctx, "bridge call", "op", op.Name, "elapsed", elapsed)
		return out, nil
	}
}

func (b *Bridge) invoke(
	ctx context.Context,
	op Operation,
	h handler,
	args []marshal.Payload,
) (marshal.Payload, error) {
	if len(args) > len(op.Args) {
		return marshal.Absent(), marshalError(op.Name,
			fmt.Errorf("takes at most %d arguments, got %d", len(op.Args), len(args)))
	}

	padded := make([]marshal.Payload, len(op.Args))
	copy(padded, args)
	for i, arg := range op.Args {
		// an empty JSON argument carries no value, the same as an omitted one
		if arg.Shape == marshal.ShapeJSON && !padded[i].IsAbsent() && padded[i].String() == "" {
			padded[i] = marshal.Absent()
		}
		if !arg.Optional && padded[i].IsAbsent() {
			return marshal.Absent(), marshalError(op.Name,
				fmt.Errorf("missing required argument %q", arg.Name))
		}
	}

	out, err := h(ctx, padded)
	if err == nil {
		return out, nil
	}

	var de decodeError
	if errors.As(err, &de) {
		return marshal.Absent(), marshalError(op.Name, de.err)
	}
	return marshal.Absent(), hostError(op.Name, err)
}

// Role returns the role the bridge was built for.
func (b *Bridge) Role() Role {
	return b.role
}

// JSONHelper reports whether user scripts may see the JSON helper.
func (b *Bridge) JSONHelper() bool {
	return b.jsonHelper
}

// Bindings returns the installed bindings in registry order.
func (b *Bridge) Bindings() []Binding {
	return slices.Clone(b.bindings)
}

// Names returns the installed wire names in registry order.
func (b *Bridge) Names() []string {
	names := make([]string, len(b.bindings))
	for i, binding := range b.bindings {
		names[i] = binding.Name
	}
	return names
}

// Operations returns the installed logical operation names in registry order.
func (b *Bridge) Operations() []string {
	names := make([]string, len(b.bindings))
	for i, binding := range b.bindings {
		names[i] = binding.Op.Name
	}
	return names
}

// HasOperation reports whether the logical operation was installed.
func (b *Bridge) HasOperation(name string) bool {
	return slices.ContainsFunc(b.bindings, func(binding Binding) bool {
		return binding.Op.Name == name
	})
}

// Lookup returns the binding installed under a wire name.
func (b *Bridge) Lookup(wireName string) (Binding, bool) {
	i, ok := b.index[wireName]
	if !ok {
		return Binding{}, false
	}
	return b.bindings[i], true
}

// Call invokes the logical operation by name. It is a convenience for hosts and tests; guests
// go through the bindings.
func (b *Bridge) Call(ctx context.Context, name string, args ...marshal.Payload) (marshal.Payload, error) {
	for _, binding := range b.bindings {
		if binding.Op.Name != name {
			continue
		}
		if binding.IsConstant() {
			return marshal.Raw(binding.Value), nil
		}
		return binding.Call(ctx, args...)
	}
	return marshal.Absent(), fmt.Errorf("%w: %s is not installed for role %s",
		ErrCapabilityNotGranted, name, b.role)
}
