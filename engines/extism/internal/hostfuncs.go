package internal

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	extismSDK "github.com/extism/go-sdk"
	"github.com/robbyt/go-chartbridge/bridge"
	"github.com/robbyt/go-chartbridge/bridge/marshal"
)

// Namespace is the import module guests use for every chart operation.
const Namespace = "extism:host/user"

// Config keys set next to the constant bindings, which use their wire names.
const (
	ConfigRole       = "chartbridge.role"
	ConfigOperations = "chartbridge.operations"
	ConfigJSONHelper = "chartbridge.json_helper"
)

var (
	// ErrNoBridge means a host function ran outside an evaluation.
	ErrNoBridge = errors.New("no bridge bound to the call context")
	// ErrNotInstalled means the guest imported an operation the current adapter lacks.
	ErrNotInstalled = errors.New("operation not installed")
)

type bridgeKey struct{}

// WithBridge binds b to ctx. Host functions are compiled once per module, so they find the
// evaluation they belong to through the call context.
func WithBridge(ctx context.Context, b *bridge.Bridge) context.Context {
	return context.WithValue(ctx, bridgeKey{}, b)
}

func bridgeFrom(ctx context.Context) (*bridge.Bridge, bool) {
	b, ok := ctx.Value(bridgeKey{}).(*bridge.Bridge)
	return b, ok && b != nil
}

// CallOperation runs the call operation bound under wireName for the evaluation in ctx.
func CallOperation(ctx context.Context, wireName string, args ...marshal.Payload) (marshal.Payload, error) {
	b, ok := bridgeFrom(ctx)
	if !ok {
		return marshal.Absent(), ErrNoBridge
	}
	binding, ok := b.Lookup(wireName)
	if !ok || binding.IsConstant() {
		return marshal.Absent(), fmt.Errorf("%w: %s", ErrNotInstalled, wireName)
	}
	return binding.Call(ctx, args...)
}

// StaticConfig holds the values that are the same for every guest context: the marker
// tokens. They go into the manifest.
func StaticConfig(ops []bridge.Operation) map[string]string {
	cfg := make(map[string]string)
	for _, op := range ops {
		switch op.Name {
		case bridge.OpWrapFn:
			cfg[op.WireName()] = marshal.WrappedFnKey
		case bridge.OpWrapHTML:
			cfg[op.WireName()] = marshal.WrappedHTMLKey
		}
	}
	return cfg
}

// InstanceConfig holds the per-evaluation values: every constant binding of b, the role,
// the installed operation names and the JSON helper flag.
func InstanceConfig(b *bridge.Bridge) map[string]string {
	cfg := make(map[string]string)
	for _, binding := range b.Bindings() {
		if binding.IsConstant() {
			cfg[binding.Name] = binding.Value
		}
	}
	ops := b.Operations()
	slices.Sort(ops)
	cfg[ConfigRole] = b.Role().String()
	cfg[ConfigOperations] = strings.Join(ops, ",")
	cfg[ConfigJSONHelper] = strconv.FormatBool(b.JSONHelper())
	return cfg
}

// HostFunctions declares one host function per call operation in ops. Each takes one
// pointer per declared argument and, when the operation has a result, returns one pointer.
// Pointer 0 stands for an absent value both ways. A failed call traps the guest.
func HostFunctions(ops []bridge.Operation) []extismSDK.HostFunction {
	var fns []extismSDK.HostFunction
	for _, op := range ops {
		if op.Direction != bridge.DirectionCall {
			continue
		}
		params := make([]extismSDK.ValueType, len(op.Args))
		for i := range params {
			params[i] = extismSDK.ValueTypePTR
		}
		var returns []extismSDK.ValueType
		if op.ReturnsValue() {
			returns = []extismSDK.ValueType{extismSDK.ValueTypePTR}
		}

		fn := extismSDK.NewHostFunctionWithStack(op.WireName(), stackCallback(op), params, returns)
		fn.SetNamespace(Namespace)
		fns = append(fns, fn)
	}
	return fns
}

// guestMemory is the part of extismSDK.CurrentPlugin used by host functions.
type guestMemory interface {
	ReadString(offset uint64) (string, error)
	WriteString(s string) (uint64, error)
}

func stackCallback(op bridge.Operation) extismSDK.HostFunctionStackCallback {
	return func(ctx context.Context, p *extismSDK.CurrentPlugin, stack []uint64) {
		if err := dispatch(ctx, op, p, stack); err != nil {
			// wazero turns a host panic into an error returned from the guest call
			panic(err)
		}
	}
}

func dispatch(ctx context.Context, op bridge.Operation, mem guestMemory, stack []uint64) error {
	args := make([]marshal.Payload, len(op.Args))
	for i := range op.Args {
		if stack[i] == 0 {
			args[i] = marshal.Absent()
			continue
		}
		s, err := mem.ReadString(stack[i])
		if err != nil {
			return fmt.Errorf("%s: reading argument %d: %w", op.Name, i+1, err)
		}
		args[i] = marshal.Raw(s)
	}

	out, err := CallOperation(ctx, op.WireName(), args...)
	if err != nil {
		return err
	}
	if !op.ReturnsValue() {
		return nil
	}
	if out.IsAbsent() {
		stack[0] = 0
		return nil
	}
	offset, err := mem.WriteString(out.String())
	if err != nil {
		return fmt.Errorf("%s: writing result: %w", op.Name, err)
	}
	stack[0] = offset
	return nil
}
