package bridge

import (
	"context"

	"github.com/robbyt/go-chartbridge/bridge/marshal"
)

// CallFunc is a bound guest-to-host call. Guests pass one payload per argument they
// supplied; omitted trailing arguments may simply be left off.
type CallFunc func(ctx context.Context, args ...marshal.Payload) (marshal.Payload, error)

// Binding is one operation ready to be installed into a guest.
type Binding struct {
	Op Operation
	// Name is the wire name, see Operation.WireName.
	Name string
	// Value holds the constant for DirectionConstant operations.
	Value string
	// Call is set for DirectionCall operations.
	Call CallFunc
}

// IsConstant reports whether the binding is a plain value rather than a function.
func (b Binding) IsConstant() bool {
	return b.Op.Direction == DirectionConstant
}
