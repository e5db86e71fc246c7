// Package data supplies the input a chart script sees through the ctx global: the chart
// parameters, URL parameters and whatever else the host wants scripts to read.
package data

import (
	"context"
	"errors"
)

// ErrStaticProviderNoRuntimeUpdates is returned when something tries to add runtime data to a
// StaticProvider.
var ErrStaticProviderNoRuntimeUpdates = errors.New("static provider does not accept runtime data")

// ErrNoProvider is returned by AddDataToContextHelper when there is nowhere to store data.
var ErrNoProvider = errors.New("no data provider available")

// Getter retrieves the script input for one evaluation.
type Getter interface {
	GetData(ctx context.Context) (map[string]any, error)
}

// Setter stores script input in a context so a later evaluation can read it back. Keeping
// the two steps apart lets hosts prepare input before picking an evaluator.
type Setter interface {
	AddDataToContext(ctx context.Context, data ...map[string]any) (context.Context, error)
}

// Provider is both a Getter and a Setter.
type Provider interface {
	Getter
	Setter
}
