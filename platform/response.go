package platform

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/robbyt/go-chartbridge/bridge/marshal"
	"github.com/robbyt/go-chartbridge/platform/data"
)

// EvaluatorResponse is the script result after conversion to Go values.
type EvaluatorResponse interface {
	// Type of the result.
	Type() data.Types

	// Inspect returns a printable representation of the result.
	Inspect() string

	// Interface returns the result as plain Go values (maps, slices, strings, numbers).
	Interface() any

	// Tagged returns the result classified as a plain value, a wrapped function or wrapped
	// HTML.
	Tagged() marshal.Tagged

	// GetScriptExeID returns the ID of the evaluation that produced the result.
	GetScriptExeID() string

	// GetExecTime returns how long the evaluation took.
	GetExecTime() string
}

// Response is the EvaluatorResponse shared by the guest engines.
type Response struct {
	value    any
	tagged   marshal.Tagged
	exeID    string
	execTime time.Duration
}

// NewResponse classifies value and wraps it.
func NewResponse(value any, exeID string, execTime time.Duration) *Response {
	return &Response{
		value:    value,
		tagged:   marshal.Classify(value),
		exeID:    exeID,
		execTime: execTime,
	}
}

func (r *Response) String() string {
	return fmt.Sprintf("platform.Response{Type: %s, ExeID: %s, ExecTime: %s}",
		r.Type(), r.exeID, r.execTime)
}

// Type reports FUNCTION or HTML for wrapped markers, otherwise the Go kind of the value.
func (r *Response) Type() data.Types {
	switch r.tagged.Kind {
	case marshal.KindFunction:
		return data.FUNCTION
	case marshal.KindHTML:
		return data.HTML
	default:
		return data.TypeOf(r.value)
	}
}

// Inspect renders strings as-is and everything else as compact JSON.
func (r *Response) Inspect() string {
	if s, ok := r.value.(string); ok {
		return s
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(r.value); err != nil {
		return fmt.Sprintf("%v", r.value)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

func (r *Response) Interface() any {
	return r.value
}

func (r *Response) Tagged() marshal.Tagged {
	return r.tagged
}

func (r *Response) GetScriptExeID() string {
	return r.exeID
}

func (r *Response) GetExecTime() string {
	return r.execTime.String()
}
