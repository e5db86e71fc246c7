package evaluator

import "errors"

var (
	ErrExecutable = errors.New("executable is nil")
	ErrExecution  = errors.New("risor execution error")
	ErrResult     = errors.New("script result cannot be returned")
)
