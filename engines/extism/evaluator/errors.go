package evaluator

import "errors"

var (
	ErrExecutable = errors.New("executable is nil or closed")
	ErrExecution  = errors.New("extism execution error")
	ErrExitCode   = errors.New("function returned non-zero exit code")
)
