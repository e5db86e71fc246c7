package compiler

import "errors"

var (
	ErrCompileFailed = errors.New("failed to compile script")
	ErrContentNil    = errors.New("script content is nil")
)
