package hostapi

import "errors"

var (
	ErrInvalidFilename = errors.New("export filename is empty after normalisation")
	ErrInvalidKey      = errors.New("key must not be empty")
	ErrRender          = errors.New("markdown rendering failed")
)
