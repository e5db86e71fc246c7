package loader

import "errors"

var (
	ErrScriptNotAvailable = errors.New("script not available")
	ErrSchemeUnsupported  = errors.New("unsupported scheme")
)
