package loader

import (
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// FromDisk loads a script from the local filesystem.
type FromDisk struct {
	path      string
	sourceURL *url.URL
}

// NewFromDisk creates a loader for path. A file:// prefix is accepted and relative paths are
// resolved against the working directory.
func NewFromDisk(path string) (*FromDisk, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return nil, fmt.Errorf("%w: %s", ErrSchemeUnsupported, path)
	}
	path = strings.TrimPrefix(path, "file://")
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: path is empty", ErrScriptNotAvailable)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScriptNotAvailable, err)
	}
	if abs == string(filepath.Separator) {
		return nil, fmt.Errorf("%w: path is invalid", ErrScriptNotAvailable)
	}

	return &FromDisk{
		path:      abs,
		sourceURL: &url.URL{Scheme: "file", Path: filepath.ToSlash(abs)},
	}, nil
}

func (l *FromDisk) String() string {
	return fmt.Sprintf("loader.FromDisk{Path: %s}", l.path)
}

func (l *FromDisk) GetReader() (io.ReadCloser, error) {
	return os.Open(l.path)
}

func (l *FromDisk) GetSourceURL() *url.URL {
	return l.sourceURL
}
