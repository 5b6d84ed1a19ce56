package filestore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/Beebbbyy/order-metrics-api/internal/pkg/pkgerror"
)

const fileExt = ".csv"

// Local stores downloads as <dir>/<file id>.csv on the local filesystem.
type Local struct {
	dir string
}

// NewLocal creates dir when it does not exist yet.
func NewLocal(dir string) (*Local, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("storage directory is required")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}

	return &Local{dir: dir}, nil
}

// Save writes data atomically: it goes to a temporary file first and is then
// renamed into place.
func (l *Local) Save(ctx context.Context, fileID string, data []byte) (string, error) {
	path, err := l.path(fileID)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(l.dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("move into %s: %w", path, err)
	}

	return path, nil
}

// Open returns pkgerror.ErrNotFound when nothing has been saved for fileID.
func (l *Local) Open(ctx context.Context, fileID string) (io.ReadCloser, error) {
	path, err := l.path(fileID)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, pkgerror.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	return f, nil
}

// Dir returns the storage directory.
func (l *Local) Dir() string {
	return l.dir
}

func (l *Local) path(fileID string) (string, error) {
	if err := validID(fileID); err != nil {
		return "", err
	}
	return filepath.Join(l.dir, fileID+fileExt), nil
}

// validID rejects ids that could escape the storage root.
func validID(fileID string) error {
	if fileID == "" || fileID != filepath.Base(fileID) || strings.HasPrefix(fileID, ".") || strings.ContainsAny(fileID, `/\`) {
		return fmt.Errorf("invalid file id %q", fileID)
	}
	return nil
}
