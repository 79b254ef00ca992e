// Package corpus provides read access to a tree of OpenADAS data files held
// on the local filesystem, in an S3 bucket or in memory.
package corpus

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// Driver identifies a Store implementation.
type Driver string

const (
	DriverFilesystem Driver = "fs"
	DriverS3         Driver = "s3"
	DriverMemory     Driver = "memory"
)

// Formats are the ADF subdirectories created under a fresh data root.
var Formats = []string{"adf12", "adf15", "adf21", "adf22"}

var (
	// ErrNotFound is returned when a named file does not exist.
	ErrNotFound = errors.New("corpus: file not found")
	// ErrInvalidName is returned for empty, absolute or escaping names.
	ErrInvalidName = errors.New("corpus: invalid file name")
	// ErrUnknownDriver is returned by Open for an unsupported driver.
	ErrUnknownDriver = errors.New("corpus: unknown driver")
)

// Info describes one stored file. Name is slash separated and relative to the
// corpus root.
type Info struct {
	Name         string    `json:"name"`
	Size         int64     `json:"size_bytes"`
	LastModified time.Time `json:"last_modified"`
}

// Store reads data files by name.
type Store interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Stat(ctx context.Context, name string) (Info, error)
	Exists(ctx context.Context, name string) (bool, error)
	// List returns files whose name starts with prefix, sorted by name.
	List(ctx context.Context, prefix string) ([]Info, error)
	Driver() Driver
}

// DefaultRoot returns the per-user data directory, ~/.openadas.
func DefaultRoot() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "corpus: resolve home directory")
	}
	return filepath.Join(home, ".openadas"), nil
}

// EnsureLayout creates root with one subdirectory per format when root does
// not exist yet. An existing root is left untouched.
func EnsureLayout(root string) error {
	if _, err := os.Stat(root); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return errors.Wrapf(err, "corpus: stat %s", root)
	}
	for _, format := range Formats {
		if err := os.MkdirAll(filepath.Join(root, format), 0o755); err != nil {
			return errors.Wrapf(err, "corpus: create %s", format)
		}
	}
	return nil
}

// CleanName validates name and returns it in slash separated form.
func CleanName(name string) (string, error) {
	name = strings.TrimSpace(filepath.ToSlash(name))
	if name == "" {
		return "", errors.Wrap(ErrInvalidName, "empty name")
	}
	if strings.HasPrefix(name, "/") {
		return "", errors.Wrapf(ErrInvalidName, "absolute name %q", name)
	}
	clean := path.Clean(name)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", errors.Wrapf(ErrInvalidName, "%q escapes the corpus root", name)
	}
	return clean, nil
}

func notFound(name string) error {
	return errors.Wrapf(ErrNotFound, "%s", name)
}
