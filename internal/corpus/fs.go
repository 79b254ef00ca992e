package corpus

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// Filesystem serves files below a local directory.
type Filesystem struct {
	root string
}

// NewFilesystem returns a store rooted at root. The directory must exist.
func NewFilesystem(root string) (*Filesystem, error) {
	if root == "" {
		return nil, errors.New("corpus: filesystem root required")
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, errors.Wrapf(err, "corpus: open root %s", root)
	}
	if !info.IsDir() {
		return nil, errors.Newf("corpus: root %s is not a directory", root)
	}
	return &Filesystem{root: root}, nil
}

func (s *Filesystem) Driver() Driver { return DriverFilesystem }

// Root returns the directory the store serves.
func (s *Filesystem) Root() string { return s.root }

func (s *Filesystem) pathFor(name string) (string, string, error) {
	clean, err := CleanName(name)
	if err != nil {
		return "", "", err
	}
	return clean, filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

// Open opens name below the root. Missing files and directories are
// reported as ErrNotFound.
func (s *Filesystem) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean, p, err := s.pathFor(name)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, notFound(clean)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "corpus: open %s", clean)
	}
	return file, nil
}

// Stat reports size and modification time of a regular file.
func (s *Filesystem) Stat(ctx context.Context, name string) (Info, error) {
	if err := ctx.Err(); err != nil {
		return Info{}, err
	}
	clean, p, err := s.pathFor(name)
	if err != nil {
		return Info{}, err
	}
	info, err := os.Stat(p)
	if errors.Is(err, fs.ErrNotExist) {
		return Info{}, notFound(clean)
	}
	if err != nil {
		return Info{}, errors.Wrapf(err, "corpus: stat %s", clean)
	}
	if info.IsDir() {
		return Info{}, notFound(clean)
	}
	return Info{Name: clean, Size: info.Size(), LastModified: info.ModTime().UTC()}, nil
}

// Exists reports whether name is a regular file below the root.
func (s *Filesystem) Exists(ctx context.Context, name string) (bool, error) {
	_, err := s.Stat(ctx, name)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// List walks the root and returns the files whose names start with prefix.
func (s *Filesystem) List(ctx context.Context, prefix string) ([]Info, error) {
	var infos []Info
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if !strings.HasPrefix(name, prefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		infos = append(infos, Info{Name: name, Size: info.Size(), LastModified: info.ModTime().UTC()})
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "corpus: list %s", s.root)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}
