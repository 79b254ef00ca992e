package corpus

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"
)

// Memory is an in-process store, mostly for tests.
type Memory struct {
	mu    sync.RWMutex
	files map[string]memoryFile
}

type memoryFile struct {
	data     []byte
	modified time.Time
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{files: map[string]memoryFile{}}
}

func (s *Memory) Driver() Driver { return DriverMemory }

// Put stores a copy of data under name, replacing any previous content.
func (s *Memory) Put(name string, data []byte) error {
	clean, err := CleanName(name)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[clean] = memoryFile{data: append([]byte(nil), data...), modified: time.Now().UTC()}
	return nil
}

func (s *Memory) lookup(name string) (string, memoryFile, error) {
	clean, err := CleanName(name)
	if err != nil {
		return "", memoryFile{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	file, ok := s.files[clean]
	if !ok {
		return clean, memoryFile{}, notFound(clean)
	}
	return clean, file, nil
}

// Open returns a reader over the stored bytes. Put never mutates them in place.
func (s *Memory) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	_, file, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(file.data)), nil
}

// Stat reports the stored size and the time of the last Put.
func (s *Memory) Stat(ctx context.Context, name string) (Info, error) {
	if err := ctx.Err(); err != nil {
		return Info{}, err
	}
	clean, file, err := s.lookup(name)
	if err != nil {
		return Info{}, err
	}
	return Info{Name: clean, Size: int64(len(file.data)), LastModified: file.modified}, nil
}

// Exists reports whether name was stored.
func (s *Memory) Exists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	clean, err := CleanName(name)
	if err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.files[clean]
	return ok, nil
}

// List returns stored files whose names start with prefix, sorted.
func (s *Memory) List(ctx context.Context, prefix string) ([]Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	infos := make([]Info, 0, len(s.files))
	for name, file := range s.files {
		if strings.HasPrefix(name, prefix) {
			infos = append(infos, Info{Name: name, Size: int64(len(file.data)), LastModified: file.modified})
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}
