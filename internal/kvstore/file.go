package kvstore

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ruralcare/telemed/pkg/logger"
)

// FileStore persists each key as a file under a directory. Writes go
// through a temp file and rename so a crash mid-write never leaves a
// half-written value behind.
//
// Access is serialized with a mutex: the original host was a
// single-threaded event loop, but Go callers are not.
type FileStore struct {
	dir    string
	mu     sync.Mutex
	logger *logger.Logger
}

func NewFileStore(dir string, log *logger.Logger) (*FileStore, error) {
	if log == nil {
		log = logger.Nop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &FileStore{dir: dir, logger: log.WithComponent("kvstore")}, nil
}

func (s *FileStore) path(key string) string {
	// QueryEscape keeps "vault:PAT-..." style keys filesystem-safe and
	// reversible.
	return filepath.Join(s.dir, url.QueryEscape(key))
}

func (s *FileStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Error(err, "failed to read key", "key", key)
		}
		return "", false
	}
	return string(data), true
}

func (s *FileStore) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.path(key)
	tmp, err := os.CreateTemp(s.dir, ".kv-*")
	if err != nil {
		s.logger.Error(err, "failed to stage write", "key", key)
		return
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		s.logger.Error(err, "failed to write key", "key", key)
		return
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		s.logger.Error(err, "failed to flush key", "key", key)
		return
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		s.logger.Error(err, "failed to commit key", "key", key)
	}
}

func (s *FileStore) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		s.logger.Error(err, "failed to remove key", "key", key)
	}
}

func (s *FileStore) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.logger.Error(err, "failed to list keys")
		return nil
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".kv-") {
			continue
		}
		key, err := url.QueryUnescape(e.Name())
		if err != nil {
			continue
		}
		keys = append(keys, key)
	}
	return keys
}
