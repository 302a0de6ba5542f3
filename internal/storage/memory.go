package storage

import (
	"context"
	"io"
	"strings"
	"sync"
)

// MemoryStorage keeps objects in a map. Err, when set, is returned from Save.
type MemoryStorage struct {
	mu      sync.Mutex
	baseURL string
	Objects map[string][]byte
	Err     error
}

func NewMemoryStorage(baseURL string) *MemoryStorage {
	return &MemoryStorage{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		Objects: make(map[string][]byte),
	}
}

func (s *MemoryStorage) Save(_ context.Context, path string, body io.Reader, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return s.Err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	s.Objects[path] = data
	return nil
}

func (s *MemoryStorage) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.Objects, path)
	return nil
}

func (s *MemoryStorage) URL(path string) string {
	return s.baseURL + "/" + path
}

func (s *MemoryStorage) PathFromURL(url string) (string, bool) {
	prefix := s.baseURL + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}

func (s *MemoryStorage) Has(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.Objects[path]
	return ok
}

func (s *MemoryStorage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.Objects)
}
