package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

// MemoryTokenStore is a TokenStore kept in process memory. Fail, when set,
// is returned by every call to simulate unavailable storage.
type MemoryTokenStore struct {
	mu     sync.Mutex
	values map[string][]byte
	Fail   error
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{values: make(map[string][]byte)}
}

func (s *MemoryTokenStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	v, ok := s.values[key]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return append([]byte(nil), v...), nil
}

func (s *MemoryTokenStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	s.values[key] = append([]byte(nil), value...)
	return nil
}

func (s *MemoryTokenStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	delete(s.values, key)
	return nil
}

// MemoryCookieStore is a CookieStore kept in process memory, with the same
// expiry rule as the SQLite store.
type MemoryCookieStore struct {
	mu      sync.Mutex
	cookies map[string]http.Cookie
	Now     func() time.Time
	Fail    error
}

func NewMemoryCookieStore() *MemoryCookieStore {
	return &MemoryCookieStore{cookies: make(map[string]http.Cookie), Now: time.Now}
}

func (s *MemoryCookieStore) Set(_ context.Context, c *http.Cookie) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	s.cookies[c.Name] = *c
	return nil
}

func (s *MemoryCookieStore) Get(_ context.Context, name string) (*http.Cookie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return nil, s.Fail
	}
	c, ok := s.cookies[name]
	if !ok || !c.Expires.After(s.Now()) {
		return nil, common.ErrorNotFound
	}
	return &c, nil
}

func (s *MemoryCookieStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Fail != nil {
		return s.Fail
	}
	delete(s.cookies, name)
	return nil
}
