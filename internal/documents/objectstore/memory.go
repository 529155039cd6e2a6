package objectstore

import (
	"context"
	"fmt"
	"net/url"
	"slices"
	"sync"
	"time"

	"depositguard/pkg/platform/sentinel"
)

type object struct {
	body        []byte
	contentType string
}

// Memory keeps objects in process memory. Writes to an existing path
// overwrite it, matching S3 semantics.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]object
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{objects: make(map[string]object), now: time.Now}
}

func (m *Memory) Put(_ context.Context, path string, body []byte, contentType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[path] = object{body: slices.Clone(body), contentType: contentType}
	return path, nil
}

func (m *Memory) SignedURL(_ context.Context, ref string, ttl time.Duration) (string, error) {
	m.mu.RLock()
	_, ok := m.objects[ref]
	m.mu.RUnlock()
	if !ok {
		return "", sentinel.ErrNotFound
	}
	q := url.Values{"expires": {fmt.Sprint(m.now().Add(ttl).Unix())}}
	return "memory:///" + ref + "?" + q.Encode(), nil
}

// Get returns a stored object; used by tests and the local download route.
func (m *Memory) Get(ref string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.objects[ref]
	if !ok {
		return nil, "", false
	}
	return slices.Clone(o.body), o.contentType, true
}
