package imagestore

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrInjected = errors.New("injected image store failure")

// Memory is an in-process Store used by tests. FailUpload and Delay are
// consulted per upload with the uploaded bytes. Strict rejects data that
// does not sniff as an image, as MinIO does.
type Memory struct {
	FailUpload func(data []byte) bool
	Delay      func(data []byte) time.Duration
	FailDelete bool
	Strict     bool

	mu      sync.Mutex
	objects map[string][]byte
	uploads []Asset
	deletes []string
}

func NewMemory() *Memory {
	return &Memory{objects: make(map[string][]byte)}
}

func (m *Memory) Upload(ctx context.Context, data []byte, folder string) (Asset, error) {
	if m.Delay != nil {
		select {
		case <-time.After(m.Delay(data)):
		case <-ctx.Done():
			return Asset{}, ctx.Err()
		}
	}
	if m.FailUpload != nil && m.FailUpload(data) {
		return Asset{}, ErrInjected
	}
	if m.Strict {
		if _, _, err := sniff(data); err != nil {
			return Asset{}, err
		}
	}

	id := path.Join(folder, uuid.NewString())
	asset := Asset{ID: id, URL: fmt.Sprintf("memory://%s", id)}

	m.mu.Lock()
	m.objects[id] = append([]byte(nil), data...)
	m.uploads = append(m.uploads, asset)
	m.mu.Unlock()
	return asset, nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deletes = append(m.deletes, id)
	if m.FailDelete {
		return ErrInjected
	}
	delete(m.objects, id)
	return nil
}

// Len is the number of objects currently stored.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// Content returns the bytes stored under id.
func (m *Memory) Content(id string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[id]
	return b, ok
}

// Uploads returns every successful upload in completion order.
func (m *Memory) Uploads() []Asset {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Asset(nil), m.uploads...)
}

// Deletes returns every id Delete was called with, including failed calls.
func (m *Memory) Deletes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deletes...)
}
