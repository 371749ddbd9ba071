package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	financeapp "github.com/evardgh/apdatebookkeeping-REAL/internal/application/finance"
)

var _ financeapp.ReceiptStorage = (*MemoryReceiptStorage)(nil)

// Object is a stored receipt
type Object struct {
	ContentType string
	Data        []byte
}

// MemoryReceiptStorage keeps receipts in process memory. It is used when
// object storage is disabled and in tests.
type MemoryReceiptStorage struct {
	// BaseURL prefixes generated download URLs
	BaseURL string

	mu      sync.RWMutex
	objects map[string]Object
}

// NewMemoryReceiptStorage creates an empty in-memory store
func NewMemoryReceiptStorage() *MemoryReceiptStorage {
	return &MemoryReceiptStorage{
		BaseURL: "http://localhost/receipts",
		objects: make(map[string]Object),
	}
}

// Put stores a copy of body under key
func (m *MemoryReceiptStorage) Put(_ context.Context, key, contentType string, body io.Reader) error {
	if key == "" {
		return errors.New("storage key is required")
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("failed to read receipt: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = Object{ContentType: contentType, Data: data}
	return nil
}

// PresignGet returns a fake expiring URL for a stored key
func (m *MemoryReceiptStorage) PresignGet(_ context.Context, key string) (string, time.Time, error) {
	m.mu.RLock()
	_, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return "", time.Time{}, fmt.Errorf("receipt %s not found", key)
	}
	expires := time.Now().Add(15 * time.Minute)
	return m.BaseURL + "/" + url.PathEscape(key) + "?expires=" + expires.UTC().Format(time.RFC3339), expires, nil
}

// Delete removes key
func (m *MemoryReceiptStorage) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// Get returns a stored object
func (m *MemoryReceiptStorage) Get(key string) (Object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	return obj, ok
}
