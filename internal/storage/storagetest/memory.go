// Package storagetest provides an in-memory storage.BlobStore for tests.
package storagetest

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"salesboard/internal/storage"
)

// Memory is a concurrency-safe in-memory BlobStore. Unknown objects answer 404.
type Memory struct {
	mu       sync.RWMutex
	objects  map[string][]byte
	failures map[string]int
	calls    int
}

// NewMemory returns an empty store.
func NewMemory() *Memory {
	return &Memory{
		objects:  make(map[string][]byte),
		failures: make(map[string]int),
	}
}

func id(bucket, key string) string { return bucket + "/" + key }

// Put stores body under bucket/key.
func (m *Memory) Put(bucket, key string, body []byte) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[id(bucket, key)] = body
	delete(m.failures, id(bucket, key))
	return m
}

// Fail makes every Get of bucket/key answer status.
func (m *Memory) Fail(bucket, key string, status int) *Memory {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[id(bucket, key)] = status
	return m
}

// Calls returns how many times Get was called.
func (m *Memory) Calls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}

// Get implements storage.BlobStore.
func (m *Memory) Get(ctx context.Context, bucket, key string) (*storage.Object, error) {
	m.mu.Lock()
	m.calls++
	body, ok := m.objects[id(bucket, key)]
	status, failed := m.failures[id(bucket, key)]
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if failed {
		return nil, &storage.StatusError{
			Backend:    "memory",
			Bucket:     bucket,
			Key:        key,
			StatusCode: status,
			Err:        fmt.Errorf("%s", http.StatusText(status)),
		}
	}
	if !ok {
		return nil, &storage.StatusError{Backend: "memory", Bucket: bucket, Key: key, StatusCode: http.StatusNotFound}
	}

	cp := make([]byte, len(body))
	copy(cp, body)
	return &storage.Object{Bucket: bucket, Key: key, Body: cp, StatusCode: http.StatusOK}, nil
}
