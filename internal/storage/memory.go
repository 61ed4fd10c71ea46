package storage

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is an in-process ObjectStore used by local mode and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]Object
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]Object)}
}

func (s *MemoryStore) Fetch(_ context.Context, bucket, key string) (Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[bucket+"/"+key]
	if !ok {
		return Object{}, fmt.Errorf("object %s/%s not found", bucket, key)
	}
	return obj, nil
}

func (s *MemoryStore) Put(_ context.Context, bucket, key string, data []byte, metadata map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := bucket + "/" + key
	if _, exists := s.objects[id]; exists {
		return nil
	}
	s.objects[id] = Object{Bytes: data, Metadata: metadata, Size: int64(len(data))}
	return nil
}
