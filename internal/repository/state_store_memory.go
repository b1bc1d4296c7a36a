package repository

import (
	"context"
	"sync"
	"time"
)

type memoryStateStore struct {
	mu      sync.RWMutex
	values  map[string]memValue
	streams map[string][][]byte
}

type memValue struct {
	data     []byte
	deadline time.Time // zero means no expiry
}

func (v memValue) expired() bool {
	return !v.deadline.IsZero() && time.Now().After(v.deadline)
}

func NewMemoryStateStore() StateStore {
	return &memoryStateStore{
		values:  make(map[string]memValue),
		streams: make(map[string][][]byte),
	}
}

func (s *memoryStateStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	v := memValue{data: append([]byte(nil), value...)}
	if ttl > 0 {
		v.deadline = time.Now().Add(ttl)
	}
	s.mu.Lock()
	s.values[key] = v
	s.mu.Unlock()
	return nil
}

func (s *memoryStateStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	if !ok {
		return nil, nil
	}
	if v.expired() {
		delete(s.values, key)
		return nil, nil
	}
	return append([]byte(nil), v.data...), nil
}

func (s *memoryStateStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
	return nil
}

func (s *memoryStateStore) Exists(ctx context.Context, key string) (bool, error) {
	v, err := s.Get(ctx, key)
	if err != nil {
		return false, err
	}
	return v != nil, nil
}

func (s *memoryStateStore) Push(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	s.streams[key] = append(s.streams[key], append([]byte(nil), value...))
	s.mu.Unlock()
	return nil
}
