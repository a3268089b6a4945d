// Copyright (c) 2026 Souqly. All rights reserved.
// Author: dev@souqly.app

package cache

import (
	"context"
	"path"
	"sync"
	"time"
)

// Memory is an in-process [Cache] used by unit tests and local development.
//
// TTL expiry is evaluated lazily on read. Pattern matching follows the same
// glob semantics Redis uses for SCAN (via [path.Match], which covers the
// '*' suffix patterns this codebase derives).
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry

	// Unavailable makes every operation return ErrUnavailable, letting
	// tests exercise the degradation path without a real backend.
	Unavailable bool
}

// ErrUnavailable simulates an unreachable cache backend.
var ErrUnavailable = &unavailableError{}

type unavailableError struct{}

func (*unavailableError) Error() string { return "cache: backend unavailable" }

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// NewMemory constructs an empty in-memory cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memoryEntry)}
}

// Get implements [Cache].
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Unavailable {
		return "", false, ErrUnavailable
	}

	entry, ok := m.entries[key]
	if !ok {
		return "", false, nil
	}

	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		delete(m.entries, key)
		return "", false, nil
	}

	return entry.value, true, nil
}

// Set implements [Cache].
func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Unavailable {
		return ErrUnavailable
	}

	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	m.entries[key] = entry

	return nil
}

// Del implements [Cache].
func (m *Memory) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Unavailable {
		return ErrUnavailable
	}

	for _, key := range keys {
		delete(m.entries, key)
	}

	return nil
}

// DeleteByPattern implements [Cache].
func (m *Memory) DeleteByPattern(_ context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Unavailable {
		return ErrUnavailable
	}

	for key := range m.entries {
		if matched, _ := path.Match(pattern, key); matched {
			delete(m.entries, key)
		}
	}

	return nil
}

// Len reports the number of live entries, for test assertions.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
