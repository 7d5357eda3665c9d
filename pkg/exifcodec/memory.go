package exifcodec

import (
	"fmt"
	"sync"
)

// Memory is an in-memory Codec keyed by path. A path without an entry has no
// EXIF block. Use in tests.
type Memory struct {
	mu     sync.Mutex
	tags   map[string]map[Attribute]string
	writes map[string]int
}

// NewMemory returns an empty Memory codec.
func NewMemory() *Memory {
	return &Memory{
		tags:   make(map[string]map[Attribute]string),
		writes: make(map[string]int),
	}
}

// Set stores values for path, creating its EXIF block if needed.
func (m *Memory) Set(path string, values map[Attribute]string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	block, ok := m.tags[path]
	if !ok {
		block = make(map[Attribute]string)
		m.tags[path] = block
	}
	for k, v := range values {
		block[k] = v
	}
}

// Writes returns how often UpdateTimestamps was called for path.
func (m *Memory) Writes(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes[path]
}

func (m *Memory) GetTimestamps(path string) (map[Attribute]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	block, ok := m.tags[path]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrNoExif)
	}
	out := make(map[Attribute]string, len(block))
	for k, v := range block {
		out[k] = v
	}
	return out, nil
}

func (m *Memory) UpdateTimestamps(path string, values map[Attribute]string) error {
	for attr := range values {
		if !attr.Valid() {
			return fmt.Errorf("unsupported attribute %q", attr)
		}
	}
	m.Set(path, values)

	m.mu.Lock()
	m.writes[path]++
	m.mu.Unlock()
	return nil
}
