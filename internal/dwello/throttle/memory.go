package throttle

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	failures int
	expires  time.Time
}

// Memory is a process-local Limiter.
type Memory struct {
	cfg Config
	now func() time.Time

	mu      sync.Mutex
	entries map[string]entry
}

var _ Limiter = (*Memory)(nil)

func NewMemory(cfg Config) *Memory {
	return &Memory{
		cfg:     cfg.withDefaults(),
		now:     time.Now,
		entries: make(map[string]entry),
	}
}

// current returns the live entry for key, dropping it if expired.
// Callers hold mu.
func (m *Memory) current(key string) (entry, bool) {
	e, ok := m.entries[key]
	if ok && !m.now().Before(e.expires) {
		delete(m.entries, key)
		return entry{}, false
	}
	return e, ok
}

func (m *Memory) Exceeded(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.current(key)
	return ok && e.failures >= m.cfg.MaxFailures, nil
}

func (m *Memory) RecordFailure(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.current(key)
	if !ok {
		e = entry{expires: m.now().Add(m.cfg.Window)}
	}
	e.failures++
	m.entries[key] = e
	return nil
}

func (m *Memory) Reset(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}
