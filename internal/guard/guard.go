// Package guard provides short-lived exclusive locks keyed by string, used
// to keep a learner's concurrent certificate requests from spending credits
// at the same time, across every server sharing the guard.
package guard

import (
	"context"
	"sync"
	"time"
)

// DefaultTTL bounds how long a lock survives a crashed holder.
const DefaultTTL = 30 * time.Second

// Guard hands out at most one lock per key at a time.
type Guard interface {
	// TryAcquire returns acquired=false without blocking when key is held.
	// release must be called exactly once when acquired is true.
	TryAcquire(ctx context.Context, key string) (release func(), acquired bool, err error)
}

// Memory is a process-local Guard.
type Memory struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewMemory returns an empty in-process guard.
func NewMemory() *Memory {
	return &Memory{held: make(map[string]struct{})}
}

func (m *Memory) TryAcquire(_ context.Context, key string) (func(), bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.held[key]; ok {
		return nil, false, nil
	}
	m.held[key] = struct{}{}

	var once sync.Once
	release := func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.held, key)
			m.mu.Unlock()
		})
	}
	return release, true, nil
}
