package locks

import (
	"context"
	"sync"
	"time"
)

// MemoryLocker is the single-process Locker used when redis is not
// configured.
type MemoryLocker struct {
	mu     sync.Mutex
	held   map[string]memoryLease
	nextID uint64
	now    func() time.Time
}

type memoryLease struct {
	id      uint64
	expires time.Time
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		held: make(map[string]memoryLease),
		now:  time.Now,
	}
}

func (m *MemoryLocker) Acquire(_ context.Context, key string, ttl time.Duration) (Lease, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if cur, ok := m.held[key]; ok && now.Before(cur.expires) {
		return nil, ErrNotAcquired
	}

	m.nextID++
	m.held[key] = memoryLease{id: m.nextID, expires: now.Add(ttl)}
	return &memoryHandle{locker: m, key: key, id: m.nextID}, nil
}

type memoryHandle struct {
	locker *MemoryLocker
	key    string
	id     uint64
}

func (h *memoryHandle) Release(_ context.Context) error {
	h.locker.mu.Lock()
	defer h.locker.mu.Unlock()

	if cur, ok := h.locker.held[h.key]; ok && cur.id == h.id {
		delete(h.locker.held, h.key)
	}
	return nil
}
