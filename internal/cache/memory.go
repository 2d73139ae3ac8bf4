package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// MemoryStore is a process-local Store used in tests and as the degraded
// fallback when Redis is unreachable at startup.
type MemoryStore struct {
	mu       sync.Mutex
	entries  map[string]memoryEntry
	inflight map[string]time.Time
	now      func() time.Time
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries:  make(map[string]memoryEntry),
		inflight: make(map[string]time.Time),
		now:      time.Now,
	}
}

func (s *MemoryStore) Lookup(_ context.Context, fingerprint string, dest any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.entries[fingerprint]; ok {
		if s.now().Before(entry.expiresAt) {
			if err := json.Unmarshal(entry.data, dest); err != nil {
				delete(s.entries, fingerprint)
				return false, nil
			}
			return true, nil
		}
		delete(s.entries, fingerprint)
	}

	if deadline, ok := s.inflight[fingerprint]; ok {
		if s.now().Before(deadline) {
			return false, ErrInProgress
		}
		delete(s.inflight, fingerprint)
	}

	return false, nil
}

func (s *MemoryStore) Begin(_ context.Context, fingerprint string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if deadline, ok := s.inflight[fingerprint]; ok && s.now().Before(deadline) {
		return false, nil
	}
	s.inflight[fingerprint] = s.now().Add(markerTTL)
	return true, nil
}

func (s *MemoryStore) Store(_ context.Context, fingerprint string, decision any, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	data, err := json.Marshal(decision)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[fingerprint] = memoryEntry{data: data, expiresAt: s.now().Add(ttl)}
	delete(s.inflight, fingerprint)
	return nil
}

func (s *MemoryStore) Invalidate(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]memoryEntry)
	s.inflight = make(map[string]time.Time)
	return nil
}
