// FilePath: internal/repository/cooldown/cooldown.go
package cooldown

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps last-alert times in a process-local map. Losing the
// map on restart is accepted: the worst case is one early re-alert.
type MemoryStore struct {
	mu    sync.RWMutex
	times map[string]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{times: make(map[string]time.Time)}
}

func (s *MemoryStore) LastAlert(ctx context.Context, userID, hiveID string) (time.Time, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.times[key(userID, hiveID)]
	return t, ok, nil
}

func (s *MemoryStore) Stamp(ctx context.Context, userID, hiveID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.times[key(userID, hiveID)] = at
	return nil
}

func key(userID, hiveID string) string {
	return userID + ":" + hiveID
}
