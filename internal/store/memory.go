package store

import (
	"context"
	"sync"
	"time"

	models "github.com/CodeAndHammer/foodle/internal/models"
	util "github.com/CodeAndHammer/foodle/internal/util"
)

type memorySlot struct {
	session    *models.Session
	lastAccess time.Time
}

// MemoryStore is the default guest backend: one slot per guest, overwritten
// wholesale on every save. A slot for an older puzzle key reads as empty.
type MemoryStore struct {
	mu    sync.RWMutex
	slots map[string]*memorySlot
	ttl   time.Duration
	now   func() time.Time
}

func NewMemoryStore(ttl time.Duration, now func() time.Time) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		slots: make(map[string]*memorySlot),
		ttl:   ttl,
		now:   now,
	}
}

func (m *MemoryStore) Load(_ context.Context, ownerID, puzzleKey string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	slot, ok := m.slots[ownerID]
	if !ok || slot.session.PuzzleKey != puzzleKey {
		return nil, nil
	}
	slot.lastAccess = m.now()
	return slot.session.Clone(), nil
}

func (m *MemoryStore) Save(_ context.Context, s *models.Session) error {
	if err := validateForSave(s); err != nil {
		return err
	}
	m.mu.Lock()
	m.slots[s.OwnerID] = &memorySlot{session: s.Clone(), lastAccess: m.now()}
	m.mu.Unlock()
	return nil
}

// AppendResult is a no-op: guests have no result history.
func (m *MemoryStore) AppendResult(context.Context, string, models.GameResult) error {
	return nil
}

func (m *MemoryStore) LoadStats(context.Context, string) (*models.PlayerStats, error) {
	return nil, nil
}

func (m *MemoryStore) SaveStats(context.Context, string, models.PlayerStats) error {
	return nil
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.slots)
}

// CleanupExpired drops slots idle for longer than the TTL.
func (m *MemoryStore) CleanupExpired() int {
	if m.ttl <= 0 {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-m.ttl)
	removed := 0
	for owner, slot := range m.slots {
		if slot.lastAccess.Before(cutoff) {
			delete(m.slots, owner)
			removed++
		}
	}
	if removed > 0 {
		util.LogInfo("Cleaned up %d expired guest slots", removed)
	}
	return removed
}

func (m *MemoryStore) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.CleanupExpired()
			}
		}
	}()
	util.LogInfo("Started guest slot cleanup goroutine")
}
