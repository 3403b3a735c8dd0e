package editor

import (
	"context"
	"sync"
	"time"

	"tulisan/pkg/logger"

	"github.com/google/uuid"
)

// Store holds the drafts of all open editor sessions.
type Store struct {
	mu        sync.RWMutex
	drafts    map[string]*Draft
	maxDrafts int
	ttl       time.Duration
	// inUse reports drafts that must survive eviction, such as those with a
	// tab attached.
	inUse func(id string) bool
}

func NewStore(maxDrafts int, ttl time.Duration) *Store {
	return &Store{
		drafts:    make(map[string]*Draft),
		maxDrafts: maxDrafts,
		ttl:       ttl,
	}
}

// ProtectInUse makes Create skip drafts for which inUse returns true when it
// picks one to evict.
func (s *Store) ProtectInUse(inUse func(id string) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inUse = inUse
}

// Create opens a new session with a placeholder draft, evicting the least
// recently used draft not in use when the store is full. If every draft is in
// use the store grows past its limit instead.
func (s *Store) Create() *Draft {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.drafts) >= s.maxDrafts {
		var oldestID string
		var oldest time.Time
		for id, d := range s.drafts {
			if s.inUse != nil && s.inUse(id) {
				continue
			}
			if last := d.LastAccess(); oldestID == "" || last.Before(oldest) {
				oldestID = id
				oldest = last
			}
		}
		if oldestID != "" {
			delete(s.drafts, oldestID)
			logger.Sugar.Infof("Draft store full, evicted session %s", oldestID)
		} else {
			logger.Sugar.Warnf("Draft store full and every draft is in use, holding %d drafts", len(s.drafts)+1)
		}
	}

	d := NewDraft(uuid.New().String())
	s.drafts[d.ID] = d
	return d
}

// Get returns the draft for a session and refreshes its access time.
func (s *Store) Get(id string) (*Draft, bool) {
	s.mu.RLock()
	d, ok := s.drafts[id]
	s.mu.RUnlock()
	if ok {
		d.touch()
	}
	return d, ok
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.drafts)
}

// Cleanup drops drafts idle for longer than the TTL, except those for which
// keep returns true. It returns the number of drafts removed.
func (s *Store) Cleanup(keep func(id string) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-s.ttl)
	removed := 0
	for id, d := range s.drafts {
		if keep != nil && keep(id) {
			continue
		}
		if d.LastAccess().Before(cutoff) {
			delete(s.drafts, id)
			removed++
		}
	}
	return removed
}

// RunCleanup calls Cleanup every interval until ctx is done.
func (s *Store) RunCleanup(ctx context.Context, interval time.Duration, keep func(id string) bool) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Cleanup(keep); n > 0 {
				logger.Sugar.Infof("Evicted %d idle drafts", n)
			}
		}
	}
}
