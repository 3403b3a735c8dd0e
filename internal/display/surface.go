package display

import (
	"context"
	"errors"
	"sync"

	"tulisan/internal/content/model"
	"tulisan/pkg/logger"
)

type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateLoaded  State = "loaded"
	StateEmpty   State = "empty"
	StateError   State = "error"
)

// Fetcher is the read half of the persistence gateway.
type Fetcher interface {
	FetchLatest(ctx context.Context) (model.ContentRecord, error)
}

// Surface renders the most recently saved content. It fetches once, on the
// first Mount, and never again.
type Surface struct {
	fetcher Fetcher
	once    sync.Once

	mu      sync.RWMutex
	state   State
	content string
	record  *model.ContentRecord
}

func NewSurface(fetcher Fetcher) *Surface {
	return &Surface{fetcher: fetcher, state: StateIdle}
}

// Mount runs the fetch. Read failures are logged and leave the content empty.
func (s *Surface) Mount(ctx context.Context) {
	s.once.Do(func() {
		s.set(StateLoading, "", nil)

		rec, err := s.fetcher.FetchLatest(ctx)
		switch {
		case errors.Is(err, model.ErrNoContent):
			logger.Sugar.Warn("No content found in the store")
			s.set(StateEmpty, "", nil)
		case err != nil:
			logger.Sugar.Errorf("Error fetching latest content: %v", err)
			s.set(StateError, "", nil)
		default:
			s.set(StateLoaded, rec.Content, &rec)
		}
	})
}

func (s *Surface) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Content is the markup to render; empty unless the state is loaded.
func (s *Surface) Content() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.content
}

// Record returns the loaded record, if any.
func (s *Surface) Record() (model.ContentRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.record == nil {
		return model.ContentRecord{}, false
	}
	return *s.record, true
}

func (s *Surface) set(state State, content string, rec *model.ContentRecord) {
	s.mu.Lock()
	s.state = state
	s.content = content
	s.record = rec
	s.mu.Unlock()
}
