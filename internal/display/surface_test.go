package display

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"tulisan/internal/content/model"
	"tulisan/internal/content/repository"
	"tulisan/internal/content/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingFetcher struct {
	calls atomic.Int32
	rec   model.ContentRecord
	err   error
	gate  chan struct{}
}

func (f *countingFetcher) FetchLatest(ctx context.Context) (model.ContentRecord, error) {
	f.calls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	return f.rec, f.err
}

func TestMountLoadsLatest(t *testing.T) {
	svc := service.NewContentService(repository.NewMemoryRepository())
	_, err := svc.Append(context.Background(), "<p>Hello</p>")
	require.NoError(t, err)

	s := NewSurface(svc)
	assert.Equal(t, StateIdle, s.State())
	s.Mount(context.Background())

	assert.Equal(t, StateLoaded, s.State())
	assert.Equal(t, "<p>Hello</p>", s.Content())
	rec, ok := s.Record()
	require.True(t, ok)
	assert.Equal(t, "<p>Hello</p>", rec.Content)
}

func TestMountOnEmptyStoreRendersEmpty(t *testing.T) {
	s := NewSurface(service.NewContentService(repository.NewMemoryRepository()))
	s.Mount(context.Background())

	assert.Equal(t, StateEmpty, s.State())
	assert.Equal(t, "", s.Content())
	_, ok := s.Record()
	assert.False(t, ok)
}

func TestMountReadFailureRendersEmpty(t *testing.T) {
	f := &countingFetcher{err: errors.New("unreachable")}
	s := NewSurface(f)
	s.Mount(context.Background())

	assert.Equal(t, StateError, s.State())
	assert.Equal(t, "", s.Content())
}

func TestMountFetchesOnlyOnce(t *testing.T) {
	f := &countingFetcher{rec: model.ContentRecord{Content: "<p>A</p>"}}
	s := NewSurface(f)
	s.Mount(context.Background())
	f.rec = model.ContentRecord{Content: "<p>B</p>"}
	s.Mount(context.Background())

	assert.Equal(t, int32(1), f.calls.Load())
	assert.Equal(t, "<p>A</p>", s.Content())
}

func TestContentIsEmptyWhileLoading(t *testing.T) {
	f := &countingFetcher{rec: model.ContentRecord{Content: "<p>A</p>"}, gate: make(chan struct{})}
	s := NewSurface(f)

	done := make(chan struct{})
	go func() {
		s.Mount(context.Background())
		close(done)
	}()

	require.Eventually(t, func() bool { return s.State() == StateLoading }, time.Second, time.Millisecond)
	assert.Equal(t, "", s.Content())

	close(f.gate)
	<-done
	assert.Equal(t, StateLoaded, s.State())
	assert.Equal(t, "<p>A</p>", s.Content())
}
