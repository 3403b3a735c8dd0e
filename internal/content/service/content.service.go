package service

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"tulisan/internal/content/model"
	"tulisan/internal/content/repository"
	"tulisan/pkg/logger"

	"github.com/oklog/ulid/v2"
	"github.com/yuin/goldmark"
)

var (
	// ErrWriteFailure wraps any store error raised while appending a record.
	ErrWriteFailure = errors.New("write failure")
	// ErrReadFailure wraps any store error raised while fetching the latest record.
	ErrReadFailure = errors.New("read failure")
	// ErrUnknownFormat is returned for a content format other than html or markdown.
	ErrUnknownFormat = errors.New("unknown content format")
)

// ContentService is the persistence gateway: append-only writes and a read
// of the most recent record.
type ContentService struct {
	Repo repository.ContentRepository

	now      func() time.Time
	markdown goldmark.Markdown

	mu      sync.Mutex
	entropy io.Reader
}

func NewContentService(repo repository.ContentRepository) *ContentService {
	return &ContentService{
		Repo:     repo,
		now:      func() time.Time { return time.Now().UTC() },
		markdown: goldmark.New(),
		entropy:  ulid.Monotonic(rand.Reader, 0),
	}
}

// WithClock replaces the clock used for createdAt. Intended for tests.
func (s *ContentService) WithClock(now func() time.Time) *ContentService {
	s.now = now
	return s
}

// Append stores content as a new record stamped with the current time.
func (s *ContentService) Append(ctx context.Context, content string) (model.ContentRecord, error) {
	createdAt := s.now()
	rec := model.ContentRecord{
		ID:        s.newID(createdAt),
		Content:   content,
		CreatedAt: createdAt,
	}
	if err := s.Repo.Insert(ctx, rec); err != nil {
		return model.ContentRecord{}, fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}
	logger.Sugar.Infof("Saved content %s (%d bytes)", rec.ID, len(content))
	return rec, nil
}

// AppendRequest converts req to markup according to its format and appends it.
func (s *ContentService) AppendRequest(ctx context.Context, req model.SaveContentRequest) (model.ContentRecord, error) {
	content, err := s.toMarkup(req)
	if err != nil {
		return model.ContentRecord{}, err
	}
	return s.Append(ctx, content)
}

// FetchLatest returns the most recently created record. An empty store yields
// model.ErrNoContent, unwrapped, so callers can tell "none" from a failure.
func (s *ContentService) FetchLatest(ctx context.Context) (model.ContentRecord, error) {
	rec, err := s.Repo.Latest(ctx)
	if errors.Is(err, model.ErrNoContent) {
		return model.ContentRecord{}, model.ErrNoContent
	}
	if err != nil {
		return model.ContentRecord{}, fmt.Errorf("%w: %w", ErrReadFailure, err)
	}
	return rec, nil
}

func (s *ContentService) toMarkup(req model.SaveContentRequest) (string, error) {
	switch req.Format {
	case "", model.FormatHTML:
		return req.Content, nil
	case model.FormatMarkdown:
		var buf bytes.Buffer
		if err := s.markdown.Convert([]byte(req.Content), &buf); err != nil {
			return "", fmt.Errorf("convert markdown: %w", err)
		}
		return buf.String(), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, req.Format)
}

// newID returns a ULID for t. The monotonic entropy source is not safe for
// concurrent use.
func (s *ContentService) newID(t time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}
