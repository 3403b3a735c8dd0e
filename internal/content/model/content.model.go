package model

import (
	"errors"
	"time"
)

// ErrNoContent is the "none" result of fetching the latest record from an
// empty store.
var ErrNoContent = errors.New("no content saved yet")

// ContentRecord is one saved editor output. Records are append-only.
type ContentRecord struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

type SaveContentRequest struct {
	Content string `json:"content"`
	Format  string `json:"format,omitempty"` // html (default) or markdown
}

type DraftRequest struct {
	Content string `json:"content"`
}

type DraftResponse struct {
	SessionID string `json:"session_id"`
	Content   string `json:"content"`
}
