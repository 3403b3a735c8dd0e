package editor

import (
	"context"
	"sync"
	"time"

	"tulisan/internal/content/model"
)

// Placeholder is the markup every new draft starts with.
const Placeholder = "<p>This is the initial content of the editor.</p>"

// Appender is the write half of the persistence gateway.
type Appender interface {
	Append(ctx context.Context, content string) (model.ContentRecord, error)
}

// Draft is the unsaved markup of one editor session.
type Draft struct {
	mu         sync.RWMutex
	ID         string
	content    string
	CreatedAt  time.Time
	lastAccess time.Time
}

func NewDraft(id string) *Draft {
	now := time.Now()
	return &Draft{
		ID:         id,
		content:    Placeholder,
		CreatedAt:  now,
		lastAccess: now,
	}
}

// Content returns the current draft markup.
func (d *Draft) Content() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.content
}

// Replace swaps the whole draft for content. Called on every user edit.
func (d *Draft) Replace(content string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.content = content
	d.lastAccess = time.Now()
}

// Save hands the current draft to the gateway. The draft is never modified,
// whether the write succeeds or not.
func (d *Draft) Save(ctx context.Context, gw Appender) (model.ContentRecord, error) {
	content := d.Content()
	d.touch()
	return gw.Append(ctx, content)
}

// LastAccess reports when the draft was last edited, saved or fetched.
func (d *Draft) LastAccess() time.Time {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.lastAccess
}

func (d *Draft) touch() {
	d.mu.Lock()
	d.lastAccess = time.Now()
	d.mu.Unlock()
}
