package repository

import (
	"context"
	"database/sql"
	"fmt"

	"tulisan/config"
	"tulisan/internal/content/model"
)

// ContentRepository is the document store behind the persistence gateway.
// Implementations only ever insert and read; there is no update or delete.
type ContentRepository interface {
	// Insert stores rec as a new record. rec.ID and rec.CreatedAt are set by
	// the caller.
	Insert(ctx context.Context, rec model.ContentRecord) error
	// Latest returns the record with the greatest CreatedAt, or
	// model.ErrNoContent when the store is empty.
	Latest(ctx context.Context) (model.ContentRecord, error)
}

// New returns the repository for the configured store driver. db may be nil
// for the memory driver.
func New(driver string, db *sql.DB) (ContentRepository, error) {
	switch driver {
	case config.DriverPostgres:
		return NewPostgresRepository(db), nil
	case config.DriverSqlite:
		return NewSqliteRepository(db), nil
	case config.DriverMemory:
		return NewMemoryRepository(), nil
	}
	return nil, fmt.Errorf("unknown store driver %q", driver)
}
