package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"tulisan/internal/content/model"
	"tulisan/pkg/logger"
)

type SqliteRepository struct {
	DB *sql.DB
}

func NewSqliteRepository(db *sql.DB) *SqliteRepository {
	return &SqliteRepository{DB: db}
}

func (r *SqliteRepository) Insert(ctx context.Context, rec model.ContentRecord) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO contents (id, content, created_at) VALUES (?, ?, ?)`,
		rec.ID, rec.Content, rec.CreatedAt.UnixNano())
	if err != nil {
		logger.Sugar.Errorf("Failed to insert content %s: %v", rec.ID, err)
	}
	return err
}

func (r *SqliteRepository) Latest(ctx context.Context) (model.ContentRecord, error) {
	var rec model.ContentRecord
	var createdAt int64
	err := r.DB.QueryRowContext(ctx, `SELECT id, content, created_at FROM contents ORDER BY created_at DESC, id DESC LIMIT 1`).
		Scan(&rec.ID, &rec.Content, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ContentRecord{}, model.ErrNoContent
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to fetch latest content: %v", err)
		return model.ContentRecord{}, err
	}
	rec.CreatedAt = time.Unix(0, createdAt).UTC()
	return rec, nil
}
