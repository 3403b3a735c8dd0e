package repository

import (
	"context"
	"database/sql"
	"errors"

	"tulisan/internal/content/model"
	"tulisan/pkg/logger"
)

type PostgresRepository struct {
	DB *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{DB: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, rec model.ContentRecord) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO contents (id, content, created_at) VALUES ($1, $2, $3)`,
		rec.ID, rec.Content, rec.CreatedAt)
	if err != nil {
		logger.Sugar.Errorf("Failed to insert content %s: %v", rec.ID, err)
	}
	return err
}

func (r *PostgresRepository) Latest(ctx context.Context) (model.ContentRecord, error) {
	var rec model.ContentRecord
	err := r.DB.QueryRowContext(ctx, `SELECT id, content, created_at FROM contents ORDER BY created_at DESC, id DESC LIMIT 1`).
		Scan(&rec.ID, &rec.Content, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ContentRecord{}, model.ErrNoContent
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to fetch latest content: %v", err)
		return model.ContentRecord{}, err
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	return rec, nil
}
