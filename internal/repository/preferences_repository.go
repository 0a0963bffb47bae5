package repository

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"bionews/internal/model"
)

type PreferencesRepository struct {
	db *sql.DB
}

func NewPreferencesRepository(db *sql.DB) *PreferencesRepository {
	return &PreferencesRepository{db: db}
}

func (r *PreferencesRepository) Upsert(ctx context.Context, p model.Preferences) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO preferences(id, user_id, categories, created_at)
		VALUES($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET categories = EXCLUDED.categories
	`, p.ID, p.UserID, pq.Array(p.Categories), p.CreatedAt)
	return err
}

func (r *PreferencesRepository) Get(ctx context.Context, userID string) (*model.Preferences, error) {
	var p model.Preferences
	var categories pq.StringArray
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, categories, created_at
		FROM preferences
		WHERE user_id = $1
	`, userID).Scan(&p.ID, &p.UserID, &categories, &p.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	p.Categories = categories
	return &p, nil
}
