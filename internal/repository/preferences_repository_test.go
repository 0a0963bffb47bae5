package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-playground/assert/v2"

	"bionews/internal/model"
)

func TestPreferencesUpsert(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPreferencesRepository(db)

	mock.ExpectExec("INSERT INTO preferences").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Upsert(context.Background(), model.Preferences{
		ID:         "p1",
		UserID:     "u1",
		Categories: []string{model.CategoryClinicalTrials},
		CreatedAt:  time.Now().UTC(),
	})

	assert.Equal(t, err, nil)
	assert.Equal(t, nil, mock.ExpectationsWereMet())
}

func TestPreferencesGet(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPreferencesRepository(db)
	at := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "user_id", "categories", "created_at"}).
		AddRow("p1", "u1", `{"Clinical Trials","Early Discovery"}`, at)

	mock.ExpectQuery("SELECT (.+) FROM preferences").
		WithArgs("u1").
		WillReturnRows(rows)

	p, err := repo.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, []string{model.CategoryClinicalTrials, model.CategoryEarlyDiscovery}, p.Categories)
}

func TestPreferencesGetMissingReturnsNil(t *testing.T) {
	db, mock := newMock(t)
	repo := NewPreferencesRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM preferences").
		WithArgs("stranger").
		WillReturnError(sql.ErrNoRows)

	p, err := repo.Get(context.Background(), "stranger")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	assert.Equal(t, p, nil)
}
