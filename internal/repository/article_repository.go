package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/lib/pq"

	"bionews/internal/model"
)

type ArticleRepository struct {
	db *sql.DB
}

func NewArticleRepository(db *sql.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

// InsertIfAbsent persists the article unless a record with the same URL
// already exists. URL is the natural key, so concurrent and repeated cycles
// commute.
func (r *ArticleRepository) InsertIfAbsent(ctx context.Context, a model.Article) (bool, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO article(id, title, headline, summary, content, category, source, url, image_url, published_at, keywords, created_at)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (url) DO NOTHING
		RETURNING id
	`, a.ID, a.Title, a.Headline, a.Summary, a.Content, a.Category, a.Source, a.URL, a.ImageURL, a.PublishedAt, pq.Array(a.Keywords), a.CreatedAt).Scan(&id)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ExistsSimilar reports whether a stored record matches the given URL
// exactly or has a title starting with titlePrefix, case-insensitive.
func (r *ArticleRepository) ExistsSimilar(ctx context.Context, url, titlePrefix string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM article
			WHERE url = $1 OR LOWER(title) LIKE $2 || '%'
		)
	`, url, escapeLike(titlePrefix)).Scan(&exists)
	return exists, err
}

// escapeLike neutralizes LIKE wildcards inside a title prefix so the match
// stays a literal, anchored prefix.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

const articleColumns = `id, title, headline, summary, content, category, source, url, image_url, published_at, keywords, created_at`

func scanArticle(row interface{ Scan(...any) error }) (model.Article, error) {
	var a model.Article
	var keywords pq.StringArray
	err := row.Scan(&a.ID, &a.Title, &a.Headline, &a.Summary, &a.Content, &a.Category, &a.Source, &a.URL, &a.ImageURL, &a.PublishedAt, &keywords, &a.CreatedAt)
	a.Keywords = keywords
	return a, err
}

// List returns the newest articles, optionally filtered by category.
func (r *ArticleRepository) List(ctx context.Context, category string, limit int) ([]model.Article, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+articleColumns+`
		FROM article
		WHERE ($1 = '' OR category = $1)
		ORDER BY published_at DESC
		LIMIT $2
	`, category, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectArticles(rows)
}

func (r *ArticleRepository) GetByID(ctx context.Context, id string) (*model.Article, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+articleColumns+`
		FROM article
		WHERE id = $1
	`, id)

	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Search matches query against title and summary substrings and against the
// keyword list, optionally narrowed to one category.
func (r *ArticleRepository) Search(ctx context.Context, query, category string, limit int) ([]model.Article, error) {
	pattern := "%" + escapeLike(query) + "%"
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+articleColumns+`
		FROM article
		WHERE (title ILIKE $1 OR summary ILIKE $1 OR $2 = ANY(keywords))
		  AND ($3 = '' OR category = $3)
		ORDER BY published_at DESC
		LIMIT $4
	`, pattern, strings.ToLower(query), category, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectArticles(rows)
}

func (r *ArticleRepository) CountAll(ctx context.Context) (int, error) {
	var total int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM article`).Scan(&total)
	return total, err
}

// ListUnannotated returns records stored before headline generation existed.
func (r *ArticleRepository) ListUnannotated(ctx context.Context, limit int) ([]model.Article, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+articleColumns+`
		FROM article
		WHERE headline = ''
		ORDER BY created_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectArticles(rows)
}

func (r *ArticleRepository) UpdateAnnotation(ctx context.Context, id, headline, summary string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE article SET headline = $1, summary = $2 WHERE id = $3
	`, headline, summary, id)
	return err
}

func collectArticles(rows *sql.Rows) ([]model.Article, error) {
	var articles []model.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return articles, nil
}
