package postgres

import (
	"context"
	"errors"
	"inys-backend/internal/domain"
	"inys-backend/pkg/apperror"
	"inys-backend/pkg/database"

	"github.com/jackc/pgx/v5"
)

// Only rows with a past or present published_at are visible to readers.
const publishedFilter = `published_at IS NOT NULL AND published_at <= NOW()`

type articleRepo struct {
	db    database.Querier
	files domain.FileRepository
}

func NewArticleRepository(db database.Querier, files domain.FileRepository) domain.ArticleRepository {
	return &articleRepo{db: db, files: files}
}

const articleColumns = `id, title, slug, description, content, thumbnail_id, views, published_at, created_at, updated_at`

func (r *articleRepo) Fetch(ctx context.Context, limit, offset int) ([]domain.Article, int64, error) {
	db := database.Conn(ctx, r.db)

	var total int64
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM articles WHERE `+publishedFilter).Scan(&total); err != nil {
		return nil, 0, apperror.Internal(err)
	}

	query := `SELECT ` + articleColumns + ` FROM articles WHERE ` + publishedFilter + `
              ORDER BY published_at DESC, id DESC LIMIT $1 OFFSET $2`
	rows, err := db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	defer rows.Close()

	articles := []domain.Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, 0, apperror.Internal(err)
		}
		articles = append(articles, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperror.Internal(err)
	}

	for i := range articles {
		thumb, err := loadFile(ctx, r.files, articles[i].ThumbnailID)
		if err != nil {
			return nil, 0, err
		}
		articles[i].Thumbnail = thumb
	}
	return articles, total, nil
}

func (r *articleRepo) GetByID(ctx context.Context, id int64) (*domain.Article, error) {
	query := `SELECT ` + articleColumns + ` FROM articles WHERE id = $1 AND ` + publishedFilter
	a, err := scanArticle(database.Conn(ctx, r.db).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}

	thumb, err := loadFile(ctx, r.files, a.ThumbnailID)
	if err != nil {
		return nil, err
	}
	a.Thumbnail = thumb
	return a, nil
}

// IncrementViews bumps the per-article counter atomically in the database.
func (r *articleRepo) IncrementViews(ctx context.Context, id int64) error {
	_, err := database.Conn(ctx, r.db).Exec(ctx, `UPDATE articles SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func scanArticle(row pgx.Row) (*domain.Article, error) {
	var a domain.Article
	err := row.Scan(
		&a.ID, &a.Title, &a.Slug, &a.Description, &a.Content, &a.ThumbnailID,
		&a.Views, &a.PublishedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

type landingpageRepo struct {
	db database.Querier
}

func NewLandingpageRepository(db database.Querier) domain.LandingpageRepository {
	return &landingpageRepo{db: db}
}

const landingpageColumns = `id, title, slug, content, published_at, created_at, updated_at`

func (r *landingpageRepo) Fetch(ctx context.Context, limit, offset int) ([]domain.Landingpage, int64, error) {
	db := database.Conn(ctx, r.db)

	var total int64
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM landingpages WHERE `+publishedFilter).Scan(&total); err != nil {
		return nil, 0, apperror.Internal(err)
	}

	query := `SELECT ` + landingpageColumns + ` FROM landingpages WHERE ` + publishedFilter + `
              ORDER BY id ASC LIMIT $1 OFFSET $2`
	rows, err := db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, apperror.Internal(err)
	}
	defer rows.Close()

	pages := []domain.Landingpage{}
	for rows.Next() {
		var p domain.Landingpage
		if err := rows.Scan(&p.ID, &p.Title, &p.Slug, &p.Content, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, apperror.Internal(err)
		}
		pages = append(pages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, apperror.Internal(err)
	}
	return pages, total, nil
}

func (r *landingpageRepo) GetByID(ctx context.Context, id int64) (*domain.Landingpage, error) {
	query := `SELECT ` + landingpageColumns + ` FROM landingpages WHERE id = $1 AND ` + publishedFilter
	var p domain.Landingpage
	err := database.Conn(ctx, r.db).QueryRow(ctx, query, id).Scan(
		&p.ID, &p.Title, &p.Slug, &p.Content, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &p, nil
}
