package domain

import (
	"context"
	"time"
)

type Article struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	Content     string     `json:"content"`
	ThumbnailID *int64     `json:"-"`
	Thumbnail   *File      `json:"thumbnail"`
	Views       int64      `json:"views"`
	PublishedAt *time.Time `json:"publishedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type Landingpage struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Content     string     `json:"content"`
	PublishedAt *time.Time `json:"publishedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ContentRepository is the default find/findOne behaviour shared by content types.
// Implementations populate their own relations.
type ContentRepository[T any] interface {
	Fetch(ctx context.Context, limit, offset int) ([]T, int64, error)
	// GetByID returns nil, nil when no published row matches.
	GetByID(ctx context.Context, id int64) (*T, error)
}

type ArticleRepository interface {
	ContentRepository[Article]
	IncrementViews(ctx context.Context, id int64) error
}

type LandingpageRepository interface {
	ContentRepository[Landingpage]
}

// AfterFindOneHook runs after a successful single-item read. Hooks must not fail
// the read; they log their own errors.
type AfterFindOneHook[T any] func(ctx context.Context, result *T)

type ContentUsecase[T any] interface {
	Find(ctx context.Context, page, pageSize int) ([]T, *Pagination, error)
	FindOne(ctx context.Context, id int64) (*T, error)
}
