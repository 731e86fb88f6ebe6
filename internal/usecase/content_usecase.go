package usecase

import (
	"context"
	"inys-backend/internal/domain"
	"inys-backend/pkg/apperror"
	"inys-backend/pkg/logger"
)

type contentUsecase[T any] struct {
	repo     domain.ContentRepository[T]
	hooks    []domain.AfterFindOneHook[T]
	notFound string
}

// NewContentUsecase wires the default find/findOne behaviour of a content type.
// hooks run in order after every successful FindOne.
func NewContentUsecase[T any](repo domain.ContentRepository[T], notFound string, hooks ...domain.AfterFindOneHook[T]) domain.ContentUsecase[T] {
	return &contentUsecase[T]{repo: repo, hooks: hooks, notFound: notFound}
}

func (u *contentUsecase[T]) Find(ctx context.Context, page, pageSize int) ([]T, *domain.Pagination, error) {
	page, pageSize = domain.NormalizePage(page, pageSize)

	items, total, err := u.repo.Fetch(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, nil, err
	}
	return items, domain.NewPagination(page, pageSize, total), nil
}

func (u *contentUsecase[T]) FindOne(ctx context.Context, id int64) (*T, error) {
	item, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperror.NotFound(u.notFound)
	}

	for _, hook := range u.hooks {
		hook(ctx, item)
	}
	return item, nil
}

// ArticleViewsHook bumps the per-article views column.
func ArticleViewsHook(repo domain.ArticleRepository) domain.AfterFindOneHook[domain.Article] {
	return func(ctx context.Context, article *domain.Article) {
		if err := repo.IncrementViews(ctx, article.ID); err != nil {
			logger.Log.Error("Failed to increment article views", "article_id", article.ID, "error", err)
			return
		}
		article.Views++
	}
}

// DailyViewHook counts a landing page read in the daily viewers tally.
func DailyViewHook[T any](viewers domain.ViewerUsecase) domain.AfterFindOneHook[T] {
	return func(ctx context.Context, _ *T) {
		viewers.Track(ctx)
	}
}
