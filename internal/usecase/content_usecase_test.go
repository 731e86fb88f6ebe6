package usecase_test

import (
	"context"
	"errors"
	"inys-backend/internal/domain"
	"inys-backend/internal/usecase"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestArticleFindOneRunsViewsHook(t *testing.T) {
	ctx := context.Background()

	t.Run("Should increment views on a hit", func(t *testing.T) {
		repo := new(MockArticleRepo)
		repo.On("GetByID", ctx, int64(1)).Return(&domain.Article{ID: 1, Views: 4}, nil)
		repo.On("IncrementViews", ctx, int64(1)).Return(nil)
		uc := usecase.NewContentUsecase[domain.Article](repo, "Article not found", usecase.ArticleViewsHook(repo))

		a, err := uc.FindOne(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(5), a.Views)
	})

	t.Run("Should still return the article when the counter fails", func(t *testing.T) {
		repo := new(MockArticleRepo)
		repo.On("GetByID", ctx, int64(1)).Return(&domain.Article{ID: 1, Views: 4}, nil)
		repo.On("IncrementViews", ctx, int64(1)).Return(errors.New("db down"))
		uc := usecase.NewContentUsecase[domain.Article](repo, "Article not found", usecase.ArticleViewsHook(repo))

		a, err := uc.FindOne(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(4), a.Views)
	})

	t.Run("Should not fire hooks for a missing article", func(t *testing.T) {
		repo := new(MockArticleRepo)
		repo.On("GetByID", ctx, int64(2)).Return(nil, nil)
		uc := usecase.NewContentUsecase[domain.Article](repo, "Article not found", usecase.ArticleViewsHook(repo))

		_, err := uc.FindOne(ctx, 2)
		requireAppError(t, err, http.StatusNotFound)
		repo.AssertNotCalled(t, "IncrementViews", mock.Anything, mock.Anything)
	})
}

func TestLandingpageFindOneCountsDailyView(t *testing.T) {
	ctx := context.Background()
	viewers := newMemoryViewerRepo()
	now := time.Date(2024, 5, 1, 8, 0, 0, 0, time.Local)
	tracker := usecase.NewViewerUsecase(viewers, func() time.Time { return now })

	pages := &landingRepo{page: &domain.Landingpage{ID: 1, Title: "Home"}}
	uc := usecase.NewContentUsecase[domain.Landingpage](pages, "Landingpage not found", usecase.DailyViewHook[domain.Landingpage](tracker))

	_, err := uc.FindOne(ctx, 1)
	require.NoError(t, err)
	_, err = uc.FindOne(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), viewers.rows["2024-05-01"].Count)

	// Listing does not count views
	_, meta, err := uc.Find(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), meta.Total)
	assert.Equal(t, int64(2), viewers.rows["2024-05-01"].Count)

	// A failing counter never fails the read
	viewers.err = errors.New("db down")
	page, err := uc.FindOne(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Home", page.Title)
}
