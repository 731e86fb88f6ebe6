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

func TestTrackCountsPerDay(t *testing.T) {
	ctx := context.Background()
	repo := newMemoryViewerRepo()
	now := time.Date(2024, 3, 10, 9, 30, 0, 0, time.Local)
	uc := usecase.NewViewerUsecase(repo, func() time.Time { return now })

	uc.Track(ctx)
	require.Len(t, repo.rows, 1)
	assert.Equal(t, int64(1), repo.rows["2024-03-10"].Count)

	now = now.Add(5 * time.Hour)
	uc.Track(ctx)
	assert.Equal(t, int64(2), repo.rows["2024-03-10"].Count)

	now = now.Add(24 * time.Hour)
	uc.Track(ctx)
	require.Len(t, repo.rows, 2)
	assert.Equal(t, int64(1), repo.rows["2024-03-11"].Count)
	assert.Equal(t, int64(2), repo.rows["2024-03-10"].Count)
}

func TestTrackSwallowsErrors(t *testing.T) {
	repo := newMemoryViewerRepo()
	repo.err = errors.New("db down")
	uc := usecase.NewViewerUsecase(repo, nil)

	assert.NotPanics(t, func() { uc.Track(context.Background()) })
}

func TestStatsStart(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 4, 5, 0, time.Local)

	tests := []struct {
		rangeName string
		want      time.Time
	}{
		{"", time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local)},
		{"today", time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local)},
		{"week", time.Date(2024, 3, 4, 0, 0, 0, 0, time.Local)},
		{"month", time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)},
	}
	for _, tt := range tests {
		t.Run(tt.rangeName, func(t *testing.T) {
			got, err := usecase.StatsStart(now, tt.rangeName)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}

	_, err := usecase.StatsStart(now, "year")
	requireAppError(t, err, http.StatusBadRequest)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.Local)

	t.Run("Should default to today grouped by day", func(t *testing.T) {
		repo := new(MockViewerRepo)
		uc := usecase.NewViewerUsecase(repo, func() time.Time { return now })
		points := []domain.StatPoint{{Label: "2024-03-10", Value: 7}}
		repo.On("Aggregate", ctx, time.Date(2024, 3, 10, 0, 0, 0, 0, time.Local), domain.GroupDay).Return(points, nil)

		got, err := uc.Stats(ctx, "", "")
		require.NoError(t, err)
		assert.Equal(t, points, got)
	})

	t.Run("Should pass month grouping through", func(t *testing.T) {
		repo := new(MockViewerRepo)
		uc := usecase.NewViewerUsecase(repo, func() time.Time { return now })
		repo.On("Aggregate", ctx, mock.Anything, domain.GroupMonth).Return([]domain.StatPoint{}, nil)

		_, err := uc.Stats(ctx, "month", "month")
		require.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("Should reject unknown group", func(t *testing.T) {
		repo := new(MockViewerRepo)
		uc := usecase.NewViewerUsecase(repo, func() time.Time { return now })

		_, err := uc.Stats(ctx, "week", "hour")
		requireAppError(t, err, http.StatusBadRequest)
		repo.AssertNotCalled(t, "Aggregate", mock.Anything, mock.Anything, mock.Anything)
	})
}
