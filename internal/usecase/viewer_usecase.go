package usecase

import (
	"context"
	"fmt"
	"inys-backend/internal/domain"
	"inys-backend/pkg/apperror"
	"inys-backend/pkg/logger"
	"time"
)

type viewerUsecase struct {
	repo domain.ViewerRepository
	now  func() time.Time
}

// NewViewerUsecase builds the view counter. now defaults to time.Now.
func NewViewerUsecase(repo domain.ViewerRepository, now func() time.Time) domain.ViewerUsecase {
	if now == nil {
		now = time.Now
	}
	return &viewerUsecase{repo: repo, now: now}
}

func (u *viewerUsecase) Track(ctx context.Context) {
	day := startOfDay(u.now())
	if _, err := u.repo.Increment(ctx, day); err != nil {
		logger.Log.Error("Failed to record page view", "date", day.Format(time.DateOnly), "error", err)
	}
}

func (u *viewerUsecase) Stats(ctx context.Context, rangeName, group string) ([]domain.StatPoint, error) {
	start, err := StatsStart(u.now(), rangeName)
	if err != nil {
		return nil, err
	}

	g := domain.StatsGroup(group)
	switch g {
	case "":
		g = domain.GroupDay
	case domain.GroupDay, domain.GroupMonth:
	default:
		return nil, apperror.BadRequest(fmt.Sprintf("Invalid group %q, expected day or month", group))
	}

	return u.repo.Aggregate(ctx, start, g)
}

// StatsStart returns local midnight of the first day covered by rangeName.
func StatsStart(now time.Time, rangeName string) (time.Time, error) {
	today := startOfDay(now)
	switch domain.StatsRange(rangeName) {
	case "", domain.RangeToday:
		return today, nil
	case domain.RangeWeek:
		return today.AddDate(0, 0, -6), nil
	case domain.RangeMonth:
		return time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location()), nil
	default:
		return time.Time{}, apperror.BadRequest(fmt.Sprintf("Invalid range %q, expected today, week or month", rangeName))
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
