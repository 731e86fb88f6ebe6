package postgres

import (
	"context"
	"fmt"
	"inys-backend/internal/domain"
	"inys-backend/pkg/apperror"
	"inys-backend/pkg/database"
	"time"
)

type viewerRepo struct {
	db database.Querier
}

func NewViewerRepository(db database.Querier) domain.ViewerRepository {
	return &viewerRepo{db: db}
}

// Increment relies on the unique constraint on viewers.date, so concurrent
// first views of a day collapse into one row.
func (r *viewerRepo) Increment(ctx context.Context, day time.Time) (*domain.ViewCounter, error) {
	query := `INSERT INTO viewers (date, count)
              VALUES ($1::date, 1)
              ON CONFLICT (date) DO UPDATE
              SET count = viewers.count + 1, updated_at = NOW()
              RETURNING id, date, count, created_at, updated_at`
	var v domain.ViewCounter
	err := database.Conn(ctx, r.db).QueryRow(ctx, query, day.Format(time.DateOnly)).Scan(
		&v.ID, &v.Date, &v.Count, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &v, nil
}

func (r *viewerRepo) Aggregate(ctx context.Context, start time.Time, group domain.StatsGroup) ([]domain.StatPoint, error) {
	var format string
	switch group {
	case domain.GroupDay:
		format = "YYYY-MM-DD"
	case domain.GroupMonth:
		format = "YYYY-MM"
	default:
		return nil, apperror.BadRequest(fmt.Sprintf("Unsupported group: %s", group))
	}

	query := `SELECT to_char(date, $1) AS label, SUM(count)::bigint
              FROM viewers
              WHERE date >= $2::date
              GROUP BY label
              ORDER BY label ASC`
	rows, err := database.Conn(ctx, r.db).Query(ctx, query, format, start.Format(time.DateOnly))
	if err != nil {
		return nil, apperror.Internal(err)
	}
	defer rows.Close()

	points := []domain.StatPoint{}
	for rows.Next() {
		var p domain.StatPoint
		if err := rows.Scan(&p.Label, &p.Value); err != nil {
			return nil, apperror.Internal(err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Internal(err)
	}
	return points, nil
}
