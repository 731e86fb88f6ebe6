package postgres

import (
	"context"
	"errors"
	"inys-backend/internal/domain"
	"inys-backend/pkg/apperror"
	"inys-backend/pkg/database"

	"github.com/jackc/pgx/v5"
)

const applicantColumns = `id, name, email, university, to_char(birth, 'YYYY-MM-DD'), cv_id, accepted, created_at, updated_at`

type applicantRepo struct {
	db    database.Querier
	files domain.FileRepository
}

func NewApplicantRepository(db database.Querier, files domain.FileRepository) domain.ApplicantRepository {
	return &applicantRepo{db: db, files: files}
}

func (r *applicantRepo) Create(ctx context.Context, a *domain.Applicant) error {
	query := `INSERT INTO applicants (name, email, university, birth, cv_id, accepted)
              VALUES ($1, $2, $3, $4::date, $5, $6)
              RETURNING id, created_at, updated_at`
	err := database.Conn(ctx, r.db).QueryRow(ctx, query,
		a.Name, a.Email, a.University, a.Birth, a.CVID, a.Accepted,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if isPgError(err, pgForeignKeyViolation) {
			return apperror.BadRequest("CV file does not exist")
		}
		return apperror.Internal(err)
	}
	return r.attachCV(ctx, a)
}

func (r *applicantRepo) GetByID(ctx context.Context, id int64) (*domain.Applicant, error) {
	return r.getOne(ctx, `SELECT `+applicantColumns+` FROM applicants WHERE id = $1`, id)
}

func (r *applicantRepo) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Applicant, error) {
	return r.getOne(ctx, `SELECT `+applicantColumns+` FROM applicants WHERE id = $1 FOR UPDATE`, id)
}

func (r *applicantRepo) getOne(ctx context.Context, query string, id int64) (*domain.Applicant, error) {
	a, err := scanApplicant(database.Conn(ctx, r.db).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if err := r.attachCV(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (r *applicantRepo) Fetch(ctx context.Context, limit, offset int) ([]domain.Applicant, int64, error) {
	db := database.Conn(ctx, r.db)

	var total int64
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM applicants`).Scan(&total); err != nil {
		return nil, 0, apperror.Internal(err)
	}

	query := `SELECT ` + applicantColumns + ` FROM applicants ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`
	applicants, err := r.list(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return applicants, total, nil
}

func (r *applicantRepo) FetchAll(ctx context.Context) ([]domain.Applicant, error) {
	return r.list(ctx, `SELECT `+applicantColumns+` FROM applicants ORDER BY created_at ASC, id ASC`)
}

func (r *applicantRepo) list(ctx context.Context, query string, args ...any) ([]domain.Applicant, error) {
	rows, err := database.Conn(ctx, r.db).Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	defer rows.Close()

	applicants := []domain.Applicant{}
	for rows.Next() {
		a, err := scanApplicant(rows)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		applicants = append(applicants, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Internal(err)
	}

	for i := range applicants {
		if err := r.attachCV(ctx, &applicants[i]); err != nil {
			return nil, err
		}
	}
	return applicants, nil
}

func (r *applicantRepo) MarkAccepted(ctx context.Context, id int64) (bool, error) {
	query := `UPDATE applicants SET accepted = TRUE, updated_at = NOW() WHERE id = $1 AND accepted = FALSE`
	tag, err := database.Conn(ctx, r.db).Exec(ctx, query, id)
	if err != nil {
		return false, apperror.Internal(err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *applicantRepo) CountByUniversity(ctx context.Context) (map[string]domain.ApplicantCounts, error) {
	query := `SELECT university, COUNT(*), COUNT(*) FILTER (WHERE accepted)
              FROM applicants GROUP BY university`
	rows, err := database.Conn(ctx, r.db).Query(ctx, query)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	defer rows.Close()

	counts := make(map[string]domain.ApplicantCounts)
	for rows.Next() {
		var university string
		var c domain.ApplicantCounts
		if err := rows.Scan(&university, &c.Total, &c.Accepted); err != nil {
			return nil, apperror.Internal(err)
		}
		counts[university] = c
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Internal(err)
	}
	return counts, nil
}

func (r *applicantRepo) attachCV(ctx context.Context, a *domain.Applicant) error {
	cv, err := loadFile(ctx, r.files, a.CVID)
	if err != nil {
		return err
	}
	a.CV = cv
	return nil
}

func scanApplicant(row pgx.Row) (*domain.Applicant, error) {
	var a domain.Applicant
	err := row.Scan(
		&a.ID, &a.Name, &a.Email, &a.University, &a.Birth, &a.CVID, &a.Accepted, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
