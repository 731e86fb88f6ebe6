package postgres

import (
	"context"
	"errors"
	"inys-backend/internal/domain"
	"inys-backend/pkg/apperror"
	"inys-backend/pkg/database"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

func isPgError(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

const fileColumns = `id, name, object_key, ext, mime, size, width, height, url, related_type, related_id, field, created_at`

type fileRepo struct {
	db database.Querier
}

func NewFileRepository(db database.Querier) domain.FileRepository {
	return &fileRepo{db: db}
}

func (r *fileRepo) Create(ctx context.Context, file *domain.File) error {
	query := `INSERT INTO files (name, object_key, ext, mime, size, width, height, url, related_type, related_id, field)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
              RETURNING id, created_at`
	err := database.Conn(ctx, r.db).QueryRow(ctx, query,
		file.Name, file.ObjectKey, file.Ext, file.Mime, file.Size, file.Width, file.Height,
		file.URL, file.RelatedType, file.RelatedID, file.Field,
	).Scan(&file.ID, &file.CreatedAt)
	if err != nil {
		if isPgError(err, pgUniqueViolation) {
			return apperror.Conflict("File with this key already exists")
		}
		return apperror.Internal(err)
	}
	return nil
}

func (r *fileRepo) GetByID(ctx context.Context, id int64) (*domain.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files WHERE id = $1`
	file, err := scanFile(database.Conn(ctx, r.db).QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return file, nil
}

func (r *fileRepo) Delete(ctx context.Context, id int64) error {
	if _, err := database.Conn(ctx, r.db).Exec(ctx, `DELETE FROM files WHERE id = $1`, id); err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func scanFile(row pgx.Row) (*domain.File, error) {
	var f domain.File
	err := row.Scan(
		&f.ID, &f.Name, &f.ObjectKey, &f.Ext, &f.Mime, &f.Size, &f.Width, &f.Height,
		&f.URL, &f.RelatedType, &f.RelatedID, &f.Field, &f.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// loadFile resolves an optional file reference. A dangling id yields nil.
func loadFile(ctx context.Context, files domain.FileRepository, id *int64) (*domain.File, error) {
	if id == nil {
		return nil, nil
	}
	return files.GetByID(ctx, *id)
}
