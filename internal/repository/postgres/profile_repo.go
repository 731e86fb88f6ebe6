package postgres

import (
	"context"
	"errors"
	"inys-backend/internal/domain"
	"inys-backend/pkg/apperror"
	"inys-backend/pkg/database"

	"github.com/jackc/pgx/v5"
)

const profileColumns = `id, user_id, university, to_char(birth, 'YYYY-MM-DD'), phone, identifier, avatar_id, created_at, updated_at`

type profileRepo struct {
	db    database.Querier
	files domain.FileRepository
	users domain.UserRepository
}

func NewProfileRepository(db database.Querier, files domain.FileRepository, users domain.UserRepository) domain.ProfileRepository {
	return &profileRepo{db: db, files: files, users: users}
}

func (r *profileRepo) Create(ctx context.Context, p *domain.Profile) error {
	query := `INSERT INTO profiles (user_id, university, birth, phone, identifier, avatar_id)
              VALUES ($1, $2, $3::date, $4, $5, $6)
              RETURNING id, created_at, updated_at`
	err := database.Conn(ctx, r.db).QueryRow(ctx, query,
		p.UserID, p.University, p.Birth, p.Phone, p.Identifier, p.AvatarID,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isPgError(err, pgUniqueViolation) {
			return apperror.Conflict("User already has a profile")
		}
		return apperror.Internal(err)
	}
	return nil
}

func (r *profileRepo) GetByUserID(ctx context.Context, userID int64) (*domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1 ORDER BY id LIMIT 1`
	return r.getOne(ctx, query, userID)
}

func (r *profileRepo) GetByID(ctx context.Context, id int64) (*domain.Profile, error) {
	return r.getOne(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = $1`, id)
}

func (r *profileRepo) getOne(ctx context.Context, query string, arg int64) (*domain.Profile, error) {
	p, err := scanProfile(database.Conn(ctx, r.db).QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	if err := r.populate(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *profileRepo) ListByUserID(ctx context.Context, userID int64) ([]domain.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1 ORDER BY id`
	rows, err := database.Conn(ctx, r.db).Query(ctx, query, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	defer rows.Close()

	profiles := []domain.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		profiles = append(profiles, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Internal(err)
	}

	for i := range profiles {
		if err := r.populate(ctx, &profiles[i]); err != nil {
			return nil, err
		}
	}
	return profiles, nil
}

func (r *profileRepo) Update(ctx context.Context, p *domain.Profile) error {
	query := `UPDATE profiles
              SET university = $2, birth = $3::date, phone = $4, identifier = $5, updated_at = NOW()
              WHERE id = $1
              RETURNING updated_at`
	err := database.Conn(ctx, r.db).QueryRow(ctx, query,
		p.ID, p.University, p.Birth, p.Phone, p.Identifier,
	).Scan(&p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperror.NotFound("Profile not found")
	}
	if err != nil {
		return apperror.Internal(err)
	}
	return nil
}

func (r *profileRepo) SetAvatar(ctx context.Context, profileID, fileID int64) error {
	query := `UPDATE profiles SET avatar_id = $2, updated_at = NOW() WHERE id = $1`
	tag, err := database.Conn(ctx, r.db).Exec(ctx, query, profileID, fileID)
	if err != nil {
		return apperror.Internal(err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("Profile not found")
	}
	return nil
}

// populate fills the avatar and user relations.
func (r *profileRepo) populate(ctx context.Context, p *domain.Profile) error {
	avatar, err := loadFile(ctx, r.files, p.AvatarID)
	if err != nil {
		return err
	}
	p.Avatar = avatar

	user, err := r.users.GetByID(ctx, p.UserID)
	if err != nil {
		return err
	}
	p.User = user
	return nil
}

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var p domain.Profile
	err := row.Scan(
		&p.ID, &p.UserID, &p.University, &p.Birth, &p.Phone, &p.Identifier, &p.AvatarID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
