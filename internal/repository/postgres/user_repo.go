package postgres

import (
	"context"
	"errors"
	"inys-backend/internal/domain"
	"inys-backend/pkg/apperror"
	"inys-backend/pkg/database"
	"strings"

	"github.com/jackc/pgx/v5"
)

const userColumns = `id, firstname, lastname, email, password_hash, is_active, created_at, updated_at`

type userRepo struct {
	db database.Querier
}

func NewUserRepository(db database.Querier) domain.UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *domain.AdminUser) error {
	db := database.Conn(ctx, r.db)

	query := `INSERT INTO admin_users (firstname, lastname, email, password_hash, is_active)
              VALUES ($1, $2, $3, $4, $5)
              RETURNING id, created_at, updated_at`
	err := db.QueryRow(ctx, query,
		user.Firstname, user.Lastname, strings.ToLower(user.Email), user.PasswordHash, user.IsActive,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isPgError(err, pgUniqueViolation) {
			return apperror.Conflict("User with this email already exists")
		}
		return apperror.Internal(err)
	}
	user.Email = strings.ToLower(user.Email)

	for _, role := range user.Roles {
		_, err := db.Exec(ctx, `INSERT INTO admin_users_roles (user_id, role_id) VALUES ($1, $2)`, user.ID, role.ID)
		if err != nil {
			return apperror.Internal(err)
		}
	}
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id int64) (*domain.AdminUser, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM admin_users WHERE id = $1`, id)
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.AdminUser, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM admin_users WHERE email = $1`, strings.ToLower(email))
}

func (r *userRepo) getOne(ctx context.Context, query string, arg any) (*domain.AdminUser, error) {
	db := database.Conn(ctx, r.db)

	var u domain.AdminUser
	err := db.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Firstname, &u.Lastname, &u.Email, &u.PasswordHash, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}

	roles, err := r.rolesOf(ctx, u.ID)
	if err != nil {
		return nil, err
	}
	u.Roles = roles
	return &u, nil
}

func (r *userRepo) rolesOf(ctx context.Context, userID int64) ([]domain.Role, error) {
	query := `SELECT r.id, r.name, r.code, r.description
              FROM admin_roles r
              JOIN admin_users_roles ur ON ur.role_id = r.id
              WHERE ur.user_id = $1
              ORDER BY r.id`
	rows, err := database.Conn(ctx, r.db).Query(ctx, query, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	defer rows.Close()

	roles := []domain.Role{}
	for rows.Next() {
		var role domain.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Code, &role.Description); err != nil {
			return nil, apperror.Internal(err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.Internal(err)
	}
	return roles, nil
}

func (r *userRepo) UpdateAccount(ctx context.Context, id int64, update domain.AccountUpdate) error {
	if update.Email != nil {
		email := strings.ToLower(*update.Email)
		update.Email = &email
	}
	query := `UPDATE admin_users
              SET firstname = COALESCE($2, firstname), lastname = COALESCE($3, lastname),
                  email = COALESCE($4, email), updated_at = NOW()
              WHERE id = $1`
	tag, err := database.Conn(ctx, r.db).Exec(ctx, query, id, update.Firstname, update.Lastname, update.Email)
	if err != nil {
		if isPgError(err, pgUniqueViolation) {
			return apperror.Conflict("Email is already taken")
		}
		return apperror.Internal(err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("User not found")
	}
	return nil
}

func (r *userRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	query := `UPDATE admin_users SET password_hash = $2, updated_at = NOW() WHERE id = $1`
	tag, err := database.Conn(ctx, r.db).Exec(ctx, query, id, passwordHash)
	if err != nil {
		return apperror.Internal(err)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NotFound("User not found")
	}
	return nil
}

type roleRepo struct {
	db database.Querier
}

func NewRoleRepository(db database.Querier) domain.RoleRepository {
	return &roleRepo{db: db}
}

func (r *roleRepo) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	query := `SELECT id, name, code, description FROM admin_roles WHERE name = $1`
	var role domain.Role
	err := database.Conn(ctx, r.db).QueryRow(ctx, query, name).Scan(&role.ID, &role.Name, &role.Code, &role.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return &role, nil
}
