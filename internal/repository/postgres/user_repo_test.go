package postgres

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"inys-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserDuplicateEmail(t *testing.T) {
	db := newMockDB(t)
	db.ExpectQuery(`^INSERT INTO admin_users`).
		WithArgs("Jane", "Doe", "jane@example.com", "hash", true).
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})

	err := NewUserRepository(db).Create(context.Background(), &domain.AdminUser{
		Firstname: "Jane", Lastname: "Doe", Email: "Jane@Example.com", PasswordHash: "hash", IsActive: true,
	})
	appErr := requireAppError(t, err, http.StatusConflict)
	assert.Equal(t, "User with this email already exists", appErr.Message)
}

func TestGetByEmailLowercases(t *testing.T) {
	db := newMockDB(t)
	db.ExpectQuery(`FROM admin_users WHERE email = \$1$`).WithArgs("jane@example.com").WillReturnError(pgx.ErrNoRows)

	got, err := NewUserRepository(db).GetByEmail(context.Background(), "Jane@Example.com")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUpdateAccount(t *testing.T) {
	const updateQuery = `(?s)^UPDATE admin_users\s+SET firstname = COALESCE\(\$2, firstname\), lastname = COALESCE\(\$3, lastname\),\s+` +
		`email = COALESCE\(\$4, email\), updated_at = NOW\(\)\s+WHERE id = \$1$`
	jane := "Jane"
	email := "Jane@Example.com"

	t.Run("Should pass missing fields as NULL", func(t *testing.T) {
		db := newMockDB(t)
		db.ExpectExec(updateQuery).WithArgs(int64(4), &jane, (*string)(nil), (*string)(nil)).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := NewUserRepository(db).UpdateAccount(context.Background(), 4, domain.AccountUpdate{Firstname: &jane})
		require.NoError(t, err)
	})

	t.Run("Should lowercase the email", func(t *testing.T) {
		db := newMockDB(t)
		lower := "jane@example.com"
		db.ExpectExec(updateQuery).WithArgs(int64(4), (*string)(nil), (*string)(nil), &lower).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		err := NewUserRepository(db).UpdateAccount(context.Background(), 4, domain.AccountUpdate{Email: &email})
		require.NoError(t, err)
		assert.Equal(t, "Jane@Example.com", email)
	})

	t.Run("Should map a taken email to conflict", func(t *testing.T) {
		db := newMockDB(t)
		db.ExpectExec(updateQuery).WithArgs(int64(4), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})

		err := NewUserRepository(db).UpdateAccount(context.Background(), 4, domain.AccountUpdate{Email: &email})
		requireAppError(t, err, http.StatusConflict)
	})

	t.Run("Should report a missing user", func(t *testing.T) {
		db := newMockDB(t)
		db.ExpectExec(updateQuery).WithArgs(int64(4), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := NewUserRepository(db).UpdateAccount(context.Background(), 4, domain.AccountUpdate{Firstname: &jane})
		requireAppError(t, err, http.StatusNotFound)
	})

	t.Run("Should wrap other errors", func(t *testing.T) {
		db := newMockDB(t)
		db.ExpectExec(updateQuery).WithArgs(int64(4), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(errors.New("connection reset"))

		err := NewUserRepository(db).UpdateAccount(context.Background(), 4, domain.AccountUpdate{Firstname: &jane})
		requireAppError(t, err, http.StatusInternalServerError)
	})
}
