package postgres

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"inys-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const markAcceptedQuery = `^UPDATE applicants SET accepted = TRUE, updated_at = NOW\(\) WHERE id = \$1 AND accepted = FALSE$`

func TestMarkAccepted(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{name: "Should report the flip of a pending applicant", affected: 1, want: true},
		{name: "Should report false when already accepted", affected: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newMockDB(t)
			db.ExpectExec(markAcceptedQuery).WithArgs(int64(5)).
				WillReturnResult(pgxmock.NewResult("UPDATE", tt.affected))

			got, err := NewApplicantRepository(db, NewFileRepository(db)).MarkAccepted(context.Background(), 5)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("Should wrap driver errors", func(t *testing.T) {
		db := newMockDB(t)
		db.ExpectExec(markAcceptedQuery).WithArgs(int64(5)).WillReturnError(errors.New("deadlock detected"))

		_, err := NewApplicantRepository(db, NewFileRepository(db)).MarkAccepted(context.Background(), 5)
		requireAppError(t, err, http.StatusInternalServerError)
	})
}

func TestGetByIDForUpdateLocksRow(t *testing.T) {
	const lockQuery = `(?s)^SELECT .+ FROM applicants WHERE id = \$1 FOR UPDATE$`
	columns := []string{"id", "name", "email", "university", "birth", "cv_id", "accepted", "created_at", "updated_at"}
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	t.Run("Should scan the locked row", func(t *testing.T) {
		db := newMockDB(t)
		birth := "2001-02-03"
		db.ExpectQuery(lockQuery).WithArgs(int64(5)).WillReturnRows(pgxmock.NewRows(columns).
			AddRow(int64(5), "Jane Doe", "jane@example.com", "ITB", &birth, (*int64)(nil), false, now, now))

		got, err := NewApplicantRepository(db, NewFileRepository(db)).GetByIDForUpdate(context.Background(), 5)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Jane Doe", got.Name)
		assert.Equal(t, "2001-02-03", *got.Birth)
		assert.Nil(t, got.CV)
		assert.False(t, got.Accepted)
	})

	t.Run("Should return nil when missing", func(t *testing.T) {
		db := newMockDB(t)
		db.ExpectQuery(lockQuery).WithArgs(int64(5)).WillReturnError(pgx.ErrNoRows)

		got, err := NewApplicantRepository(db, NewFileRepository(db)).GetByIDForUpdate(context.Background(), 5)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestCreateApplicantMapsMissingCV(t *testing.T) {
	db := newMockDB(t)
	cvID := int64(99)
	db.ExpectQuery(`^INSERT INTO applicants`).
		WithArgs("Jane Doe", "jane@example.com", "ITB", pgxmock.AnyArg(), pgxmock.AnyArg(), false).
		WillReturnError(&pgconn.PgError{Code: pgForeignKeyViolation})

	err := NewApplicantRepository(db, NewFileRepository(db)).Create(context.Background(), &domain.Applicant{
		Name: "Jane Doe", Email: "jane@example.com", University: "ITB", CVID: &cvID,
	})
	appErr := requireAppError(t, err, http.StatusBadRequest)
	assert.Equal(t, "CV file does not exist", appErr.Message)
}

func TestCountByUniversity(t *testing.T) {
	db := newMockDB(t)
	db.ExpectQuery(`(?s)^SELECT university, COUNT\(\*\), COUNT\(\*\) FILTER \(WHERE accepted\)\s+FROM applicants GROUP BY university$`).
		WillReturnRows(pgxmock.NewRows([]string{"university", "total", "accepted"}).
			AddRow("ITB", int64(3), int64(1)).
			AddRow("UGM", int64(2), int64(0)))

	got, err := NewApplicantRepository(db, NewFileRepository(db)).CountByUniversity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]domain.ApplicantCounts{
		"ITB": {Total: 3, Accepted: 1},
		"UGM": {Total: 2, Accepted: 0},
	}, got)
}
