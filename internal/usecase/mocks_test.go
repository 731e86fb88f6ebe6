package usecase_test

import (
	"context"
	"inys-backend/internal/domain"
	"inys-backend/pkg/apperror"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// fakeTx runs fn inline and reports whether it was used.
type fakeTx struct {
	calls int
}

func (f *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type MockApplicantRepo struct {
	mock.Mock
}

func (m *MockApplicantRepo) Create(ctx context.Context, a *domain.Applicant) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockApplicantRepo) GetByID(ctx context.Context, id int64) (*domain.Applicant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Applicant), args.Error(1)
}

func (m *MockApplicantRepo) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Applicant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Applicant), args.Error(1)
}

func (m *MockApplicantRepo) Fetch(ctx context.Context, limit, offset int) ([]domain.Applicant, int64, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Applicant), args.Get(1).(int64), args.Error(2)
}

func (m *MockApplicantRepo) FetchAll(ctx context.Context) ([]domain.Applicant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Applicant), args.Error(1)
}

func (m *MockApplicantRepo) MarkAccepted(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockApplicantRepo) CountByUniversity(ctx context.Context) (map[string]domain.ApplicantCounts, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.ApplicantCounts), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendAccountCreated(ctx context.Context, notice domain.AccountNotice) error {
	return m.Called(ctx, notice).Error(0)
}

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.AdminUser) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id int64) (*domain.AdminUser, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AdminUser), args.Error(1)
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.AdminUser, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AdminUser), args.Error(1)
}

func (m *MockUserRepo) UpdateAccount(ctx context.Context, id int64, update domain.AccountUpdate) error {
	return m.Called(ctx, id, update).Error(0)
}

func (m *MockUserRepo) UpdatePassword(ctx context.Context, id int64, hash string) error {
	return m.Called(ctx, id, hash).Error(0)
}

type MockRoleRepo struct {
	mock.Mock
}

func (m *MockRoleRepo) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Role), args.Error(1)
}

type MockProfileRepo struct {
	mock.Mock
}

func (m *MockProfileRepo) Create(ctx context.Context, p *domain.Profile) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProfileRepo) GetByUserID(ctx context.Context, userID int64) (*domain.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileRepo) GetByID(ctx context.Context, id int64) (*domain.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Profile), args.Error(1)
}

func (m *MockProfileRepo) ListByUserID(ctx context.Context, userID int64) ([]domain.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Profile), args.Error(1)
}

func (m *MockProfileRepo) Update(ctx context.Context, p *domain.Profile) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProfileRepo) SetAvatar(ctx context.Context, profileID, fileID int64) error {
	return m.Called(ctx, profileID, fileID).Error(0)
}

type MockFileRepo struct {
	mock.Mock
}

func (m *MockFileRepo) Create(ctx context.Context, f *domain.File) error {
	return m.Called(ctx, f).Error(0)
}

func (m *MockFileRepo) GetByID(ctx context.Context, id int64) (*domain.File, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.File), args.Error(1)
}

func (m *MockFileRepo) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) (string, error) {
	args := m.Called(ctx, key, body, size, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type MockArticleRepo struct {
	mock.Mock
}

func (m *MockArticleRepo) Fetch(ctx context.Context, limit, offset int) ([]domain.Article, int64, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Article), args.Get(1).(int64), args.Error(2)
}

func (m *MockArticleRepo) GetByID(ctx context.Context, id int64) (*domain.Article, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Article), args.Error(1)
}

func (m *MockArticleRepo) IncrementViews(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type MockViewerRepo struct {
	mock.Mock
}

func (m *MockViewerRepo) Increment(ctx context.Context, day time.Time) (*domain.ViewCounter, error) {
	args := m.Called(ctx, day)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ViewCounter), args.Error(1)
}

func (m *MockViewerRepo) Aggregate(ctx context.Context, start time.Time, group domain.StatsGroup) ([]domain.StatPoint, error) {
	args := m.Called(ctx, start, group)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StatPoint), args.Error(1)
}

// memoryViewerRepo mirrors the upsert semantics of the postgres repository.
type memoryViewerRepo struct {
	rows map[string]*domain.ViewCounter
	err  error
}

func newMemoryViewerRepo() *memoryViewerRepo {
	return &memoryViewerRepo{rows: make(map[string]*domain.ViewCounter)}
}

func (r *memoryViewerRepo) Increment(_ context.Context, day time.Time) (*domain.ViewCounter, error) {
	if r.err != nil {
		return nil, r.err
	}
	key := day.Format(time.DateOnly)
	row, ok := r.rows[key]
	if !ok {
		row = &domain.ViewCounter{ID: int64(len(r.rows) + 1), Date: day}
		r.rows[key] = row
	}
	row.Count++
	copied := *row
	return &copied, nil
}

func (r *memoryViewerRepo) Aggregate(context.Context, time.Time, domain.StatsGroup) ([]domain.StatPoint, error) {
	return nil, nil
}

// landingRepo is a single-row landing page store.
type landingRepo struct {
	page *domain.Landingpage
}

func (r *landingRepo) Fetch(context.Context, int, int) ([]domain.Landingpage, int64, error) {
	if r.page == nil {
		return []domain.Landingpage{}, 0, nil
	}
	return []domain.Landingpage{*r.page}, 1, nil
}

func (r *landingRepo) GetByID(_ context.Context, id int64) (*domain.Landingpage, error) {
	if r.page == nil || r.page.ID != id {
		return nil, nil
	}
	p := *r.page
	return &p, nil
}

func requireAppError(t *testing.T, err error, code int) *apperror.AppError {
	t.Helper()
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, code, appErr.Code, appErr.Message)
	return appErr
}
