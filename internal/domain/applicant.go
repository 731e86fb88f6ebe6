package domain

import (
	"context"
	"time"
)

type Applicant struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	University string    `json:"university"`
	Birth      *string   `json:"birth"` // YYYY-MM-DD
	CVID       *int64    `json:"-"`
	CV         *File     `json:"cv"`
	Accepted   bool      `json:"accepted"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type CreateApplicantInput struct {
	Name       string  `json:"name" validate:"required,max=255,valid_name,no_emoji"`
	Email      string  `json:"email" validate:"required,email,max=255"`
	University string  `json:"university" validate:"required,max=255"`
	Birth      *string `json:"birth" validate:"omitempty,datetime=2006-01-02"`
	CVID       *int64  `json:"cv" validate:"omitempty,gt=0"`
}

// AcceptResult is what the acceptance workflow produced.
type AcceptResult struct {
	Applicant *Applicant `json:"data"`
	User      *AdminUser `json:"user"`
	Profile   *Profile   `json:"profile"`
}

type ApplicantSummary struct {
	Total        int64            `json:"total"`
	Accepted     int64            `json:"accepted"`
	Pending      int64            `json:"pending"`
	ByUniversity map[string]int64 `json:"byUniversity"`
}

// ExportFile is a rendered export ready to stream.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// AccountNotice tells a newly provisioned author how to sign in.
type AccountNotice struct {
	Name     string
	Email    string
	LoginURL string
}

type AccountNotifier interface {
	SendAccountCreated(ctx context.Context, notice AccountNotice) error
}

type ApplicantRepository interface {
	Create(ctx context.Context, applicant *Applicant) error
	// GetByID returns nil, nil when no row matches.
	GetByID(ctx context.Context, id int64) (*Applicant, error)
	// GetByIDForUpdate locks the row until the surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id int64) (*Applicant, error)
	Fetch(ctx context.Context, limit, offset int) ([]Applicant, int64, error)
	FetchAll(ctx context.Context) ([]Applicant, error)
	// MarkAccepted flips accepted only if it is still false; false means nothing changed.
	MarkAccepted(ctx context.Context, id int64) (bool, error)
	CountByUniversity(ctx context.Context) (map[string]ApplicantCounts, error)
}

// ApplicantCounts holds per-bucket totals returned by the summary query.
type ApplicantCounts struct {
	Total    int64
	Accepted int64
}

type ApplicantUsecase interface {
	Create(ctx context.Context, input CreateApplicantInput) (*Applicant, error)
	List(ctx context.Context, page, pageSize int) ([]Applicant, *Pagination, error)
	Get(ctx context.Context, id int64) (*Applicant, error)
	Accept(ctx context.Context, id int64) (*AcceptResult, error)
	Summary(ctx context.Context) (*ApplicantSummary, error)
	Export(ctx context.Context, format string) (*ExportFile, error)
}
