package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"inys-backend/internal/domain"
	"inys-backend/pkg/apperror"
	"inys-backend/pkg/audit"
	"inys-backend/pkg/logger"
	"inys-backend/pkg/validation"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"
)

// AcceptConfig controls the account provisioned for an accepted applicant.
type AcceptConfig struct {
	AuthorRoleName  string
	InitialPassword string
	BcryptCost      int
	LoginURL        string // sent to the new author when a notifier is set
}

type applicantUsecase struct {
	repo     domain.ApplicantRepository
	users    domain.UserRepository
	roles    domain.RoleRepository
	profiles domain.ProfileRepository
	tx       domain.Transactor
	validate *validator.Validate
	notifier domain.AccountNotifier
	cfg      AcceptConfig
	now      func() time.Time
}

func NewApplicantUsecase(
	repo domain.ApplicantRepository,
	users domain.UserRepository,
	roles domain.RoleRepository,
	profiles domain.ProfileRepository,
	tx domain.Transactor,
	validate *validator.Validate,
	notifier domain.AccountNotifier,
	cfg AcceptConfig,
) domain.ApplicantUsecase {
	if cfg.AuthorRoleName == "" {
		cfg.AuthorRoleName = "Author"
	}
	return &applicantUsecase{
		repo:     repo,
		users:    users,
		roles:    roles,
		profiles: profiles,
		tx:       tx,
		validate: validate,
		notifier: notifier,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (u *applicantUsecase) Create(ctx context.Context, input domain.CreateApplicantInput) (*domain.Applicant, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)
	input.University = strings.TrimSpace(input.University)

	if err := u.validate.Struct(input); err != nil {
		return nil, apperror.BadRequest(validation.Message(err))
	}

	applicant := &domain.Applicant{
		Name:       input.Name,
		Email:      input.Email,
		University: input.University,
		Birth:      input.Birth,
		CVID:       input.CVID,
		Accepted:   false,
	}
	if err := u.repo.Create(ctx, applicant); err != nil {
		return nil, err
	}
	return applicant, nil
}

func (u *applicantUsecase) List(ctx context.Context, page, pageSize int) ([]domain.Applicant, *domain.Pagination, error) {
	page, pageSize = domain.NormalizePage(page, pageSize)

	applicants, total, err := u.repo.Fetch(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, nil, err
	}
	return applicants, domain.NewPagination(page, pageSize, total), nil
}

func (u *applicantUsecase) Get(ctx context.Context, id int64) (*domain.Applicant, error) {
	applicant, err := u.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if applicant == nil {
		return nil, apperror.NotFound("Applicant not found")
	}
	return applicant, nil
}

// Accept promotes an applicant to an Author account with a linked profile.
// The applicant row stays locked for the whole transaction, so a concurrent
// accept of the same applicant waits and then sees accepted = true.
func (u *applicantUsecase) Accept(ctx context.Context, id int64) (*domain.AcceptResult, error) {
	var result *domain.AcceptResult

	err := u.tx.WithinTx(ctx, func(ctx context.Context) error {
		applicant, err := u.repo.GetByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if applicant == nil {
			return apperror.NotFound("Applicant not found")
		}
		if applicant.Accepted {
			return apperror.BadRequest("Applicant already accepted")
		}

		role, err := u.roles.GetByName(ctx, u.cfg.AuthorRoleName)
		if err != nil {
			return err
		}
		if role == nil {
			return apperror.Misconfigured(fmt.Sprintf("%s role not found. Please seed the admin roles first", u.cfg.AuthorRoleName))
		}

		hash, err := hashPassword(u.cfg.InitialPassword, u.cfg.BcryptCost)
		if err != nil {
			return apperror.Internal(err)
		}

		firstname, lastname := SplitName(applicant.Name)
		user := &domain.AdminUser{
			Firstname:    firstname,
			Lastname:     lastname,
			Email:        applicant.Email,
			PasswordHash: hash,
			IsActive:     true,
			Roles:        []domain.Role{*role},
		}
		if err := u.users.Create(ctx, user); err != nil {
			return err
		}

		profile := &domain.Profile{
			UserID:     user.ID,
			University: applicant.University,
			Birth:      applicant.Birth,
		}
		if err := u.profiles.Create(ctx, profile); err != nil {
			return err
		}

		changed, err := u.repo.MarkAccepted(ctx, applicant.ID)
		if err != nil {
			return err
		}
		if !changed {
			return apperror.BadRequest("Applicant already accepted")
		}
		applicant.Accepted = true
		profile.User = user

		result = &domain.AcceptResult{Applicant: applicant, User: user, Profile: profile}
		return nil
	})
	if err != nil {
		return nil, err
	}

	audit.Default().Log(ctx, audit.Event{
		Event:        audit.EventUserCreated,
		SubjectType:  "email",
		SubjectValue: result.User.Email,
		RequestID:    requestIDFrom(ctx),
		Details: map[string]interface{}{
			"user_id":          result.User.ID,
			"applicant_id":     result.Applicant.ID,
			"role":             u.cfg.AuthorRoleName,
			"default_password": true,
		},
	})

	if u.notifier != nil {
		notice := domain.AccountNotice{Name: result.Applicant.Name, Email: result.User.Email, LoginURL: u.cfg.LoginURL}
		if err := u.notifier.SendAccountCreated(ctx, notice); err != nil {
			// The account exists either way
			logger.Log.Warn("Failed to send account notice", "applicant_id", result.Applicant.ID, "error", err)
		}
	}

	return result, nil
}

// SplitName takes the first whitespace-separated token as the first name and
// the rest as the last name. A single token yields "." as the last name.
func SplitName(name string) (string, string) {
	parts := strings.Fields(name)
	switch len(parts) {
	case 0:
		return "", "."
	case 1:
		return parts[0], "."
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

func (u *applicantUsecase) Summary(ctx context.Context) (*domain.ApplicantSummary, error) {
	counts, err := u.repo.CountByUniversity(ctx)
	if err != nil {
		return nil, err
	}

	summary := &domain.ApplicantSummary{ByUniversity: make(map[string]int64)}
	for university, c := range counts {
		summary.Total += c.Total
		summary.Accepted += c.Accepted

		key := strings.TrimSpace(university)
		if key == "" {
			key = "Unknown"
		}
		summary.ByUniversity[key] += c.Total
	}
	summary.Pending = summary.Total - summary.Accepted
	return summary, nil
}

var exportColumns = []string{"ID", "NAME", "EMAIL", "UNIVERSITY", "BIRTH", "ACCEPTED", "CV", "SUBMITTED AT"}

// Export renders every applicant as xlsx (the default) or csv.
func (u *applicantUsecase) Export(ctx context.Context, format string) (*domain.ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != "" && format != "xlsx" && format != "csv" {
		return nil, apperror.BadRequest(fmt.Sprintf("Unsupported export format: %s", format))
	}

	applicants, err := u.repo.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	if format == "" {
		format = "xlsx"
	}
	stamp := u.now().Format("20060102_150405")
	var file *domain.ExportFile
	if format == "csv" {
		data, err := exportApplicantsCSV(applicants)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		file = &domain.ExportFile{
			Filename:    "applicants_" + stamp + ".csv",
			ContentType: "text/csv",
			Data:        data,
		}
	} else {
		data, err := exportApplicantsExcel(applicants)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		file = &domain.ExportFile{
			Filename:    "applicants_" + stamp + ".xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        data,
		}
	}

	audit.Default().Log(ctx, audit.Event{
		Event:        audit.EventDataExport,
		SubjectType:  "user_id",
		SubjectValue: actorFrom(ctx),
		RequestID:    requestIDFrom(ctx),
		Details: map[string]interface{}{
			"resource": "applicants",
			"format":   format,
			"rows":     len(applicants),
		},
	})

	return file, nil
}

func applicantRow(a domain.Applicant) []interface{} {
	birth := ""
	if a.Birth != nil {
		birth = *a.Birth
	}
	cv := ""
	if a.CV != nil {
		cv = a.CV.URL
	}
	status := "PENDING"
	if a.Accepted {
		status = "ACCEPTED"
	}
	return []interface{}{a.ID, a.Name, a.Email, a.University, birth, status, cv, a.CreatedAt.Format("2006-01-02 15:04")}
}

func exportApplicantsExcel(applicants []domain.Applicant) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Applicants"
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, err
	}

	for i, header := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, header)
	}

	// Header style: dark blue background, white bold text
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(exportColumns), 1)
	f.SetCellStyle(sheetName, "A1", endCell, headerStyle)

	for rowIdx, a := range applicants {
		for colIdx, value := range applicantRow(a) {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := range exportColumns {
		colName, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, colName, colName, 24)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func exportApplicantsCSV(applicants []domain.Applicant) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(exportColumns); err != nil {
		return nil, err
	}
	for _, a := range applicants {
		row := applicantRow(a)
		record := make([]string, len(row))
		for i, v := range row {
			record[i] = fmt.Sprintf("%v", v)
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
