package usecase

import (
	"context"
	"inys-backend/internal/domain"
	"inys-backend/pkg/apperror"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// hashPassword bcrypts password. cost below bcrypt.MinCost falls back to the default.
func hashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(domain.KeyRequestID).(string)
	return id
}

// actorFrom returns the authenticated user id set by the auth middleware, or "".
func actorFrom(ctx context.Context) string {
	if id, ok := ctx.Value(domain.KeyUserID).(int64); ok && id > 0 {
		return strconv.FormatInt(id, 10)
	}
	return ""
}

func trimmed(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	return &s
}

// nonBlank rejects a field that is present but empty.
func nonBlank(label string, v *string) error {
	if v != nil && *v == "" {
		return apperror.BadRequest(label + " cannot be empty")
	}
	return nil
}

// applyProfileFields copies the fields present in f onto p.
func applyProfileFields(p *domain.Profile, f domain.ProfileFields) {
	if f.University != nil {
		p.University = *f.University
	}
	if f.Birth != nil {
		if *f.Birth == "" {
			p.Birth = nil
		} else {
			birth := *f.Birth
			p.Birth = &birth
		}
	}
	if f.Phone != nil {
		p.Phone = *f.Phone
	}
}
