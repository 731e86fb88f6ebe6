package usecase

import (
	"context"
	"errors"
	"fmt"
	"inys-backend/internal/domain"
	"inys-backend/pkg/apperror"
	"inys-backend/pkg/audit"
	"inys-backend/pkg/auth"
	"inys-backend/pkg/logger"
	"math"
	"strconv"
	"strings"
)

type authUsecase struct {
	userRepo domain.UserRepository
	signer   *auth.Signer
	guard    domain.LoginGuard
}

// NewAuthUsecase builds the admin login. guard may be nil to disable lockout.
func NewAuthUsecase(userRepo domain.UserRepository, signer *auth.Signer, guard domain.LoginGuard) domain.AuthUsecase {
	return &authUsecase{userRepo: userRepo, signer: signer, guard: guard}
}

func (u *authUsecase) Login(ctx context.Context, email, password string) (*domain.LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperror.BadRequest("Email and password are required")
	}

	if err := u.checkBlocked(ctx, email); err != nil {
		return nil, err
	}

	user, err := u.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive || !checkPassword(user.PasswordHash, password) {
		audit.Default().Log(ctx, audit.Event{
			Event:        audit.EventLoginFailed,
			SubjectType:  "email",
			SubjectValue: email,
			RequestID:    requestIDFrom(ctx),
		})
		u.recordFailure(ctx, email)
		return nil, apperror.Unauthorized("Invalid email or password")
	}

	token, expiresAt, err := u.signer.Sign(user.ID, user.Email, user.RoleNames())
	if err != nil {
		if errors.Is(err, auth.ErrNoSigningKeys) {
			return nil, apperror.Misconfigured("Login is unavailable: APP_KEYS is not configured")
		}
		return nil, apperror.Internal(err)
	}

	if u.guard != nil {
		if err := u.guard.Reset(ctx, email); err != nil {
			logger.Log.Warn("Failed to clear login attempts", "error", err)
		}
	}

	audit.Default().Log(ctx, audit.Event{
		Event:        audit.EventLoginSuccess,
		SubjectType:  "user_id",
		SubjectValue: strconv.FormatInt(user.ID, 10),
		RequestID:    requestIDFrom(ctx),
	})

	return &domain.LoginResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (u *authUsecase) Authenticate(ctx context.Context, token string) (*domain.AdminUser, error) {
	claims, err := u.signer.Verify(token)
	if err != nil {
		return nil, apperror.Unauthorized("Invalid or expired token")
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, apperror.Unauthorized("Invalid token subject")
	}

	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, apperror.Unauthorized("User is inactive or no longer exists")
	}
	return user, nil
}

// checkBlocked rejects a locked email before its password is checked. Guard
// errors fail open.
func (u *authUsecase) checkBlocked(ctx context.Context, email string) error {
	if u.guard == nil {
		return nil
	}
	left, err := u.guard.Blocked(ctx, email)
	if err != nil {
		logger.Log.Warn("Login guard unavailable", "error", err)
		return nil
	}
	if left <= 0 {
		return nil
	}
	minutes := int(math.Ceil(left.Minutes()))
	return apperror.TooManyRequests(fmt.Sprintf("Too many failed login attempts. Try again in %d minute(s)", minutes))
}

func (u *authUsecase) recordFailure(ctx context.Context, email string) {
	if u.guard == nil {
		return
	}
	blocked, err := u.guard.Fail(ctx, email)
	if err != nil {
		logger.Log.Warn("Failed to record login attempt", "error", err)
	}
	if blocked {
		audit.Default().Log(ctx, audit.Event{
			Event:        audit.EventLoginBlocked,
			SubjectType:  "email",
			SubjectValue: email,
			RequestID:    requestIDFrom(ctx),
		})
	}
}
