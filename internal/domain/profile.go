package domain

import (
	"context"
	"time"
)

// Profile is member information attached 1:1 to an admin user.
type Profile struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"-"`
	University string     `json:"university"`
	Birth      *string    `json:"birth"` // YYYY-MM-DD
	Phone      string     `json:"phone"`
	Identifier string     `json:"identifier"`
	AvatarID   *int64     `json:"-"`
	Avatar     *File      `json:"avatar"`
	User       *AdminUser `json:"user,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// ProfileFields are the member fields both update routes accept. A nil field
// keeps its stored value; an empty birth clears the date.
type ProfileFields struct {
	University *string `json:"university,omitempty" validate:"omitempty,max=255"`
	Birth      *string `json:"birth,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Phone      *string `json:"phone,omitempty" validate:"omitempty,valid_phone"`
}

// UpdateMeInput is the self-service payload of the profile edit page.
type UpdateMeInput struct {
	ProfileFields
	Firstname *string `json:"firstname,omitempty" validate:"omitempty,max=255,valid_name"`
	Lastname  *string `json:"lastname,omitempty" validate:"omitempty,max=255"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email,max=255"`
}

// UpdateProfileInput is the payload of the core profile update route.
type UpdateProfileInput struct {
	ProfileFields
	Identifier *string `json:"identifier,omitempty" validate:"omitempty,max=64"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

type ProfileRepository interface {
	Create(ctx context.Context, profile *Profile) error
	// GetByUserID returns the first profile linked to userID, with avatar and user populated.
	GetByUserID(ctx context.Context, userID int64) (*Profile, error)
	GetByID(ctx context.Context, id int64) (*Profile, error)
	ListByUserID(ctx context.Context, userID int64) ([]Profile, error)
	Update(ctx context.Context, profile *Profile) error
	SetAvatar(ctx context.Context, profileID, fileID int64) error
}

type ProfileUsecase interface {
	GetMe(ctx context.Context, userID int64) (*Profile, error)
	UpdateMe(ctx context.Context, userID int64, input UpdateMeInput) (*Profile, error)
	UpdateAvatar(ctx context.Context, userID int64, upload Upload) (*File, error)
	ChangePassword(ctx context.Context, userID int64, input ChangePasswordInput) error

	Find(ctx context.Context, userID int64) ([]Profile, error)
	FindOne(ctx context.Context, id int64) (*Profile, error)
	Update(ctx context.Context, id int64, input UpdateProfileInput) (*Profile, error)
}
