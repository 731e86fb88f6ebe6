package usecase

import (
	"bytes"
	"context"
	"fmt"
	"inys-backend/internal/domain"
	"inys-backend/pkg/apperror"
	"inys-backend/pkg/audit"
	"inys-backend/pkg/imaging"
	"inys-backend/pkg/logger"
	"inys-backend/pkg/validation"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	avatarRelatedType = "api::profile.profile"
	avatarField       = "avatar"
)

type profileUsecase struct {
	profiles   domain.ProfileRepository
	users      domain.UserRepository
	files      domain.FileRepository
	storage    domain.FileStorage
	tx         domain.Transactor
	validate   *validator.Validate
	bcryptCost int
}

func NewProfileUsecase(
	profiles domain.ProfileRepository,
	users domain.UserRepository,
	files domain.FileRepository,
	storage domain.FileStorage,
	tx domain.Transactor,
	validate *validator.Validate,
	bcryptCost int,
) domain.ProfileUsecase {
	return &profileUsecase{
		profiles:   profiles,
		users:      users,
		files:      files,
		storage:    storage,
		tx:         tx,
		validate:   validate,
		bcryptCost: bcryptCost,
	}
}

// resolve finds the profile of userID. A zero userID never matches.
func (u *profileUsecase) resolve(ctx context.Context, userID int64) (*domain.Profile, error) {
	if userID <= 0 {
		return nil, apperror.NotFound("Profile not found")
	}
	profile, err := u.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperror.NotFound("Profile not found")
	}
	return profile, nil
}

func (u *profileUsecase) GetMe(ctx context.Context, userID int64) (*domain.Profile, error) {
	return u.resolve(ctx, userID)
}

func (u *profileUsecase) UpdateMe(ctx context.Context, userID int64, input domain.UpdateMeInput) (*domain.Profile, error) {
	profile, err := u.resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	input.Firstname = trimmed(input.Firstname)
	input.Lastname = trimmed(input.Lastname)
	input.Email = trimmed(input.Email)
	if err := u.validate.Struct(input); err != nil {
		return nil, apperror.BadRequest(validation.Message(err))
	}
	for _, f := range []struct {
		label string
		value *string
	}{{"Firstname", input.Firstname}, {"Lastname", input.Lastname}, {"Email", input.Email}} {
		if err := nonBlank(f.label, f.value); err != nil {
			return nil, err
		}
	}

	account := domain.AccountUpdate{Firstname: input.Firstname, Lastname: input.Lastname, Email: input.Email}
	err = u.tx.WithinTx(ctx, func(ctx context.Context) error {
		applyProfileFields(profile, input.ProfileFields)
		if err := u.profiles.Update(ctx, profile); err != nil {
			return err
		}
		if account.Empty() {
			return nil
		}
		return u.users.UpdateAccount(ctx, profile.UserID, account)
	})
	if err != nil {
		return nil, err
	}

	return u.resolve(ctx, userID)
}

// UpdateAvatar stores a downscaled JPEG of the upload and links it to the profile.
func (u *profileUsecase) UpdateAvatar(ctx context.Context, userID int64, upload domain.Upload) (*domain.File, error) {
	profile, err := u.resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	if _, err := imaging.Validate(upload.Filename, upload.Data); err != nil {
		return nil, apperror.BadRequest(fmt.Sprintf("Invalid avatar: %v", err))
	}

	img, err := imaging.Compress(upload.Data, imaging.MaxDimension, imaging.JPEGQuality)
	if err != nil {
		return nil, apperror.BadRequest("Avatar could not be processed as an image")
	}

	name := imaging.SanitizeFilename(upload.Filename)
	key := fmt.Sprintf("avatars/%s_%s%s", uuid.NewString(), name, img.Ext)

	url, err := u.storage.Put(ctx, key, bytes.NewReader(img.Data), int64(len(img.Data)), img.Mime)
	if err != nil {
		return nil, apperror.Internal(fmt.Errorf("upload avatar: %w", err))
	}

	relatedType, field, relatedID := avatarRelatedType, avatarField, profile.ID
	file := &domain.File{
		Name:        name + img.Ext,
		ObjectKey:   key,
		Ext:         img.Ext,
		Mime:        img.Mime,
		Size:        int64(len(img.Data)),
		Width:       &img.Width,
		Height:      &img.Height,
		URL:         url,
		RelatedType: &relatedType,
		RelatedID:   &relatedID,
		Field:       &field,
	}

	previous := profile.Avatar
	err = u.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := u.files.Create(ctx, file); err != nil {
			return err
		}
		if err := u.profiles.SetAvatar(ctx, profile.ID, file.ID); err != nil {
			return err
		}
		if previous != nil {
			return u.files.Delete(ctx, previous.ID)
		}
		return nil
	})
	if err != nil {
		// The object is orphaned without its files row
		if derr := u.storage.Delete(ctx, key); derr != nil {
			logger.Log.Error("Failed to remove orphaned avatar", "key", key, "error", derr)
		}
		return nil, err
	}

	if previous != nil && previous.ObjectKey != "" {
		if err := u.storage.Delete(ctx, previous.ObjectKey); err != nil {
			logger.Log.Warn("Failed to remove replaced avatar", "key", previous.ObjectKey, "error", err)
		}
	}

	return file, nil
}

func (u *profileUsecase) ChangePassword(ctx context.Context, userID int64, input domain.ChangePasswordInput) error {
	if userID <= 0 {
		return apperror.NotFound("User not found")
	}
	if input.NewPassword != input.ConfirmPassword {
		return apperror.BadRequest("Passwords do not match")
	}
	if len(input.NewPassword) < minPasswordLength {
		return apperror.BadRequest(fmt.Sprintf("Password must be at least %d characters", minPasswordLength))
	}

	user, err := u.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return apperror.NotFound("User not found")
	}
	if !checkPassword(user.PasswordHash, input.CurrentPassword) {
		return apperror.BadRequest("Current password is incorrect")
	}

	hash, err := hashPassword(input.NewPassword, u.bcryptCost)
	if err != nil {
		return apperror.Internal(err)
	}
	if err := u.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	audit.Default().Log(ctx, audit.Event{
		Event:        audit.EventPasswordChange,
		SubjectType:  "user_id",
		SubjectValue: strconv.FormatInt(userID, 10),
		RequestID:    requestIDFrom(ctx),
	})
	return nil
}

func (u *profileUsecase) Find(ctx context.Context, userID int64) ([]domain.Profile, error) {
	if userID <= 0 {
		return []domain.Profile{}, nil
	}
	return u.profiles.ListByUserID(ctx, userID)
}

func (u *profileUsecase) FindOne(ctx context.Context, id int64) (*domain.Profile, error) {
	profile, err := u.profiles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperror.NotFound("Profile not found")
	}
	return profile, nil
}

func (u *profileUsecase) Update(ctx context.Context, id int64, input domain.UpdateProfileInput) (*domain.Profile, error) {
	if err := u.validate.Struct(input); err != nil {
		return nil, apperror.BadRequest(validation.Message(err))
	}

	profile, err := u.FindOne(ctx, id)
	if err != nil {
		return nil, err
	}

	applyProfileFields(profile, input.ProfileFields)
	if input.Identifier != nil {
		profile.Identifier = *input.Identifier
	}
	if err := u.profiles.Update(ctx, profile); err != nil {
		return nil, err
	}
	return u.FindOne(ctx, id)
}
