package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"devmatch-service/internal/apperrors"
	"devmatch-service/internal/logger"
	"devmatch-service/internal/models"
	"devmatch-service/internal/repositories"
	"devmatch-service/internal/storage"
)

// MaxPictureSize is the largest accepted profile picture, in bytes.
const MaxPictureSize = 5 << 20

// Picture is an uploaded profile picture.
type Picture struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ProfileService maintains the caller's own profile.
type ProfileService struct {
	users  repositories.UserRepository
	images storage.ImageStore
}

func NewProfileService(users repositories.UserRepository, images storage.ImageStore) *ProfileService {
	return &ProfileService{users: users, images: images}
}

// Me returns the profile of userID.
func (s *ProfileService) Me(ctx context.Context, userID string) (models.User, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return models.User{}, userError(err)
	}
	return user, nil
}

// UpdateProfile applies the non-nil fields of update.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, update models.ProfileUpdate) (models.User, error) {
	if update.ExperienceLevel != nil && !update.ExperienceLevel.Valid() {
		return models.User{}, apperrors.Validation("Invalid experience level")
	}
	if update.LookingFor != nil && !update.LookingFor.Valid() {
		return models.User{}, apperrors.Validation("Invalid lookingFor value")
	}
	if update.Bio != nil && len([]rune(*update.Bio)) > 500 {
		return models.User{}, apperrors.Validation("Bio cannot exceed 500 characters")
	}
	if update.Skills != nil {
		skills := normalizeSkills(*update.Skills)
		update.Skills = &skills
	}
	if update.Empty() {
		return s.Me(ctx, userID)
	}

	user, err := s.users.UpdateProfile(ctx, userID, update)
	if err != nil {
		return models.User{}, userError(err)
	}
	return user, nil
}

// UploadProfilePicture stores pic and points the profile at it.
func (s *ProfileService) UploadProfilePicture(ctx context.Context, userID string, pic Picture) (models.User, error) {
	if !strings.HasPrefix(pic.ContentType, "image/") {
		return models.User{}, apperrors.Validation("Only image files are allowed")
	}
	if pic.Size > MaxPictureSize {
		return models.User{}, apperrors.Validation("File too large, maximum size is 5MB")
	}

	key := fmt.Sprintf("profile-pictures/%s/%s%s", userID, uuid.NewString(), strings.ToLower(filepath.Ext(pic.Filename)))
	url, err := s.images.Upload(ctx, key, io.LimitReader(pic.Body, MaxPictureSize), pic.ContentType)
	if err != nil {
		if errors.Is(err, storage.ErrDisabled) {
			logger.Warn().Str("user_id", userID).Msg("profile picture upload attempted without storage")
		}
		return models.User{}, apperrors.Unexpected(err)
	}

	user, err := s.users.SetProfilePicture(ctx, userID, url)
	if err != nil {
		return models.User{}, userError(err)
	}
	return user, nil
}

// SetOnlineStatus records the presence flag and refreshes lastSeen.
func (s *ProfileService) SetOnlineStatus(ctx context.Context, userID string, online bool) error {
	if err := s.users.SetOnlineStatus(ctx, userID, online, utcNow()); err != nil {
		return userError(err)
	}
	return nil
}

func normalizeSkills(raw []string) []string {
	seen := make(map[string]struct{}, len(raw))
	skills := make([]string, 0, len(raw))
	for _, skill := range raw {
		skill = strings.TrimSpace(skill)
		if skill == "" {
			continue
		}
		if _, dup := seen[strings.ToLower(skill)]; dup {
			continue
		}
		seen[strings.ToLower(skill)] = struct{}{}
		skills = append(skills, skill)
	}
	return skills
}

func userError(err error) error {
	if errors.Is(err, repositories.ErrUserNotFound) {
		return apperrors.NotFound("User not found")
	}
	return apperrors.Unexpected(err)
}
