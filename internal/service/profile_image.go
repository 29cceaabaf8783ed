package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Salo-Quispe/backend-poli-path/internal/logger"
	"github.com/Salo-Quispe/backend-poli-path/internal/model"
)

// ProfileImage stores account profile pictures in object storage and keeps
// the object key and public URL on the account record.
type ProfileImage struct {
	users         model.UserStore
	storage       model.Storage
	publicBaseURL string
	logger        *logger.Logger
}

func NewProfileImage(users model.UserStore, storage model.Storage, publicBaseURL string, logger *logger.Logger) *ProfileImage {
	return &ProfileImage{
		users:         users,
		storage:       storage,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        logger,
	}
}

var allowedImageExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
}

// Upload stores the image under a key derived from the account ID, updates
// the account's image columns and removes the previously stored object if
// its key changed.
func (s *ProfileImage) Upload(ctx context.Context, user model.User, filename string, reader io.Reader) (model.User, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedImageExtensions[ext]; !ok {
		return model.User{}, &model.ValidationError{Field: "file", Message: "only png, jpg, jpeg and gif images are accepted"}
	}

	key := user.ID.String() + ext
	if err := s.storage.Upload(ctx, key, reader); err != nil {
		return model.User{}, fmt.Errorf("failed to upload profile image: %w", err)
	}

	url := fmt.Sprintf("%s/user/profile-image/%s", s.publicBaseURL, key)
	updated, err := s.users.Update(ctx, user.ID, model.UserUpdate{
		ProfileImageName: &key,
		ProfileImageURL:  &url,
	})
	if err != nil {
		return model.User{}, fmt.Errorf("failed to record profile image: %w", err)
	}

	if user.ProfileImageName != "" && user.ProfileImageName != key {
		if err := s.storage.Delete(ctx, user.ProfileImageName); err != nil {
			s.logger.Error("ProfileImage service: failed to delete previous image",
				"key", user.ProfileImageName,
				"error", err.Error())
		}
	}

	s.logger.Info("ProfileImage service: image uploaded",
		"user_id", user.ID.String(),
		"key", key)

	return updated.Sanitized(), nil
}

// Fetch streams a stored image by its object key.
func (s *ProfileImage) Fetch(ctx context.Context, key string) (io.ReadCloser, error) {
	exists, err := s.storage.Exists(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to stat profile image: %w", err)
	}
	if !exists {
		return nil, model.ErrNotFound
	}

	reader, err := s.storage.Download(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to download profile image: %w", err)
	}

	return reader, nil
}
