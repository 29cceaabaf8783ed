package service

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Salo-Quispe/backend-poli-path/internal/mocks"
	"github.com/Salo-Quispe/backend-poli-path/internal/model"
	"github.com/Salo-Quispe/backend-poli-path/internal/testutil"
)

func TestProfileImage_Upload_RejectsUnknownExtension(t *testing.T) {
	users := &mocks.UserStore{}
	storage := &mocks.Storage{}
	svc := NewProfileImage(users, storage, "http://localhost:8080", testutil.MakeNoopLogger())

	_, err := svc.Upload(context.Background(), model.User{ID: uuid.New()}, "avatar.exe", bytes.NewReader(nil))

	var validation *model.ValidationError
	require.ErrorAs(t, err, &validation)
	storage.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything, mock.Anything)
}

func TestProfileImage_Upload_Success(t *testing.T) {
	ctx := context.Background()
	users := &mocks.UserStore{}
	storage := &mocks.Storage{}
	svc := NewProfileImage(users, storage, "http://localhost:8080/", testutil.MakeNoopLogger())

	user := model.User{ID: uuid.New()}
	key := user.ID.String() + ".png"
	url := "http://localhost:8080/user/profile-image/" + key

	storage.On("Upload", ctx, key, mock.Anything).Return(nil).Once()
	users.On("Update", ctx, user.ID, mock.MatchedBy(func(u model.UserUpdate) bool {
		return u.ProfileImageName != nil && *u.ProfileImageName == key &&
			u.ProfileImageURL != nil && *u.ProfileImageURL == url
	})).Return(model.User{ID: user.ID, ProfileImageName: key, ProfileImageURL: url}, nil).Once()

	updated, err := svc.Upload(ctx, user, "Avatar.PNG", strings.NewReader("img"))
	require.NoError(t, err)
	assert.Equal(t, key, updated.ProfileImageName)
	storage.AssertExpectations(t)
	users.AssertExpectations(t)
}

func TestProfileImage_Upload_RemovesPreviousObject(t *testing.T) {
	ctx := context.Background()
	users := &mocks.UserStore{}
	storage := &mocks.Storage{}
	svc := NewProfileImage(users, storage, "http://localhost:8080", testutil.MakeNoopLogger())

	user := model.User{ID: uuid.New()}
	user.ProfileImageName = user.ID.String() + ".jpg"
	newKey := user.ID.String() + ".png"

	storage.On("Upload", ctx, newKey, mock.Anything).Return(nil).Once()
	users.On("Update", ctx, user.ID, mock.Anything).Return(model.User{ID: user.ID}, nil).Once()
	storage.On("Delete", ctx, user.ProfileImageName).Return(nil).Once()

	_, err := svc.Upload(ctx, user, "avatar.png", strings.NewReader("img"))
	require.NoError(t, err)
	storage.AssertExpectations(t)
}

func TestProfileImage_Upload_SameKeyNotDeleted(t *testing.T) {
	ctx := context.Background()
	users := &mocks.UserStore{}
	storage := &mocks.Storage{}
	svc := NewProfileImage(users, storage, "http://localhost:8080", testutil.MakeNoopLogger())

	user := model.User{ID: uuid.New()}
	key := user.ID.String() + ".png"
	user.ProfileImageName = key

	storage.On("Upload", ctx, key, mock.Anything).Return(nil).Once()
	users.On("Update", ctx, user.ID, mock.Anything).Return(model.User{ID: user.ID}, nil).Once()

	_, err := svc.Upload(ctx, user, "avatar.png", strings.NewReader("img"))
	require.NoError(t, err)
	storage.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestProfileImage_Fetch_NotFound(t *testing.T) {
	ctx := context.Background()
	storage := &mocks.Storage{}
	svc := NewProfileImage(&mocks.UserStore{}, storage, "http://localhost:8080", testutil.MakeNoopLogger())

	storage.On("Exists", ctx, "missing.png").Return(false, nil).Once()

	_, err := svc.Fetch(ctx, "missing.png")
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestProfileImage_Fetch_Success(t *testing.T) {
	ctx := context.Background()
	storage := &mocks.Storage{}
	svc := NewProfileImage(&mocks.UserStore{}, storage, "http://localhost:8080", testutil.MakeNoopLogger())

	content := io.NopCloser(strings.NewReader("img"))
	storage.On("Exists", ctx, "avatar.png").Return(true, nil).Once()
	storage.On("Download", ctx, "avatar.png").Return(content, nil).Once()

	reader, err := svc.Fetch(ctx, "avatar.png")
	require.NoError(t, err)

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "img", string(data))
}
