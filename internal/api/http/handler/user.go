package handler

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/Salo-Quispe/backend-poli-path/internal/logger"
	"github.com/Salo-Quispe/backend-poli-path/internal/model"
)

// maxImageSize bounds profile image uploads.
const maxImageSize = 5 << 20

// UserService defines account administration operations.
type UserService interface {
	UpdateRoles(ctx context.Context, id uuid.UUID, roles []string) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
}

// ProfileImageService defines profile image operations.
type ProfileImageService interface {
	Upload(ctx context.Context, user model.User, filename string, reader io.Reader) (model.User, error)
	Fetch(ctx context.Context, key string) (io.ReadCloser, error)
}

// User handles the /user endpoints.
type User struct {
	userService  UserService
	imageService ProfileImageService
	ctxmgr       model.ContextManager
	logger       *logger.Logger
}

// NewUser creates a new User handler.
func NewUser(userService UserService, imageService ProfileImageService, ctxmgr model.ContextManager, logger *logger.Logger) *User {
	return &User{
		userService:  userService,
		imageService: imageService,
		ctxmgr:       ctxmgr,
		logger:       logger,
	}
}

type updateRolesRequest struct {
	Roles []string `json:"roles"`
}

// UpdateRoles handles PATCH /user/{id}/roles.
func (h *User) UpdateRoles(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		handleError(w, h.logger, &model.ValidationError{Field: "id", Message: "must be a valid account id"})
		return
	}

	var req updateRolesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleError(w, h.logger, &model.ValidationError{Field: "body", Message: "invalid request body"})
		return
	}

	user, err := h.userService.UpdateRoles(r.Context(), id, req.Roles)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toUserResponse(user))
}

// List handles GET /user.
func (h *User) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	out := make([]userResponse, 0, len(users))
	for _, user := range users {
		out = append(out, toUserResponse(user))
	}

	respondJSON(w, http.StatusOK, out)
}

// UploadProfileImage handles POST /user/profile-image with a multipart
// "file" part.
func (h *User) UploadProfileImage(w http.ResponseWriter, r *http.Request) {
	user, ok := h.ctxmgr.GetUserFromContext(r.Context())
	if !ok {
		writeErr(w, http.StatusUnauthorized, "missing authorization token", "")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		handleError(w, h.logger, &model.ValidationError{Field: "file", Message: "missing or oversized file"})
		return
	}
	defer file.Close()

	updated, err := h.imageService.Upload(r.Context(), user, header.Filename, file)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, toUserResponse(updated))
}

// GetProfileImage handles GET /user/profile-image/{name}.
func (h *User) GetProfileImage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	reader, err := h.imageService.Fetch(r.Context(), name)
	if err != nil {
		handleError(w, h.logger, err)
		return
	}
	defer reader.Close()

	if contentType := mime.TypeByExtension(filepath.Ext(name)); contentType != "" {
		w.Header().Set("Content-Type", contentType)
	}
	if _, err := io.Copy(w, reader); err != nil {
		h.logger.Error("User handler: failed to stream profile image",
			"key", name,
			"error", err.Error())
	}
}
