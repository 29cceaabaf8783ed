package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/Salo-Quispe/backend-poli-path/internal/model"
)

// messageResponse is the envelope for operations that return no payload.
type messageResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// userResponse is the wire form of an account. It never carries the
// password hash or the stored recovery token.
type userResponse struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Lastname         string    `json:"lastname"`
	Email            string    `json:"email"`
	IsActive         bool      `json:"isActive"`
	IsVerified       bool      `json:"isVerified"`
	Roles            []string  `json:"roles"`
	ProfileImageName string    `json:"nameProfileImage,omitempty"`
	ProfileImageURL  string    `json:"imageUrl,omitempty"`
	RegisterDate     time.Time `json:"registerDate"`
}

func toUserResponse(user model.User) userResponse {
	return userResponse{
		ID:               user.ID.String(),
		Name:             user.Name,
		Lastname:         user.Lastname,
		Email:            user.Email,
		IsActive:         user.IsActive,
		IsVerified:       user.IsVerified,
		Roles:            model.RolesToStrings(user.Roles),
		ProfileImageName: user.ProfileImageName,
		ProfileImageURL:  user.ProfileImageURL,
		RegisterDate:     user.RegisterDate,
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondMessage(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, messageResponse{OK: true, Message: message})
}
