package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Salo-Quispe/backend-poli-path/internal/logger"
	"github.com/Salo-Quispe/backend-poli-path/internal/model"
)

type errorResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// handleError maps service errors to HTTP responses. Validation failures
// carry field detail; dependency failures are surfaced opaquely and the
// detail stays in the logs.
func handleError(w http.ResponseWriter, log *logger.Logger, err error) {
	var validation *model.ValidationError
	if errors.As(err, &validation) {
		writeErr(w, http.StatusBadRequest, validation.Message, validation.Field)
		return
	}

	switch {
	case errors.Is(err, model.ErrInvalidCredentials),
		errors.Is(err, model.ErrUserNotActive),
		errors.Is(err, model.ErrUserNotVerified):
		writeErr(w, http.StatusUnauthorized, err.Error(), "")
	case errors.Is(err, model.ErrTokenExpired):
		writeErr(w, http.StatusUnauthorized, "token expired", "")
	case errors.Is(err, model.ErrTokenMalformed),
		errors.Is(err, model.ErrTokenBadSignature),
		errors.Is(err, model.ErrTokenMismatch):
		writeErr(w, http.StatusUnauthorized, "token not valid", "")
	case errors.Is(err, model.ErrEmailTaken):
		writeErr(w, http.StatusConflict, "email already registered", "")
	case errors.Is(err, model.ErrNotFound):
		writeErr(w, http.StatusNotFound, "account not found", "")
	case errors.Is(err, model.ErrMailDispatch):
		writeErr(w, http.StatusBadGateway, "could not send email", "")
	default:
		log.Error("handler: unexpected error", "error", err.Error())
		writeErr(w, http.StatusInternalServerError, "internal server error", "")
	}
}

func writeErr(w http.ResponseWriter, status int, message, field string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{OK: false, Message: message, Field: field})
}
