package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Salo-Quispe/backend-poli-path/internal/model"
)

// Claims represents JWT claims with the issuing purpose and user ID.
type Claims struct {
	jwt.RegisteredClaims
	UserID  uuid.UUID `json:"user_id"`
	Purpose string    `json:"purpose"`
}

// JWT implements model.TokenManager backed by symmetric HMAC. The signing
// key is fixed at construction; rotating it invalidates every outstanding
// token.
type JWT struct {
	secretKey string
}

// NewJWT creates a new JWT token manager with the provided secret key.
func NewJWT(secretKey string) model.TokenManager {
	return &JWT{secretKey: secretKey}
}

const (
	sessionTTL  = 2 * time.Hour
	recoveryTTL = time.Hour
)

func ttlFor(purpose model.TokenPurpose) (time.Duration, error) {
	switch purpose {
	case model.PurposeSession:
		return sessionTTL, nil
	case model.PurposeRecovery:
		return recoveryTTL, nil
	default:
		return 0, fmt.Errorf("unknown token purpose %q", purpose)
	}
}

// Generate creates a signed token embedding the user ID and purpose.
func (j *JWT) Generate(userID uuid.UUID, purpose model.TokenPurpose) (string, error) {
	ttl, err := ttlFor(purpose)
	if err != nil {
		return "", err
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:  userID,
		Purpose: string(purpose),
	})

	tokenString, err := token.SignedString([]byte(j.secretKey))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", purpose, err)
	}

	return tokenString, nil
}

// Parse validates the token for the given purpose and extracts the user ID.
// The three failure kinds are distinguished so callers can present
// different messages for "expired" versus "invalid".
func (j *JWT) Parse(tokenString string, purpose model.TokenPurpose) (uuid.UUID, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
		}
		return []byte(j.secretKey), nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return uuid.Nil, model.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return uuid.Nil, model.ErrTokenBadSignature
		default:
			return uuid.Nil, model.ErrTokenMalformed
		}
	}
	if !token.Valid {
		return uuid.Nil, model.ErrTokenMalformed
	}
	// A token presented where the other purpose is required counts as
	// malformed for the caller.
	if claims.Purpose != string(purpose) {
		return uuid.Nil, model.ErrTokenMalformed
	}
	if claims.UserID == uuid.Nil {
		return uuid.Nil, model.ErrTokenMalformed
	}

	return claims.UserID, nil
}
