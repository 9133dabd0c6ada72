package security

import (
	"errors"
	"time"

	"employee_manager/internal/platform/config"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

// JWTManager issues and verifies the tokens handed out at login. It is
// constructed once at startup and passed down explicitly.
type JWTManager struct {
	TokenAuth *jwtauth.JWTAuth
	exp       time.Duration
}

func NewJWTManager(cfg *config.Config) *JWTManager {
	return &JWTManager{
		TokenAuth: jwtauth.New("HS256", cfg.JWTKey, nil),
		exp:       cfg.JWTExp,
	}
}

func (m *JWTManager) GenerateToken(userID string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(m.exp).Unix(),
		"iat":     time.Now().Unix(),
	}
	_, tokenString, err := m.TokenAuth.Encode(claims)
	return tokenString, err
}

func GetUserIDFromClaims(claims map[string]interface{}) (string, error) {
	id, ok := claims["user_id"].(string)
	if !ok {
		return "", errors.New("user_id claim is missing or not a string")
	}
	return id, nil
}
