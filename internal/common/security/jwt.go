package security

import (
	"errors"
	"time"

	"school_admin/internal/platform/config"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

var TokenAuth *jwtauth.JWTAuth

func InitJWT() {
	TokenAuth = jwtauth.New("HS256", config.AppConfig.JWTKey, nil)
}

func GenerateToken(userID, role string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(config.AppConfig.JWTExp).Unix(),
		"iat":     time.Now().Unix(),
	}
	_, tokenString, err := TokenAuth.Encode(claims)
	return tokenString, err
}

// Helper functions to extract claims, used by the auth middleware.
func GetUserIDFromClaims(claims map[string]interface{}) (string, error) {
	id, ok := claims["user_id"].(string)
	if !ok {
		return "", errors.New("user_id claim is missing or not a string")
	}
	return id, nil
}

func GetUserRoleFromClaims(claims map[string]interface{}) (string, error) {
	role, ok := claims["role"].(string)
	if !ok {
		return "", errors.New("role claim is missing or not a string")
	}
	return role, nil
}

// GetIssuedAtFromClaims returns the token's iat as a unix timestamp. Tokens
// minted before the current session epoch are rejected after a term change.
func GetIssuedAtFromClaims(claims map[string]interface{}) (int64, error) {
	switch v := claims["iat"].(type) {
	case float64:
		return int64(v), nil
	case int64:
		return v, nil
	case time.Time:
		return v.Unix(), nil
	}
	return 0, errors.New("iat claim is missing or malformed")
}
