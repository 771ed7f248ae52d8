package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// GenerateToken issues an admin session token.
func GenerateToken(secret []byte) (string, error) {
	claims := jwt.MapClaims{
		"role": "admin",
		"exp":  time.Now().Add(24 * time.Hour).Unix(),
		"iat":  time.Now().Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(secret)
}

// ParseToken validates an admin token.
func ParseToken(secret []byte, tokenString string) error {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return err
	}
	if !token.Valid {
		return jwt.ErrTokenUnverifiable
	}

	data, ok := token.Claims.(jwt.MapClaims)
	if !ok || data["role"] != "admin" {
		return jwt.ErrTokenInvalidClaims
	}
	return nil
}
