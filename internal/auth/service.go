package auth

import (
	"fmt"

	"realtime-chat/internal/config"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the authenticated principal extracted from a verified token.
type Identity struct {
	UserID string
	Email  string
}

// TokenVerifier checks an opaque credential token and resolves it to an
// identity. Token issuance lives in the external login service; this side
// only verifies.
type TokenVerifier interface {
	VerifyToken(tokenString string) (*Identity, error)
}

type Service struct {
	secret []byte
}

func NewService(cfg *config.Config) *Service {
	return &Service{secret: cfg.JWT.Secret}
}

// VerifyToken parses and validates an HS256 JWT and returns the identity
// carried in its claims. Any parse, signature, or expiry failure yields an
// error and no identity.
func (s *Service) VerifyToken(tokenString string) (*Identity, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.MapClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	userID, ok := (*claims)["userId"].(string)
	if !ok || userID == "" {
		return nil, fmt.Errorf("invalid user ID in token")
	}
	email, _ := (*claims)["email"].(string)

	return &Identity{UserID: userID, Email: email}, nil
}
