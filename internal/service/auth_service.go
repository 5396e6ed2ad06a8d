package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/thiagogitai/sinconsult-crm/internal/config"
)

type authService struct {
	cfg *config.AuthConfig
}

// NewAuthService issues bearer tokens. The signing secret comes from the
// config loaded at startup and is never mutated afterwards.
func NewAuthService(cfg *config.AuthConfig) AuthService {
	return &authService{
		cfg: cfg,
	}
}

func (s *authService) Login(_ context.Context, username, password string) (*TokenResponse, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.cfg.AdminUsername)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.AdminPassword)) == 1
	if !userOK || !passOK {
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	expiresAt := now.Add(time.Duration(s.cfg.TokenTTLMinutes) * time.Minute)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": username,
		"iat": now.Unix(),
		"exp": expiresAt.Unix(),
	})

	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &TokenResponse{
		Token:     signed,
		ExpiresAt: expiresAt,
	}, nil
}
