package ports

import (
	"context"

	"github.com/taskmaster/taskmaster-api/internal/core/domain"
)

// AuthService covers registration, login, and session token issuance.
type AuthService interface {
	Register(ctx context.Context, email, password, displayName string) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
}

// TokenVerifier resolves a bearer token to the user identity it asserts.
// The Auth middleware is its only caller; downstream handlers trust the
// identity it yields and perform no further re-validation.
type TokenVerifier interface {
	VerifyToken(token string) (userID string, err error)
}

// LoginThrottle rate-limits login attempts per email. Allow reports whether
// another attempt may proceed; implementations fail open on backend errors.
type LoginThrottle interface {
	Allow(ctx context.Context, email string) (bool, error)
}
