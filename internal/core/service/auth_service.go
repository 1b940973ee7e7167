package service

import (
	"context"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskmaster/taskmaster-api/internal/api/metrics"
	"github.com/taskmaster/taskmaster-api/internal/core/domain"
	"github.com/taskmaster/taskmaster-api/internal/core/ports"
)

// dummyHash is compared against when login hits an unknown email, so the
// failure path costs one bcrypt comparison either way.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("taskmaster-dummy"), bcrypt.DefaultCost)

// AuthService implements registration, login, and JWT issuance/verification.
type AuthService struct {
	repo      ports.UserRepository
	throttle  ports.LoginThrottle // nil = throttling disabled
	jwtSecret string
	tokenTTL  time.Duration // 0 = tokens carry no expiry claim
}

func NewAuthService(repo ports.UserRepository, throttle ports.LoginThrottle, jwtSecret string, tokenTTL time.Duration) *AuthService {
	return &AuthService{repo: repo, throttle: throttle, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

func (s *AuthService) Register(ctx context.Context, email, password, displayName string) (*domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" || displayName == "" {
		return nil, "", domain.ErrInvalidInput
	}
	if !strings.Contains(email[1:], "@") {
		return nil, "", domain.ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	user := &domain.User{
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, "", err
	}

	token, err := s.IssueToken(created.ID)
	if err != nil {
		return nil, "", err
	}
	return created, token, nil
}

// Login authenticates by email and password. Unknown email and wrong password
// fail with the same domain.ErrInvalidCredentials so the response does not
// reveal which check missed.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		metrics.AuthAttemptsTotal.WithLabelValues("invalid").Inc()
		return nil, "", domain.ErrInvalidCredentials
	}

	if s.throttle != nil {
		ok, err := s.throttle.Allow(ctx, email)
		if err == nil && !ok {
			metrics.AuthAttemptsTotal.WithLabelValues("throttled").Inc()
			return nil, "", domain.ErrTooManyAttempts
		}
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		metrics.AuthAttemptsTotal.WithLabelValues("invalid").Inc()
		return nil, "", domain.ErrInvalidCredentials
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("invalid").Inc()
		return nil, "", domain.ErrInvalidCredentials
	}

	token, err := s.IssueToken(user.ID)
	if err != nil {
		return nil, "", err
	}

	metrics.AuthAttemptsTotal.WithLabelValues("success").Inc()
	return user, token, nil
}

// IssueToken signs an HS256 JWT asserting the given user identity. An exp
// claim is added only when the service was configured with a positive TTL;
// rotating the secret invalidates every outstanding token.
func (s *AuthService) IssueToken(userID string) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
	}
	if s.tokenTTL > 0 {
		claims["exp"] = now.Add(s.tokenTTL).Unix()
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

// VerifyToken validates signature and structure and returns the asserted user
// ID. Expired tokens fail here when an exp claim is present.
func (s *AuthService) VerifyToken(token string) (string, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !tkn.Valid {
		return "", domain.ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", domain.ErrInvalidToken
	}
	return sub, nil
}
