package service

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskmaster/taskmaster-api/internal/core/domain"
)

type stubUserRepo struct {
	users  map[string]*domain.User // keyed by email
	nextID int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if _, exists := r.users[user.Email]; exists {
		return nil, domain.ErrEmailTaken
	}
	copy := cloneUser(user)
	r.nextID++
	copy.ID = "user_" + string(rune('0'+r.nextID))
	r.users[copy.Email] = cloneUser(copy)
	return cloneUser(copy), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := r.users[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

type stubThrottle struct {
	allow bool
	calls int
}

func (t *stubThrottle) Allow(_ context.Context, _ string) (bool, error) {
	t.calls++
	return t.allow, nil
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, nil, "secret", 0)

	user, token, err := svc.Register(context.Background(), "Alice@Example.com", "pass123", "Alice")
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if user.PasswordHash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if token == "" {
		t.Fatalf("expected a session token with the new user")
	}
	if got, err := svc.VerifyToken(token); err != nil || got != user.ID {
		t.Fatalf("token does not verify to the new user: got %q, err %v", got, err)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc := NewAuthService(newStubUserRepo(), nil, "secret", 0)

	cases := []struct {
		name                     string
		email, password, display string
	}{
		{"empty email", "", "pass", "Bob"},
		{"empty password", "bob@example.com", "", "Bob"},
		{"empty display name", "bob@example.com", "pass", ""},
		{"malformed email", "not-an-email", "pass", "Bob"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := svc.Register(context.Background(), tc.email, tc.password, tc.display); err != domain.ErrInvalidInput {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestAuthService_Register_EmailTaken(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, nil, "secret", 0)

	if _, _, err := svc.Register(context.Background(), "bob@example.com", "pass", "Bob"); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, _, err := svc.Register(context.Background(), "bob@example.com", "pass2", "Bobby"); err != domain.ErrEmailTaken {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, nil, "secret", time.Hour)

	registered, _, err := svc.Register(context.Background(), "carol@example.com", "s3cret", "Carol")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	user, token, err := svc.Login(context.Background(), "carol@example.com", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token, got empty")
	}
	if user == nil || user.ID != registered.ID {
		t.Fatalf("unexpected user: %+v", user)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["sub"] != registered.ID {
		t.Fatalf("expected sub %q, got %v", registered.ID, claims["sub"])
	}
	if _, ok := claims["exp"]; !ok {
		t.Fatalf("expected exp claim with positive TTL")
	}
}

func TestAuthService_Login_IndependentTokens(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, nil, "secret", time.Hour)

	_, first, _ := svc.Register(context.Background(), "dan@example.com", "pass", "Dan")
	_, second, err := svc.Login(context.Background(), "dan@example.com", "pass")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	// Both tokens stay valid; login does not revoke prior sessions.
	if _, err := svc.VerifyToken(first); err != nil {
		t.Fatalf("earlier token invalidated: %v", err)
	}
	if _, err := svc.VerifyToken(second); err != nil {
		t.Fatalf("new token invalid: %v", err)
	}
}

func TestAuthService_Login_UniformFailure(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, nil, "secret", 0)

	_, _, _ = svc.Register(context.Background(), "erin@example.com", "goodpass", "Erin")

	_, _, wrongPass := svc.Login(context.Background(), "erin@example.com", "badpass")
	_, _, unknown := svc.Login(context.Background(), "ghost@example.com", "whatever")

	if wrongPass != domain.ErrInvalidCredentials {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", wrongPass)
	}
	if unknown != domain.ErrInvalidCredentials {
		t.Fatalf("unknown email: expected ErrInvalidCredentials, got %v", unknown)
	}
	if wrongPass.Error() != unknown.Error() {
		t.Fatalf("failure messages differ: %q vs %q", wrongPass, unknown)
	}
}

func TestAuthService_Login_Throttled(t *testing.T) {
	repo := newStubUserRepo()
	throttle := &stubThrottle{allow: false}
	svc := NewAuthService(repo, throttle, "secret", 0)

	_, _, _ = svc.Register(context.Background(), "frank@example.com", "pass", "Frank")

	if _, _, err := svc.Login(context.Background(), "frank@example.com", "pass"); err != domain.ErrTooManyAttempts {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
	if throttle.calls != 1 {
		t.Fatalf("expected one throttle check, got %d", throttle.calls)
	}
}

func TestAuthService_VerifyToken_NoExpiryByDefault(t *testing.T) {
	svc := NewAuthService(newStubUserRepo(), nil, "secret", 0)

	token, err := svc.IssueToken("user_1")
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	}); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if _, ok := claims["exp"]; ok {
		t.Fatalf("expected no exp claim with zero TTL")
	}
}

func TestAuthService_VerifyToken_Invalid(t *testing.T) {
	svc := NewAuthService(newStubUserRepo(), nil, "secret", 0)

	cases := map[string]string{
		"malformed":    "not-a-token",
		"empty":        "",
		"wrong secret": mustSign(t, "other-secret", jwt.MapClaims{"sub": "user_1"}),
		"missing sub":  mustSign(t, "secret", jwt.MapClaims{"iat": time.Now().Unix()}),
		"expired":      mustSign(t, "secret", jwt.MapClaims{"sub": "user_1", "exp": time.Now().Add(-time.Hour).Unix()}),
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.VerifyToken(token); err != domain.ErrInvalidToken {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func mustSign(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}
