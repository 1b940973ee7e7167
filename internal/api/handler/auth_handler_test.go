package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/taskmaster/taskmaster-api/internal/api"
	"github.com/taskmaster/taskmaster-api/internal/api/handler"
	"github.com/taskmaster/taskmaster-api/internal/core/domain"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, email, password, displayName string) (*domain.User, string, error)
	loginFn    func(ctx context.Context, email, password string) (*domain.User, string, error)
}

func (s *stubAuthService) Register(ctx context.Context, email, password, displayName string) (*domain.User, string, error) {
	return s.registerFn(ctx, email, password, displayName)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	return s.loginFn(ctx, email, password)
}

// newTestEcho wires the validator and the real error handler so handler
// errors map to the same status codes as in production.
func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = api.NewHTTPErrorHandler(zerolog.Nop())
	return e
}

func doJSON(e *echo.Echo, h echo.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, email, password, displayName string) (*domain.User, string, error) {
			if email != "alice@example.com" || displayName != "Alice" {
				t.Fatalf("unexpected args: %s %s", email, displayName)
			}
			return &domain.User{ID: "user_1", Email: email, DisplayName: displayName}, "token123", nil
		},
	}
	h := handler.NewAuthHandler(stub)

	rec := doJSON(e, h.Register, http.MethodPost, "/users/register",
		`{"email":"alice@example.com","password":"secret","displayName":"Alice"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "token123" {
		t.Fatalf("expected token, got %v", resp["token"])
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["email"] != "alice@example.com" {
		t.Fatalf("unexpected user payload: %+v", resp["user"])
	}
	if _, leaked := user["password_hash"]; leaked {
		t.Fatalf("password hash leaked in response")
	}
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, email, password, displayName string) (*domain.User, string, error) {
			t.Fatalf("should not be called")
			return nil, "", nil
		},
	}
	h := handler.NewAuthHandler(stub)

	cases := map[string]string{
		"not json":       "not-json",
		"missing email":  `{"password":"secret","displayName":"A"}`,
		"bad email":      `{"email":"nope","password":"secret","displayName":"A"}`,
		"short password": `{"email":"a@b.com","password":"abc","displayName":"A"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := doJSON(e, h.Register, http.MethodPost, "/users/register", body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestAuthHandler_Register_EmailTaken(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, email, password, displayName string) (*domain.User, string, error) {
			return nil, "", domain.ErrEmailTaken
		},
	}
	h := handler.NewAuthHandler(stub)

	rec := doJSON(e, h.Register, http.MethodPost, "/users/register",
		`{"email":"bob@example.com","password":"secret","displayName":"Bob"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*domain.User, string, error) {
			if email != "alice@example.com" || password != "secret" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return &domain.User{ID: "user_1", Email: email}, "token123", nil
		},
	}
	h := handler.NewAuthHandler(stub)

	rec := doJSON(e, h.Login, http.MethodPost, "/users/login",
		`{"email":"alice@example.com","password":"secret"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "token123" {
		t.Fatalf("expected token, got %v", resp["token"])
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*domain.User, string, error) {
			return nil, "", domain.ErrInvalidCredentials
		},
	}
	h := handler.NewAuthHandler(stub)

	// Wrong password and unknown email share one error; both come back as
	// the same 400 with the same body.
	first := doJSON(e, h.Login, http.MethodPost, "/users/login", `{"email":"alice@example.com","password":"bad"}`)
	second := doJSON(e, h.Login, http.MethodPost, "/users/login", `{"email":"ghost@example.com","password":"whatever"}`)

	if first.Code != http.StatusBadRequest || second.Code != http.StatusBadRequest {
		t.Fatalf("expected 400/400, got %d/%d", first.Code, second.Code)
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("error bodies differ: %q vs %q", first.Body.String(), second.Body.String())
	}
}

func TestAuthHandler_Login_Throttled(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*domain.User, string, error) {
			return nil, "", domain.ErrTooManyAttempts
		},
	}
	h := handler.NewAuthHandler(stub)

	rec := doJSON(e, h.Login, http.MethodPost, "/users/login", `{"email":"a@b.com","password":"x"}`)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}
