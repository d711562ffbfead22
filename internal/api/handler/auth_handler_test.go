package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/ersuite/reimbursement-api/internal/core/domain"
	"github.com/ersuite/reimbursement-api/internal/core/ports"
)

type stubUserService struct {
	authenticateFn func(ctx context.Context, username, password string) (*ports.UserProfile, error)
	addFn          func(ctx context.Context, in ports.NewUserInput) (*ports.UserProfile, error)
}

func (s *stubUserService) GetAllUsers(ctx context.Context) ([]ports.UserProfile, error) {
	return nil, nil
}

func (s *stubUserService) GetUserByID(ctx context.Context, id int64) (*ports.UserProfile, error) {
	return nil, nil
}

func (s *stubUserService) GetUserByUniqueKey(ctx context.Context, query map[string]string) (*ports.UserProfile, error) {
	return nil, nil
}

func (s *stubUserService) Authenticate(ctx context.Context, username, password string) (*ports.UserProfile, error) {
	return s.authenticateFn(ctx, username, password)
}

func (s *stubUserService) AddNewUser(ctx context.Context, in ports.NewUserInput) (*ports.UserProfile, error) {
	return s.addFn(ctx, in)
}

func (s *stubUserService) UpdateUser(ctx context.Context, in ports.UpdateUserInput) (bool, error) {
	return false, nil
}

func (s *stubUserService) DeleteByID(ctx context.Context, id int64) (bool, error) {
	return false, nil
}

func (s *stubUserService) IsUsernameAvailable(ctx context.Context, username string) (bool, error) {
	return true, nil
}

func (s *stubUserService) IsEmailAvailable(ctx context.Context, email string) (bool, error) {
	return true, nil
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubUserService{
		authenticateFn: func(ctx context.Context, username, password string) (*ports.UserProfile, error) {
			if username != "aanderson" || password != "pass" {
				t.Fatalf("unexpected credentials: %s %s", username, password)
			}
			return &ports.UserProfile{ID: 7, Username: username, Role: domain.RoleAdmin}, nil
		},
	}
	h := NewAuthHandler(stub, "secret")

	body := strings.NewReader(`{"username":"aanderson","password":"pass"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}

	raw, ok := resp["token"].(string)
	if !ok || raw == "" {
		t.Fatalf("expected token in response")
	}
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !tkn.Valid {
		t.Fatalf("token does not verify: %v", err)
	}
	if claims["username"] != "aanderson" || claims["role"] != domain.RoleAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	user, ok := resp["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected user in response")
	}
	if _, leaked := user["password"]; leaked {
		t.Fatalf("password leaked in login response")
	}
}

func TestAuthHandler_Login_BadCredentials(t *testing.T) {
	e := newTestEcho()
	stub := &stubUserService{
		authenticateFn: func(ctx context.Context, username, password string) (*ports.UserProfile, error) {
			return nil, domain.NewAuthentication("")
		},
	}
	h := NewAuthHandler(stub, "secret")

	body := strings.NewReader(`{"username":"aanderson","password":"wrong"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Login(c)
	var sc domain.StatusCoder
	if !errors.As(err, &sc) || sc.Status() != http.StatusUnauthorized {
		t.Fatalf("expected 401 domain error, got %v", err)
	}
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubUserService{
		addFn: func(ctx context.Context, in ports.NewUserInput) (*ports.UserProfile, error) {
			if in.Role != "" {
				t.Fatalf("registration must not forward a role, got %q", in.Role)
			}
			return &ports.UserProfile{ID: 3, Username: in.Username, Role: domain.DefaultRole}, nil
		},
	}
	h := NewAuthHandler(stub, "secret")

	body := strings.NewReader(`{"username":"bbailey","password":"pass","first_name":"Bob","last_name":"Bailey","email":"b@example.com"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/register", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected user in response")
	}
	if user["role"] != domain.DefaultRole {
		t.Fatalf("expected default role, got %v", user["role"])
	}
}

func TestAuthHandler_Register_MissingFields(t *testing.T) {
	e := newTestEcho()
	h := NewAuthHandler(&stubUserService{}, "secret")

	body := strings.NewReader(`{"username":"bbailey"}`)
	req := httptest.NewRequest(http.MethodPost, "/auth/register", body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.Register(c)
	var he *echo.HTTPError
	if !errors.As(err, &he) || he.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
}
