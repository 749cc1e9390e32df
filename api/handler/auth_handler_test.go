package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"accounthub/api/middleware"
	"accounthub/internal/apperr"
	"accounthub/internal/entity"
	"accounthub/internal/repository"
	"accounthub/internal/service"
	"accounthub/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// fakeUserRepo keeps a single user in memory, enough to drive the auth
// endpoints end to end without a database.
type fakeUserRepo struct {
	user *entity.User
}

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User) error {
	user.ID = uuid.New()
	r.user = user
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	if r.user != nil && r.user.ID == id {
		return r.user, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	if r.user != nil && r.user.Email == email {
		return r.user, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) FindByEmailOrProviderID(_ context.Context, email, _ string) (*entity.User, error) {
	return r.FindByEmail(context.Background(), email)
}

func (r *fakeUserRepo) FindByResetTokenHash(_ context.Context, hash string, now time.Time) (*entity.User, error) {
	if r.user != nil && r.user.PasswordResetTokenHash != nil &&
		*r.user.PasswordResetTokenHash == hash &&
		r.user.PasswordResetExpiresAt != nil && r.user.PasswordResetExpiresAt.After(now) {
		return r.user, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *entity.User) error {
	r.user = user
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, _ uuid.UUID) error {
	r.user = nil
	return nil
}

func (r *fakeUserRepo) List(_ context.Context, _ repository.ListFilter) ([]entity.User, int64, error) {
	return nil, 0, errors.New("not implemented")
}

func (r *fakeUserRepo) Stats(_ context.Context) (*repository.UserStats, error) {
	return nil, errors.New("not implemented")
}

func newTestApp(t *testing.T, repo repository.UserRepository) (*echo.Echo, *AuthHandler) {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	auth := service.NewAuthService(
		repo,
		service.BcryptPasswordHasher{Cost: bcrypt.MinCost},
		utils.TokenManager{
			AccessSecret:  []byte("handler-access-secret"),
			RefreshSecret: []byte("handler-refresh-secret"),
			Issuer:        "accounthub-test",
			AccessTTL:     15 * time.Minute,
			RefreshTTL:    24 * time.Hour,
		},
		nil,
		nil,
		service.RealClock{},
		service.AuthConfig{ResetTokenTTL: time.Hour},
		logger,
	)

	handler := NewAuthHandler(auth, validator.New(), CookieSettings{
		SameSite:      http.SameSiteLaxMode,
		AccessMaxAge:  15 * time.Minute,
		RefreshMaxAge: 24 * time.Hour,
	})

	e := echo.New()
	e.HTTPErrorHandler = middleware.NewHTTPErrorHandler(logger, false)
	e.POST("/auth/register", handler.Register)
	e.POST("/auth/login", handler.Login)
	e.POST("/auth/refresh-token", handler.Refresh)
	e.POST("/auth/forgot-password", handler.ForgotPassword)
	return e, handler
}

func seedUser(t *testing.T, repo *fakeUserRepo, email, password string) *entity.User {
	t.Helper()
	hash, err := service.BcryptPasswordHasher{Cost: bcrypt.MinCost}.Hash(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	repo.user = &entity.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         "Seeded User",
		PasswordHash: &hash,
		Provider:     entity.ProviderLocal,
		Role:         entity.RoleUser,
		Status:       entity.StatusActive,
	}
	return repo.user
}

func doJSON(e *echo.Echo, method, path, body string, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, m := range mutate {
		m(req)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func cookieByName(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func TestLoginEndpoint(t *testing.T) {
	t.Run("success returns the envelope and both cookies", func(t *testing.T) {
		repo := &fakeUserRepo{}
		seedUser(t, repo, "alice@example.com", "password123")
		e, _ := newTestApp(t, repo)

		rec := doJSON(e, http.MethodPost, "/auth/login",
			`{"email":"alice@example.com","password":"password123"}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}

		var body struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
			Data    struct {
				User struct {
					Email string `json:"email"`
				} `json:"user"`
				AccessToken string `json:"accessToken"`
			} `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if !body.Success || body.Data.User.Email != "alice@example.com" || body.Data.AccessToken == "" {
			t.Errorf("unexpected body: %s", rec.Body.String())
		}

		access := cookieByName(rec, middleware.AccessTokenCookie)
		refresh := cookieByName(rec, RefreshTokenCookie)
		if access == nil || refresh == nil {
			t.Fatal("both token cookies must be set")
		}
		if !access.HttpOnly || !refresh.HttpOnly {
			t.Error("token cookies must be http-only")
		}
		if refresh.MaxAge <= access.MaxAge {
			t.Error("refresh cookie should outlive the access cookie")
		}
	})

	t.Run("wrong password yields the error envelope", func(t *testing.T) {
		repo := &fakeUserRepo{}
		seedUser(t, repo, "alice@example.com", "password123")
		e, _ := newTestApp(t, repo)

		rec := doJSON(e, http.MethodPost, "/auth/login",
			`{"email":"alice@example.com","password":"wrong-password"}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d", rec.Code)
		}
		var body middleware.ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.Success || body.ErrorCode != apperr.CodeInvalidCredentials {
			t.Errorf("envelope = %+v", body)
		}
		if body.Path != "/auth/login" || body.Method != http.MethodPost {
			t.Errorf("path/method = %q/%q", body.Path, body.Method)
		}
	})

	t.Run("malformed json", func(t *testing.T) {
		e, _ := newTestApp(t, &fakeUserRepo{})

		rec := doJSON(e, http.MethodPost, "/auth/login", `{"email": `)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
		var body middleware.ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.ErrorCode != apperr.CodeInvalidJSON {
			t.Errorf("ErrorCode = %s", body.ErrorCode)
		}
	})

	t.Run("missing password fails validation", func(t *testing.T) {
		e, _ := newTestApp(t, &fakeUserRepo{})

		rec := doJSON(e, http.MethodPost, "/auth/login", `{"email":"alice@example.com"}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d", rec.Code)
		}
		var body middleware.ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.ErrorCode != apperr.CodeValidationError {
			t.Errorf("ErrorCode = %s", body.ErrorCode)
		}
	})
}

func TestRegisterEndpoint(t *testing.T) {
	repo := &fakeUserRepo{}
	e, _ := newTestApp(t, repo)

	rec := doJSON(e, http.MethodPost, "/auth/register",
		`{"email":"new@example.com","password":"password123","name":"New User"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if repo.user == nil || repo.user.Email != "new@example.com" {
		t.Error("user was not persisted")
	}
	if cookieByName(rec, RefreshTokenCookie) == nil {
		t.Error("refresh cookie not set")
	}

	// Duplicate registration conflicts.
	rec = doJSON(e, http.MethodPost, "/auth/register",
		`{"email":"new@example.com","password":"password123","name":"New User"}`)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate status = %d", rec.Code)
	}
	var body middleware.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.ErrorCode != apperr.CodeEmailExists {
		t.Errorf("ErrorCode = %s", body.ErrorCode)
	}
}

func TestRefreshEndpoint(t *testing.T) {
	t.Run("accepts the cookie when the body is empty", func(t *testing.T) {
		repo := &fakeUserRepo{}
		seedUser(t, repo, "alice@example.com", "password123")
		e, _ := newTestApp(t, repo)

		login := doJSON(e, http.MethodPost, "/auth/login",
			`{"email":"alice@example.com","password":"password123"}`)
		refreshCookie := cookieByName(login, RefreshTokenCookie)
		if refreshCookie == nil {
			t.Fatal("login did not set the refresh cookie")
		}

		rec := doJSON(e, http.MethodPost, "/auth/refresh-token", `{}`, func(req *http.Request) {
			req.AddCookie(refreshCookie)
		})

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		rotated := cookieByName(rec, RefreshTokenCookie)
		if rotated == nil || rotated.Value == refreshCookie.Value {
			t.Error("refresh cookie was not rotated")
		}
	})

	t.Run("without any token", func(t *testing.T) {
		e, _ := newTestApp(t, &fakeUserRepo{})

		rec := doJSON(e, http.MethodPost, "/auth/refresh-token", `{}`)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d", rec.Code)
		}
		var body middleware.ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if body.ErrorCode != apperr.CodeInvalidRefreshToken {
			t.Errorf("ErrorCode = %s", body.ErrorCode)
		}
	})
}

func TestForgotPasswordEndpoint(t *testing.T) {
	repo := &fakeUserRepo{}
	seedUser(t, repo, "alice@example.com", "password123")
	e, _ := newTestApp(t, repo)

	known := doJSON(e, http.MethodPost, "/auth/forgot-password", `{"email":"alice@example.com"}`)
	unknown := doJSON(e, http.MethodPost, "/auth/forgot-password", `{"email":"nobody@example.com"}`)

	if known.Code != http.StatusOK || unknown.Code != http.StatusOK {
		t.Fatalf("status = %d / %d", known.Code, unknown.Code)
	}
	// Known and unknown emails are indistinguishable to the caller.
	if known.Body.String() != unknown.Body.String() {
		t.Errorf("responses differ:\n%s\n%s", known.Body.String(), unknown.Body.String())
	}
	if repo.user.PasswordResetTokenHash == nil {
		t.Error("reset grant was not stored for the known account")
	}
}
