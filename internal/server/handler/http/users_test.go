package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/atinyakov/taskmanager/internal/middleware"
	"github.com/atinyakov/taskmanager/internal/models"
	"github.com/atinyakov/taskmanager/internal/service"
	"go.uber.org/zap"
)

// fakeUserService implements UserService for testing.
type fakeUserService struct {
	user      *models.User
	pair      service.TokenPair
	err       error
	token     string
	tokenErr  error
	gotEmail  string
	gotUserID string
}

func (f *fakeUserService) SignUp(_ context.Context, email, _ string) (*models.User, service.TokenPair, error) {
	f.gotEmail = email
	return f.user, f.pair, f.err
}

func (f *fakeUserService) Login(_ context.Context, email, _ string) (*models.User, service.TokenPair, error) {
	f.gotEmail = email
	return f.user, f.pair, f.err
}

func (f *fakeUserService) AccessToken(userID string) (string, error) {
	f.gotUserID = userID
	return f.token, f.tokenErr
}

func TestUserHandler_SignUpAndLogin(t *testing.T) {
	okService := func() *fakeUserService {
		return &fakeUserService{
			user: &models.User{ID: "u1", Email: "a@x.com", PasswordHash: "secret-hash"},
			pair: service.TokenPair{AccessToken: "acc", RefreshToken: "ref"},
		}
	}

	tests := []struct {
		name           string
		body           string
		service        *fakeUserService
		expectedCode   int
		expectedSubstr string
	}{
		{
			name:           "invalid JSON",
			body:           `not a json`,
			service:        &fakeUserService{},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "invalid request",
		},
		{
			name:           "validation error",
			body:           `{"email":"a@x.com","password":"short"}`,
			service:        &fakeUserService{err: &models.ValidationError{Field: "password", Reason: "must be at least 8 characters"}},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "password: must be at least 8 characters",
		},
		{
			name:           "email taken",
			body:           `{"email":"a@x.com","password":"password1"}`,
			service:        &fakeUserService{err: models.ErrEmailTaken},
			expectedCode:   http.StatusConflict,
			expectedSubstr: "email already registered",
		},
		{
			name:           "bad credentials",
			body:           `{"email":"a@x.com","password":"password1"}`,
			service:        &fakeUserService{err: models.ErrUnauthorized},
			expectedCode:   http.StatusUnauthorized,
			expectedSubstr: "invalid credentials",
		},
		{
			name:           "internal error",
			body:           `{"email":"a@x.com","password":"password1"}`,
			service:        &fakeUserService{err: errors.New("db down")},
			expectedCode:   http.StatusInternalServerError,
			expectedSubstr: "internal error",
		},
		{
			name:           "success",
			body:           `{"email":"a@x.com","password":"password1"}`,
			service:        okService(),
			expectedCode:   http.StatusOK,
			expectedSubstr: `"_id":"u1"`,
		},
	}

	handlers := map[string]func(h *UserHandler) http.HandlerFunc{
		"signup": func(h *UserHandler) http.HandlerFunc { return h.SignUp },
		"login":  func(h *UserHandler) http.HandlerFunc { return h.Login },
	}

	for name, pick := range handlers {
		for _, tt := range tests {
			t.Run(name+"/"+tt.name, func(t *testing.T) {
				rec := httptest.NewRecorder()
				req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewBufferString(tt.body))
				h := &UserHandler{UserService: tt.service, Log: zap.NewNop()}
				pick(h)(rec, req)
				res := rec.Result()
				defer res.Body.Close()

				if res.StatusCode != tt.expectedCode {
					t.Fatalf("expected status %d, got %d", tt.expectedCode, res.StatusCode)
				}

				buf := new(bytes.Buffer)
				if _, err := buf.ReadFrom(res.Body); err != nil {
					t.Fatalf("failed to read body: %v", err)
				}
				if !bytes.Contains(buf.Bytes(), []byte(tt.expectedSubstr)) {
					t.Errorf("expected body to contain %q, got %q", tt.expectedSubstr, buf.String())
				}

				if tt.expectedCode != http.StatusOK {
					return
				}
				if got := res.Header.Get(middleware.HeaderAccessToken); got != "acc" {
					t.Errorf("x-access-token = %q; want %q", got, "acc")
				}
				if got := res.Header.Get(middleware.HeaderRefreshToken); got != "ref" {
					t.Errorf("x-refresh-token = %q; want %q", got, "ref")
				}
				if bytes.Contains(buf.Bytes(), []byte("secret-hash")) || bytes.Contains(buf.Bytes(), []byte("sessions")) {
					t.Errorf("user JSON leaked credentials: %s", buf.String())
				}
				if tt.service.gotEmail != "a@x.com" {
					t.Errorf("service received email %q", tt.service.gotEmail)
				}
			})
		}
	}
}

func TestUserHandler_AccessToken(t *testing.T) {
	tests := []struct {
		name         string
		userID       string
		service      *fakeUserService
		expectedCode int
	}{
		{"no session in context", "", &fakeUserService{}, http.StatusUnauthorized},
		{"signing failure", "u1", &fakeUserService{tokenErr: errors.New("sign")}, http.StatusInternalServerError},
		{"success", "u1", &fakeUserService{token: "fresh"}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/users/me/access-token", nil)
			if tt.userID != "" {
				req = req.WithContext(middleware.WithUserID(req.Context(), tt.userID))
			}

			h := &UserHandler{UserService: tt.service, Log: zap.NewNop()}
			h.AccessToken(rec, req)

			if rec.Code != tt.expectedCode {
				t.Fatalf("expected status %d, got %d", tt.expectedCode, rec.Code)
			}
			if tt.expectedCode != http.StatusOK {
				return
			}
			if got := rec.Header().Get(middleware.HeaderAccessToken); got != "fresh" {
				t.Errorf("x-access-token = %q; want %q", got, "fresh")
			}
			var body []string
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("failed to decode JSON: %v", err)
			}
			if len(body) != 1 || body[0] != "fresh" {
				t.Errorf("body = %v; want [fresh]", body)
			}
			if tt.service.gotUserID != "u1" {
				t.Errorf("service received user id %q", tt.service.gotUserID)
			}
		})
	}
}
