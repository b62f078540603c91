package login

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/todo-auth/internal/lib/jwt"
	services "github.com/magabrotheeeer/todo-auth/internal/services/auth"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Login(ctx context.Context, email, password string) (*services.TokenPair, error) {
	args := m.Called(ctx, email, password)
	resp, _ := args.Get(0).(*services.TokenPair)
	return resp, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	h := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{})
	return slog.New(h)
}

func testPair() *services.TokenPair {
	return &services.TokenPair{
		Access:  &jwt.Bundle{Token: "acc", TokenType: jwt.TokenTypeBearer, ExpiresIn: time.Hour},
		Refresh: &jwt.Bundle{Token: "ref", TokenType: jwt.TokenTypeBearer, ExpiresIn: 7 * 24 * time.Hour},
	}
}

func doRequest(t *testing.T, handler http.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()
	var bodyBytes []byte
	switch v := body.(type) {
	case string:
		bodyBytes = []byte(v)
	default:
		var err error
		bodyBytes, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(bodyBytes))
	req = req.WithContext(context.WithValue(req.Context(), middleware.RequestIDKey, "reqid123"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestLoginHandler_ServeHTTP(t *testing.T) {
	validReq := Request{Email: "user1@example.com", Password: "password123"}

	tests := []struct {
		name           string
		requestBody    any
		mockResp       *services.TokenPair
		mockErr        error
		wantStatusCode int
		wantError      string
		wantStatus     string
	}{
		{
			name:           "valid login",
			requestBody:    validReq,
			mockResp:       testPair(),
			wantStatusCode: http.StatusOK,
			wantStatus:     "OK",
		},
		{
			name:           "invalid json body",
			requestBody:    "not a json",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
			wantStatus:     "Error",
		},
		{
			name:           "validation error - missing password",
			requestBody:    Request{Email: "user1@example.com"},
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field Password is a required field",
			wantStatus:     "Error",
		},
		{
			name:           "unknown email",
			requestBody:    validReq,
			mockErr:        fmt.Errorf("services.Login: %w", services.ErrUserDoesNotExist),
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "email or password incorrect",
			wantStatus:     "Error",
		},
		{
			name:           "wrong password",
			requestBody:    validReq,
			mockErr:        fmt.Errorf("services.Login: %w", services.ErrPasswordDoesNotMatch),
			wantStatusCode: http.StatusUnauthorized,
			wantError:      "email or password incorrect",
			wantStatus:     "Error",
		},
		{
			name:           "internal error",
			requestBody:    validReq,
			mockErr:        errors.New("sign failed"),
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "internal error",
			wantStatus:     "Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			handler := New(newNoopLogger(), svc, false)

			if tt.mockResp != nil || tt.mockErr != nil {
				r := tt.requestBody.(Request)
				svc.On("Login", mock.Anything, r.Email, r.Password).Return(tt.mockResp, tt.mockErr).Once()
			}

			rec := doRequest(t, handler, tt.requestBody)

			assert.Equal(t, tt.wantStatusCode, rec.Code)

			var got map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.wantStatus, got["status"])

			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got["error"])
				assert.Empty(t, rec.Result().Cookies())
			} else {
				assert.Nil(t, got["error"])
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestLoginHandler_UnknownEmailAndWrongPasswordLookAlike(t *testing.T) {
	svc := new(ServiceMock)
	handler := New(newNoopLogger(), svc, false)

	svc.On("Login", mock.Anything, "ghost@example.com", "pw").Return(nil, services.ErrUserDoesNotExist).Once()
	svc.On("Login", mock.Anything, "user1@example.com", "pw").Return(nil, services.ErrPasswordDoesNotMatch).Once()

	unknown := doRequest(t, handler, Request{Email: "ghost@example.com", Password: "pw"})
	wrong := doRequest(t, handler, Request{Email: "user1@example.com", Password: "pw"})

	assert.Equal(t, unknown.Code, wrong.Code)
	assert.Equal(t, unknown.Body.String(), wrong.Body.String())
}

func TestLoginHandler_BodyAndCookies(t *testing.T) {
	svc := new(ServiceMock)
	handler := New(newNoopLogger(), svc, true)
	svc.On("Login", mock.Anything, "user1@example.com", "password123").Return(testPair(), nil).Once()

	rec := doRequest(t, handler, Request{Email: "user1@example.com", Password: "password123"})
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Status string        `json:"status"`
		Data   TokenResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, TokenResponse{
		Access:  AccessToken{AccessToken: "acc", TokenType: "bearer", ExpireTime: 3600},
		Refresh: RefreshToken{RefreshToken: "ref", TokenType: "bearer", ExpireTime: 604800},
	}, got.Data)

	cookies := map[string]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		cookies[c.Name] = c
	}

	refresh, ok := cookies[RefreshCookie]
	require.True(t, ok)
	assert.Equal(t, "ref", refresh.Value)
	assert.True(t, refresh.HttpOnly)
	assert.True(t, refresh.Secure)
	assert.Equal(t, http.SameSiteLaxMode, refresh.SameSite)
	assert.Equal(t, 604800, refresh.MaxAge)

	access, ok := cookies[AccessCookie]
	require.True(t, ok)
	assert.Equal(t, "acc", access.Value)
	assert.False(t, access.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, access.SameSite)
	assert.Equal(t, 3600, access.MaxAge)
}
