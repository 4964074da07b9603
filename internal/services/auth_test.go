package services

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"realtyhub/internal/config"
	"realtyhub/internal/domain"
	"realtyhub/internal/storage"
	"realtyhub/internal/storage/memory"
	"realtyhub/internal/util"
	apperrors "realtyhub/pkg/errors"
)

func basic(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}

func seedUser(t *testing.T, store storage.Storage, username, password string, admin bool) *domain.User {
	t.Helper()
	hash, err := util.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	user, err := store.CreateUser(context.Background(), domain.NewUser{Username: username, PasswordHash: hash, IsAdmin: admin})
	require.NoError(t, err)
	return user
}

func newAuth(t *testing.T) (*AuthService, storage.Storage) {
	t.Helper()
	store := memory.New()
	seedUser(t, store, "admin", "secret123", true)
	seedUser(t, store, "agent", "secret123", false)
	return NewAuthService(store, &config.AuthConfig{BcryptCost: bcrypt.MinCost, AllowRegistration: true}), store
}

func TestParseBasicAuth(t *testing.T) {
	encoded := base64.StdEncoding.EncodeToString([]byte("admin:pa:ss"))

	for _, header := range []string{"Basic " + encoded, "basic " + encoded, encoded} {
		user, pass, ok := parseBasicAuth(header)
		require.True(t, ok, header)
		assert.Equal(t, "admin", user)
		assert.Equal(t, "pa:ss", pass)
	}

	_, _, ok := parseBasicAuth("Basic !!!")
	assert.False(t, ok)
	_, _, ok = parseBasicAuth(base64.StdEncoding.EncodeToString([]byte("no-colon")))
	assert.False(t, ok)
}

func TestAuthenticate(t *testing.T) {
	auth, _ := newAuth(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		header string
		code   apperrors.ErrorCode
	}{
		{"missing header", "", apperrors.ErrCodeUnauthorized},
		{"garbage header", "Basic %%%", apperrors.ErrCodeUnauthorized},
		{"unknown user", basic("ghost", "secret123"), apperrors.ErrCodeUnauthorized},
		{"wrong password", basic("admin", "wrong-pass"), apperrors.ErrCodeInvalidCredentials},
		{"not an admin", basic("agent", "secret123"), apperrors.ErrCodeForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := auth.Authenticate(ctx, tt.header)
			require.Error(t, err)
			assert.Nil(t, user)
			assert.Equal(t, tt.code, apperrors.CodeOf(err))
		})
	}

	user, err := auth.Authenticate(ctx, basic("admin", "secret123"))
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Username)
	assert.True(t, user.IsAdmin)
}

func TestLogin(t *testing.T) {
	auth, _ := newAuth(t)
	ctx := context.Background()

	user, err := auth.Login(ctx, domain.Credentials{Username: " admin ", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Username)

	_, err = auth.Login(ctx, domain.Credentials{Username: "admin"})
	assert.Equal(t, apperrors.ErrCodeValidation, apperrors.CodeOf(err))

	_, err = auth.Login(ctx, domain.Credentials{Username: "admin", Password: "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, apperrors.HTTPStatus(err))
}

func TestRegister(t *testing.T) {
	auth, store := newAuth(t)
	ctx := context.Background()

	user, err := auth.Register(ctx, domain.Credentials{Username: "broker", Password: "secret123"})
	require.NoError(t, err)
	assert.True(t, user.IsAdmin)

	stored, err := store.GetUserByUsername(ctx, "broker")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEqual(t, "secret123", stored.PasswordHash)
	assert.True(t, util.CheckPasswordHash("secret123", stored.PasswordHash))

	_, err = auth.Register(ctx, domain.Credentials{Username: "broker", Password: "other-pass"})
	assert.True(t, apperrors.IsDuplicateKey(err))

	_, err = auth.Authenticate(ctx, basic("broker", "secret123"))
	assert.NoError(t, err)
}

func TestRegisterCanBeDisabled(t *testing.T) {
	auth := NewAuthService(memory.New(), &config.AuthConfig{BcryptCost: bcrypt.MinCost})

	_, err := auth.Register(context.Background(), domain.Credentials{Username: "broker", Password: "secret123"})
	assert.True(t, apperrors.IsForbidden(err))
}

func TestAdminOnly(t *testing.T) {
	auth, _ := newAuth(t)

	var seen *domain.User
	handler := AdminOnly(auth)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"non-admin", basic("agent", "secret123"), http.StatusForbidden},
		{"bad password", basic("admin", "nope-nope"), http.StatusUnauthorized},
		{"admin", basic("admin", "secret123"), http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/api/admin/contact/messages", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusNoContent {
				require.NotNil(t, seen)
				assert.Equal(t, "admin", seen.Username)
			} else {
				assert.Nil(t, seen)
			}
		})
	}
}
