package services

import (
	"context"
	"encoding/base64"
	"log"
	"strings"

	"realtyhub/internal/config"
	"realtyhub/internal/domain"
	"realtyhub/internal/metrics"
	"realtyhub/internal/storage"
	"realtyhub/internal/util"
	apperrors "realtyhub/pkg/errors"
)

// AuthService checks back office credentials. It keeps no session state:
// every admin request carries and re-verifies the full credentials.
type AuthService struct {
	store storage.Storage
	cfg   *config.AuthConfig
}

// NewAuthService creates a new auth service
func NewAuthService(store storage.Storage, cfg *config.AuthConfig) *AuthService {
	return &AuthService{store: store, cfg: cfg}
}

// parseBasicAuth decodes base64("username:password"). The "Basic " scheme
// prefix is optional.
func parseBasicAuth(header string) (username, password string, ok bool) {
	header = strings.TrimSpace(header)
	if len(header) > 6 && strings.EqualFold(header[:6], "basic ") {
		header = strings.TrimSpace(header[6:])
	}
	decoded, err := base64.StdEncoding.DecodeString(header)
	if err != nil {
		return "", "", false
	}
	return strings.Cut(string(decoded), ":")
}

// Authenticate resolves the admin user named by an Authorization header value
func (s *AuthService) Authenticate(ctx context.Context, header string) (*domain.User, error) {
	if strings.TrimSpace(header) == "" {
		metrics.RecordAuthAttempt("failure")
		return nil, apperrors.Unauthorized("Authentication required")
	}
	username, password, ok := parseBasicAuth(header)
	if !ok {
		log.Printf("[AUTH] Rejected malformed authorization header")
		metrics.RecordAuthAttempt("failure")
		return nil, apperrors.Unauthorized("Invalid authorization header")
	}
	return s.verify(ctx, username, password)
}

func (s *AuthService) verify(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		log.Printf("[AUTH] Lookup failed for user '%s': %v", username, err)
		return nil, err
	}
	if user == nil {
		log.Printf("[AUTH] Authentication failed: user '%s' not found", username)
		metrics.RecordAuthAttempt("failure")
		return nil, apperrors.Unauthorized("Invalid credentials")
	}
	if !util.CheckPasswordHash(password, user.PasswordHash) {
		log.Printf("[AUTH] Authentication failed: invalid password for user '%s'", username)
		metrics.RecordAuthAttempt("failure")
		return nil, apperrors.InvalidCredentials("Invalid credentials")
	}
	if !user.IsAdmin {
		log.Printf("[AUTH] Authentication failed: user '%s' is not an admin", username)
		metrics.RecordAuthAttempt("forbidden")
		return nil, apperrors.Forbidden("Admin access required")
	}

	metrics.RecordAuthAttempt("success")
	return user, nil
}

// Login validates admin credentials up front. It issues nothing; later
// requests authenticate on their own.
func (s *AuthService) Login(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
	creds.Username = strings.TrimSpace(creds.Username)
	log.Printf("[AUTH] Login attempt for user: %s", creds.Username)

	if err := domain.Validate(creds); err != nil {
		return nil, err
	}
	user, err := s.verify(ctx, creds.Username, creds.Password)
	if err != nil {
		return nil, err
	}

	log.Printf("[AUTH] Login successful for user '%s' (id=%s)", user.Username, user.ID)
	return user, nil
}

// Register creates an admin user
func (s *AuthService) Register(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
	creds.Username = strings.TrimSpace(creds.Username)
	log.Printf("[AUTH] Register request: username=%s", creds.Username)

	if !s.cfg.AllowRegistration {
		log.Printf("[AUTH] Register rejected: registration is disabled")
		return nil, apperrors.Forbidden("Registration is disabled")
	}
	if err := domain.Validate(creds); err != nil {
		return nil, err
	}

	hash, err := util.HashPassword(creds.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, apperrors.Internal("failed to hash password", err)
	}

	user, err := s.store.CreateUser(ctx, domain.NewUser{
		Username:     creds.Username,
		PasswordHash: hash,
		IsAdmin:      true,
	})
	if err != nil {
		log.Printf("[AUTH] Register failed for '%s': %v", creds.Username, err)
		return nil, err
	}

	log.Printf("[AUTH] Register successful: username=%s, id=%s", user.Username, user.ID)
	return user, nil
}
