package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/argon2"

	"github.com/gosuda/seguro/internal/domain"
)

// Sentinel errors for the auth package.
var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	ErrWeakPassword       = fmt.Errorf("%w: password must have at least %d characters", domain.ErrValidation, MinPasswordLen)
)

// MinPasswordLen is the shortest password CreateUser accepts.
const MinPasswordLen = 8

// argon2id parameters following OWASP recommendations.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024 // 64 MiB
	argonThreads = 4
	argonKeyLen  = 32
	argonSaltLen = 16
)

// Tokens is the result of a successful login or refresh.
type Tokens struct {
	AccessToken  string
	RefreshToken string
	Identity     domain.Identity
}

// Service provides authentication and user administration.
type Service struct {
	userRepo   domain.UserRepository
	jwtSecret  string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewService creates a new auth service.
func NewService(userRepo domain.UserRepository, jwtSecret string, accessTTL, refreshTTL time.Duration) *Service {
	return &Service{
		userRepo:   userRepo,
		jwtSecret:  jwtSecret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// CreateUser stores a user with an argon2id password hash. Only
// administrators may create users.
func (s *Service) CreateUser(ctx context.Context, actor domain.Identity, username, password string, role domain.Role) (*domain.User, error) {
	if err := actor.Validate(); err != nil {
		return nil, fmt.Errorf("auth.CreateUser: %w", err)
	}
	if !actor.IsAdmin() {
		return nil, fmt.Errorf("auth.CreateUser: %w", domain.ErrForbidden)
	}

	user, err := s.createUser(ctx, username, password, role)
	if err != nil {
		return nil, fmt.Errorf("auth.CreateUser: %w", err)
	}

	log.Info().Str("actor", actor.Username).Str("username", user.Username).Str("role", string(user.Role)).
		Msg("auth: user created")
	return user, nil
}

// EnsureAdmin creates the bootstrap administrator when no user with that
// name exists. An existing user is left untouched.
func (s *Service) EnsureAdmin(ctx context.Context, username, password string) (created bool, err error) {
	_, err = s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, domain.ErrUserNotFound):
		return false, fmt.Errorf("auth.EnsureAdmin: %w", err)
	}

	if _, err := s.createUser(ctx, username, password, domain.RoleAdmin); err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			return false, nil
		}
		return false, fmt.Errorf("auth.EnsureAdmin: %w", err)
	}
	return true, nil
}

func (s *Service) createUser(ctx context.Context, username, password string, role domain.Role) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("username is required: %w", domain.ErrInvalidInput)
	}
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q: %w", role, domain.ErrInvalidInput)
	}
	if len(password) < MinPasswordLen {
		return nil, ErrWeakPassword
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login validates username/password and returns access + refresh JWT tokens.
// Unknown users and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, username, password string) (*Tokens, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("auth.Login: %w", err)
		}
		return nil, fmt.Errorf("auth.Login: %w", ErrInvalidCredentials)
	}

	if !verifyPassword(password, user.PasswordHash) {
		return nil, fmt.Errorf("auth.Login: %w", ErrInvalidCredentials)
	}

	tokens, err := s.issue(user.Identity())
	if err != nil {
		return nil, fmt.Errorf("auth.Login: %w", err)
	}
	return tokens, nil
}

// RefreshToken validates a refresh token and issues a new token pair with
// the user's current role.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (*Tokens, error) {
	claims, err := ValidateToken(s.jwtSecret, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("auth.RefreshToken: %w", err)
	}

	if claims.TokenType != tokenTypeRefresh {
		return nil, fmt.Errorf("auth.RefreshToken: %w", ErrInvalidToken)
	}

	user, err := s.userRepo.GetByUsername(ctx, claims.Username)
	if err != nil {
		return nil, fmt.Errorf("auth.RefreshToken: %w", ErrInvalidCredentials)
	}

	tokens, err := s.issue(user.Identity())
	if err != nil {
		return nil, fmt.Errorf("auth.RefreshToken: %w", err)
	}
	return tokens, nil
}

// Authenticate resolves an access token to the caller identity.
func (s *Service) Authenticate(token string) (domain.Identity, error) {
	claims, err := ValidateAccessToken(s.jwtSecret, token)
	if err != nil {
		return domain.Identity{}, err
	}
	id := claims.Identity()
	if err := id.Validate(); err != nil {
		return domain.Identity{}, fmt.Errorf("auth.Authenticate: %w", err)
	}
	return id, nil
}

func (s *Service) issue(id domain.Identity) (*Tokens, error) {
	access, err := IssueAccessToken(s.jwtSecret, id, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := IssueRefreshToken(s.jwtSecret, id, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &Tokens{AccessToken: access, RefreshToken: refresh, Identity: id}, nil
}

// hashPassword generates an argon2id hash with a random salt.
// Format: hex(salt) + "$" + hex(hash)
func hashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return hex.EncodeToString(salt) + "$" + hex.EncodeToString(hash), nil
}

// verifyPassword checks a password against an argon2id hash.
func verifyPassword(password, encoded string) bool {
	saltHex, hashHex, ok := strings.Cut(encoded, "$")
	if !ok || saltHex == "" || hashHex == "" {
		return false
	}

	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}

	expectedHash, err := hex.DecodeString(hashHex)
	if err != nil {
		return false
	}

	computed := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return subtle.ConstantTimeCompare(computed, expectedHash) == 1
}
