// Package account manages user credentials on top of the store: password
// hashing, login validation, API key issue and rotation, and the first admin.
package account

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/roach88/kantan/internal/config"
	"github.com/roach88/kantan/internal/locale"
	"github.com/roach88/kantan/internal/store"
)

// DefaultCost is the bcrypt cost for new password hashes.
const DefaultCost = 10

var (
	// ErrInvalidUsername is returned by ValidateLogin for an unknown user.
	ErrInvalidUsername = errors.New("account: invalid username")
	// ErrInvalidPassword is returned by ValidateLogin for a wrong password.
	ErrInvalidPassword = errors.New("account: invalid password")
	// ErrInvalidAPIKey is returned by AuthenticateAPIKey for an unknown key.
	ErrInvalidAPIKey = errors.New("account: invalid api key")
	// ErrNoAdminCredentials is returned by EnsureAdmin when no admin exists
	// and none is configured.
	ErrNoAdminCredentials = errors.New("account: no admin user exists; set ADMIN_USERNAME and ADMIN_PASSWORD")
	// ErrEmptyPassword is returned when a new password is empty.
	ErrEmptyPassword = errors.New("account: password is required")
)

// UserStore is the subset of the store used for accounts.
type UserStore interface {
	CreateUser(ctx context.Context, nu store.NewUser) (store.User, error)
	GetUserByUsername(ctx context.Context, username string) (store.User, error)
	GetUserByAPIKey(ctx context.Context, apiKey string) (store.User, error)
	UpdateUserPassword(ctx context.Context, username, passwordHash string) (store.User, error)
	UpdateUserAPIKey(ctx context.Context, username, apiKey string) (store.User, error)
	UpdateUserLanguages(ctx context.Context, username string, languageCodes []string) (store.User, error)
	AdminUserExists(ctx context.Context) (bool, error)
}

// KeyGenerator issues API keys.
type KeyGenerator interface {
	NewKey() string
}

// RandomKeys issues 32 hex character keys from random UUIDs.
type RandomKeys struct{}

// NewKey implements KeyGenerator.
func (RandomKeys) NewKey() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Service implements account operations.
type Service struct {
	users UserStore
	keys  KeyGenerator
	cost  int
}

// Option configures a Service.
type Option func(*Service)

// WithKeyGenerator overrides the API key source.
func WithKeyGenerator(g KeyGenerator) Option {
	return func(s *Service) {
		if g != nil {
			s.keys = g
		}
	}
}

// WithCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func WithCost(cost int) Option {
	return func(s *Service) {
		s.cost = cost
	}
}

// New returns a Service backed by users.
func New(users UserStore, opts ...Option) *Service {
	s := &Service{
		users: users,
		keys:  RandomKeys{},
		cost:  DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewAccount holds the fields of a user to create.
type NewAccount struct {
	Username      string
	Password      string
	Role          store.Role
	LanguageCodes []string
}

// CreateUser hashes the password, issues an API key and stores the user.
// Language codes are canonicalized.
func (s *Service) CreateUser(ctx context.Context, na NewAccount) (store.User, error) {
	hash, err := s.hash(na.Password)
	if err != nil {
		return store.User{}, err
	}

	codes, err := locale.CanonicalList(na.LanguageCodes)
	if err != nil {
		return store.User{}, err
	}

	return s.users.CreateUser(ctx, store.NewUser{
		Username:      na.Username,
		PasswordHash:  hash,
		Role:          na.Role,
		APIKey:        s.keys.NewKey(),
		LanguageCodes: codes,
	})
}

// ValidateLogin returns the user if password matches.
func (s *Service) ValidateLogin(ctx context.Context, username, password string) (store.User, error) {
	u, err := s.users.GetUserByUsername(ctx, username)
	if store.IsNotFound(err) {
		return store.User{}, ErrInvalidUsername
	}
	if err != nil {
		return store.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return store.User{}, ErrInvalidPassword
	}
	return u, nil
}

// AuthenticateAPIKey returns the user holding apiKey.
func (s *Service) AuthenticateAPIKey(ctx context.Context, apiKey string) (store.User, error) {
	if apiKey == "" {
		return store.User{}, ErrInvalidAPIKey
	}
	u, err := s.users.GetUserByAPIKey(ctx, apiKey)
	if store.IsNotFound(err) {
		return store.User{}, ErrInvalidAPIKey
	}
	return u, err
}

// ChangePassword replaces a user's password.
func (s *Service) ChangePassword(ctx context.Context, username, password string) (store.User, error) {
	hash, err := s.hash(password)
	if err != nil {
		return store.User{}, err
	}
	return s.users.UpdateUserPassword(ctx, username, hash)
}

// RotateAPIKey issues a new API key, invalidating the old one.
func (s *Service) RotateAPIKey(ctx context.Context, username string) (store.User, error) {
	return s.users.UpdateUserAPIKey(ctx, username, s.keys.NewKey())
}

// SetLanguages replaces a user's language list with canonicalized codes.
func (s *Service) SetLanguages(ctx context.Context, username string, codes []string) (store.User, error) {
	canonical, err := locale.CanonicalList(codes)
	if err != nil {
		return store.User{}, err
	}
	return s.users.UpdateUserLanguages(ctx, username, canonical)
}

// EnsureAdmin creates the configured admin if no admin exists yet.
// Reports whether a user was created.
func (s *Service) EnsureAdmin(ctx context.Context, admin config.AdminConfig) (bool, error) {
	exists, err := s.users.AdminUserExists(ctx)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if !admin.HasAdmin() {
		return false, ErrNoAdminCredentials
	}

	if _, err := s.CreateUser(ctx, NewAccount{
		Username: admin.Username,
		Password: admin.Password,
		Role:     store.RoleAdmin,
	}); err != nil {
		return false, fmt.Errorf("account: create admin: %w", err)
	}
	return true, nil
}

func (s *Service) hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("account: hash password: %w", err)
	}
	return string(b), nil
}
