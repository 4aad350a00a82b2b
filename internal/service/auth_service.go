package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jackc/pgx/v5"

	"github.com/gs-sport/storefront/internal/auth"
	"github.com/gs-sport/storefront/internal/config"
	"github.com/gs-sport/storefront/internal/domain"
	"github.com/gs-sport/storefront/internal/repository"
	"github.com/gs-sport/storefront/internal/security"
	apperrors "github.com/gs-sport/storefront/pkg/util"
)

const maxNameLength = 100

// Session is a freshly issued token for an account.
type Session struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	tokens     *auth.TokenManager
	sanitizer  *security.Sanitizer
	bcryptCost int
	admins     map[string]struct{}
}

// AuthDependencies encapsulates requirements for the auth service.
type AuthDependencies struct {
	UserRepo  repository.UserRepository
	Tokens    *auth.TokenManager
	Sanitizer *security.Sanitizer
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	admins := make(map[string]struct{}, len(cfg.BootstrapAdminEmails))
	for _, email := range cfg.BootstrapAdminEmails {
		admins[strings.ToLower(email)] = struct{}{}
	}
	sanitizer := deps.Sanitizer
	if sanitizer == nil {
		sanitizer = security.NewSanitizer()
	}
	return &AuthService{
		users:      deps.UserRepo,
		tokens:     deps.Tokens,
		sanitizer:  sanitizer,
		bcryptCost: cfg.BcryptCost,
		admins:     admins,
	}
}

// Register creates a new account and signs it in.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*Session, error) {
	name = s.sanitizer.Text(name)
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	details := map[string]any{}
	if name == "" {
		details["name"] = "required"
	} else if utf8.RuneCountInString(name) > maxNameLength {
		details["name"] = "too long"
	}
	if utf8.RuneCountInString(password) < auth.MinPasswordLength {
		details["password"] = "must be at least 6 characters"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid registration", details)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewInternalError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	role := domain.RoleUser
	if _, ok := s.admins[email]; ok {
		role = domain.RoleAdmin
	}
	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("email already registered", nil)
		}
		return nil, apperrors.NewInternalError(err)
	}

	return s.issue(user)
}

// Login authenticates by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, apperrors.NewValidationError("email and password required", nil)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid email or password")
		}
		return nil, apperrors.NewInternalError(err)
	}
	if !auth.PasswordMatches(user.PasswordHash, password) {
		return nil, apperrors.NewUnauthorized("invalid email or password")
	}
	return s.issue(user)
}

// Me loads the account behind an identity.
func (s *AuthService) Me(ctx context.Context, identity domain.Identity) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, identity.SubjectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("account no longer exists")
		}
		return nil, apperrors.NewInternalError(err)
	}
	return user, nil
}

func (s *AuthService) issue(user *domain.User) (*Session, error) {
	token, exp, err := s.tokens.Issue(domain.IdentityOf(user))
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &Session{User: user, Token: token, ExpiresAt: exp}, nil
}

func normalizeEmail(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	addr, err := mail.ParseAddress(raw)
	if err != nil || addr.Address != raw {
		return "", apperrors.NewValidationError("invalid registration", map[string]any{"email": "invalid"})
	}
	return strings.ToLower(addr.Address), nil
}
