package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/crypto/bcrypt"

	"github.com/labcore/lis/internal/platform/auth"
)

const minPasswordLen = 3

type Service struct {
	repo     Repository
	tokens   *auth.TokenIssuer
	logger   zerolog.Logger
	hashCost int
	now      func() time.Time
}

func NewService(repo Repository, tokens *auth.TokenIssuer, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		tokens:   tokens,
		logger:   logger.With().Str("component", "identity").Logger(),
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
}

func (s *Service) hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

func matches(u *User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// Register creates a staff account with the default permissions of its role.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	u := &User{
		Name:     strings.TrimSpace(req.Name),
		UserName: strings.TrimSpace(req.UserName),
		Role:     strings.TrimSpace(req.Role),
	}
	if u.Name == "" || u.UserName == "" || req.Password == "" || u.Role == "" {
		return nil, invalid("All fields are required")
	}
	if !auth.IsValidRole(u.Role) {
		return nil, invalid("role must be one of %s", strings.Join(auth.Roles, ", "))
	}
	if len(req.Password) < minPasswordLen {
		return nil, invalid("Password must be at least %d characters long", minPasswordLen)
	}

	hash, err := s.hash(req.Password)
	if err != nil {
		return nil, err
	}
	u.PasswordHash = hash
	u.Permissions = DefaultPermissions(u.Role)

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_name", u.UserName).Str("role", u.Role).Msg("user created")
	return u, nil
}

// Login checks the password and issues an access token. Unknown user names
// and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	u, err := s.repo.GetByUserName(ctx, strings.TrimSpace(req.UserName))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !matches(u, req.Password) {
		s.logger.Warn().Str("user_name", u.UserName).Msg("failed login")
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.tokens.Issue(u.ID.String(), u.Name, u.Role, u.Permissions)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: exp, User: u}, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*User, error) {
	return s.repo.List(ctx)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// ChangePassword lets a user replace their own password.
func (s *Service) ChangePassword(ctx context.Context, id uuid.UUID, current, next string) error {
	if current == "" || next == "" {
		return invalid("All fields are required")
	}
	if len(next) < minPasswordLen {
		return invalid("Password must be at least %d characters long", minPasswordLen)
	}
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !matches(u, current) {
		return ErrWrongPassword
	}
	if matches(u, next) {
		return invalid("New password must be different from current password")
	}
	hash, err := s.hash(next)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, id, hash)
}

// ResetPassword sets a new password without checking the old one.
func (s *Service) ResetPassword(ctx context.Context, id uuid.UUID, next string) error {
	if len(next) < minPasswordLen {
		return invalid("Password must be at least %d characters long", minPasswordLen)
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	hash, err := s.hash(next)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, id, hash)
}

// UpdatePermissions replaces a user's permission set. Duplicates are
// dropped; unknown names are rejected. Takes effect at the next login.
func (s *Service) UpdatePermissions(ctx context.Context, id uuid.UUID, perms []string, by Modifier) (*User, error) {
	if perms == nil {
		return nil, invalid("Permissions array is required")
	}
	if unknown := unknownPermissions(perms); len(unknown) > 0 {
		return nil, invalid("unknown permissions: %s", strings.Join(unknown, ", "))
	}
	perms = lo.Uniq(perms)
	by.Date = s.now().UTC()

	if err := s.repo.UpdatePermissions(ctx, id, perms, by); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}
