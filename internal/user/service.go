package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"roombook/internal/auth"
)

// RegisterRequest carries the fields needed to create an account.
type RegisterRequest struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Phone     string
	Password  string
}

// LoginMeta describes the device a login came from; stored on the session.
type LoginMeta struct {
	IPAddress  string
	UserAgent  string
	DeviceName string
}

// Service defines business logic related to users and their sessions.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*User, error)
	Login(ctx context.Context, email, password string, meta LoginMeta) (*User, *Session, error)
	GetByID(ctx context.Context, id string) (*User, error)
	List(ctx context.Context, filter Filter) ([]*User, int, error)
	Update(ctx context.Context, u *User) error
	ChangePassword(ctx context.Context, id, currentPassword, newPassword string) error

	RecordRefreshJTI(ctx context.Context, session *Session, jti string) error
	ValidateRefreshJTI(ctx context.Context, jti string) (*Session, error)
	ListSessions(ctx context.Context, userID string) ([]*Session, error)
	RevokeSession(ctx context.Context, userID, sessionID string) error
}

type service struct {
	repo   Repository
	hasher auth.PasswordHasher

	minPasswordLength int
}

// NewService creates a new user Service.
func NewService(repo Repository, hasher auth.PasswordHasher) Service {
	return &service{
		repo:              repo,
		hasher:            hasher,
		minPasswordLength: 8,
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	cleanEmail := normalizeEmail(req.Email)
	if cleanEmail == "" {
		return nil, errors.New("email is required")
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		// The original system keys login on email; username defaults to it.
		username = cleanEmail
	}

	if len(req.Password) < s.minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	// Check if email is already used.
	_, err := s.repo.GetByEmail(ctx, cleanEmail)
	if err == nil {
		return nil, ErrEmailAlreadyUsed
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing email: %w", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	u := &User{
		Email:        cleanEmail,
		Username:     username,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: hash,
		Role:         RoleUser,
		IsActive:     true,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

func (s *service) Login(ctx context.Context, email, password string, meta LoginMeta) (*User, *Session, error) {
	cleanEmail := normalizeEmail(email)
	if cleanEmail == "" || strings.TrimSpace(password) == "" {
		return nil, nil, ErrInvalidCredentials
	}

	u, err := s.repo.GetByEmail(ctx, cleanEmail)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("failed to fetch user by email: %w", err)
	}

	if !u.IsActive {
		return nil, nil, ErrInactiveUser
	}

	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	// Best effort; login does not fail if this update does.
	_ = s.repo.UpdateLastLogin(ctx, u.ID, time.Now().UTC())

	session := &Session{
		UserID:     u.ID,
		IPAddress:  meta.IPAddress,
		UserAgent:  meta.UserAgent,
		DeviceName: meta.DeviceName,
		IsCurrent:  true,
	}

	return u, session, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, filter Filter) ([]*User, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *service) Update(ctx context.Context, u *User) error {
	if !u.Role.Valid() {
		return ErrInvalidRole
	}
	return s.repo.Update(ctx, u)
}

func (s *service) ChangePassword(ctx context.Context, id, currentPassword, newPassword string) error {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.hasher.Compare(u.PasswordHash, currentPassword); err != nil {
		return ErrWrongPassword
	}

	if len(newPassword) < s.minPasswordLength {
		return ErrPasswordTooShort
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.repo.UpdatePassword(ctx, id, hash)
}

// RecordRefreshJTI persists the session with the JTI of the refresh token
// that was just issued for it.
func (s *service) RecordRefreshJTI(ctx context.Context, session *Session, jti string) error {
	session.RefreshTokenJTI = jti
	return s.repo.CreateSession(ctx, session)
}

// ValidateRefreshJTI checks a refresh token's JTI against the session table.
// A missing row means the session was revoked and the token must be rejected.
func (s *service) ValidateRefreshJTI(ctx context.Context, jti string) (*Session, error) {
	session, err := s.repo.GetSessionByJTI(ctx, jti)
	if err != nil {
		return nil, err
	}

	_ = s.repo.TouchSession(ctx, jti, time.Now().UTC())

	return session, nil
}

func (s *service) ListSessions(ctx context.Context, userID string) ([]*Session, error) {
	return s.repo.ListSessions(ctx, userID)
}

func (s *service) RevokeSession(ctx context.Context, userID, sessionID string) error {
	return s.repo.DeleteSession(ctx, userID, sessionID)
}

// normalizeEmail trims spaces and lowercases the email.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
