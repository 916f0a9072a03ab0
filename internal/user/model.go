package user

import (
	"net/http"
	"time"

	"roombook/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.New(http.StatusNotFound, "user not found")
	ErrEmailAlreadyUsed   = apperror.New(http.StatusConflict, "email already used")
	ErrUsernameTaken      = apperror.New(http.StatusConflict, "username already taken")
	ErrInvalidCredentials = apperror.New(http.StatusUnauthorized, "invalid email or password")
	ErrInactiveUser       = apperror.New(http.StatusUnauthorized, "user is inactive")
	ErrPasswordTooShort   = apperror.New(http.StatusBadRequest, "password is too short")
	ErrWrongPassword      = apperror.New(http.StatusBadRequest, "current password is incorrect")
	ErrInvalidRole        = apperror.New(http.StatusBadRequest, "invalid role")
	ErrSessionNotFound    = apperror.New(http.StatusNotFound, "session not found")
)

// Role is the closed set of access levels a user can hold.
type Role string

const (
	RoleUser    Role = "user"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// CanManageBookings reports whether the role may confirm/cancel bookings
// and see bookings outside its own scope.
func (r Role) CanManageBookings() bool {
	return r == RoleManager || r == RoleAdmin
}

// CanAdministrate reports whether the role may manage reference data
// (rooms, locations, resources) and other users.
func (r Role) CanAdministrate() bool {
	return r == RoleAdmin
}

// User represents an account in the system.
type User struct {
	ID           string // UUID
	Email        string
	Username     string
	FirstName    string
	LastName     string
	Phone        string
	PasswordHash string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLoginAt  *time.Time
}

// FullName returns first and last name joined, falling back to the username.
func (u *User) FullName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Username
	}
	return name
}

// Session tracks one login (device) of a user. The refresh token JTI ties
// the issued refresh token to this row so individual devices can be revoked.
type Session struct {
	ID              string
	UserID          string
	RefreshTokenJTI string
	IPAddress       string
	UserAgent       string
	DeviceName      string
	IsCurrent       bool
	LastActivity    time.Time
	CreatedAt       time.Time
}

// Filter defines filter options for listing users.
type Filter struct {
	Email    string
	Username string
	Role     string
	IsActive *bool // pointer to distinguish false from not set

	Page     int
	PageSize int
}
