package models

import "time"

// Role is the authorization role of a user.
type Role string

const (
	// RoleAdmin may manage users and create accounts.
	RoleAdmin Role = "admin"
	// RoleUser may only work with accounts owned by or shared with them.
	RoleUser Role = "user"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User represents a person who can log in and view codes.
// Sensitive fields must never be exposed outside trusted boundaries.
type User struct {
	// UserID is the unique identifier of the user.
	UserID int64 `json:"id"`

	// Login is the unique user login identifier used during authentication.
	Login string `json:"login" validate:"required,min=3,max=64"`

	// Password carries the plaintext password on the way in (login, create).
	// It is never persisted and never serialized back.
	Password string `json:"password,omitempty" validate:"required,min=6,max=128"`

	// PasswordHash is the bcrypt hash stored in the database.
	PasswordHash string `json:"-"`

	// Role is the authorization role.
	Role Role `json:"role,omitempty" validate:"omitempty,oneof=admin user"`

	// CreatedAt is the timestamp when the user was created.
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user has the administrator role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Viewer returns the identity of u as seen by the access policy.
func (u User) Viewer() Viewer {
	return Viewer{UserID: u.UserID, Role: u.Role}
}

// Public returns a copy of u without credential material.
func (u User) Public() User {
	u.Password = ""
	u.PasswordHash = ""
	return u
}

// Viewer is the authenticated identity performing an operation.
// It is built from verified token claims.
type Viewer struct {
	UserID int64
	Role   Role
}

// IsAdmin reports whether the viewer has the administrator role.
func (v Viewer) IsAdmin() bool {
	return v.Role == RoleAdmin
}

// ChangePasswordRequest is the body of the change-password operation.
type ChangePasswordRequest struct {
	UserID          int64  `json:"-"`
	CurrentPassword string `json:"current_password" validate:"max=128"`
	NewPassword     string `json:"new_password" validate:"required,min=6,max=128"`
}

// LoginResponse is returned by a successful login.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// VerifyTokenRequest is the body of the token verification operation.
type VerifyTokenRequest struct {
	Token string `json:"token" validate:"required"`
}
