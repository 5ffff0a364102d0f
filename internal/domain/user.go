package domain

import "time"

// User is an account that can authenticate against the API.
type User struct {
	ID              int64
	UUID            string
	Name            string
	Username        string
	Email           string
	PasswordHash    string
	IsActive        bool
	EmailVerifiedAt *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// AccessToken is a stored bearer token bound to a user and a device name.
// Only the SHA-256 hash of the secret is persisted.
type AccessToken struct {
	ID         int64
	UserID     int64
	Name       string
	TokenHash  string
	LastUsedAt *time.Time
	CreatedAt  time.Time
}

// DefaultDeviceName is used when a login does not name its device.
const DefaultDeviceName = "api"

// TokenTypeBearer is the token type reported to clients.
const TokenTypeBearer = "Bearer"
