// Package models defines the core data structures for users, their sessions,
// lists and tasks, together with the domain errors shared across layers.
package models

import "time"

// User represents an application user with credentials and active sessions.
type User struct {
	// ID is the unique identifier for the user.
	ID string `json:"_id"`
	// Email is the unique, trimmed login of the user.
	Email string `json:"email"`
	// PasswordHash is the bcrypt hash of the user's password.
	PasswordHash string `json:"-"`
	// Sessions holds refresh-token sessions in insertion order (oldest first).
	Sessions []Session `json:"-"`

	password    string
	passwordSet bool
}

// Session is a stored refresh token together with its absolute expiry.
type Session struct {
	// Token is the opaque refresh token presented by the client.
	Token string
	// ExpiresAt is the expiry in Unix seconds.
	ExpiresAt int64
}

// SetPassword records a new plaintext password. It is hashed and cleared
// the next time the user is saved.
func (u *User) SetPassword(plain string) {
	u.password = plain
	u.passwordSet = true
}

// TakePassword returns the pending plaintext password, if any, and clears it.
func (u *User) TakePassword() (string, bool) {
	if !u.passwordSet {
		return "", false
	}
	p := u.password
	u.password, u.passwordSet = "", false
	return p, true
}

// HasValidSession reports whether the user holds a session with exactly the
// given token whose expiry is strictly after now.
func (u *User) HasValidSession(token string, now time.Time) bool {
	for _, s := range u.Sessions {
		if s.Token == token {
			return s.ExpiresAt > now.Unix()
		}
	}
	return false
}
