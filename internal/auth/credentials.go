// ABOUTME: Single-account credential check for the backoffice login
// ABOUTME: Compares bcrypt hashes with a dummy comparison on unknown usernames

package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for any failed login.
var ErrInvalidCredentials = errors.New("invalid credentials")

// dummyHash keeps the unknown-user path as slow as a real comparison.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Authenticator checks the configured username and password.
type Authenticator struct {
	username string
	hash     []byte
}

// NewAuthenticator builds an Authenticator. passwordHash wins when set;
// otherwise the plaintext password is hashed once here.
func NewAuthenticator(username, password, passwordHash string) (*Authenticator, error) {
	if username == "" {
		return nil, errors.New("username is required")
	}
	if passwordHash != "" {
		if _, err := bcrypt.Cost([]byte(passwordHash)); err != nil {
			return nil, fmt.Errorf("invalid password hash: %w", err)
		}
		return &Authenticator{username: username, hash: []byte(passwordHash)}, nil
	}
	if password == "" {
		return nil, errors.New("a password or password hash is required")
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	return &Authenticator{username: username, hash: []byte(hash)}, nil
}

// Username is the configured account name.
func (a *Authenticator) Username() string {
	return a.username
}

// Check returns nil when username and password match the account.
func (a *Authenticator) Check(username, password string) error {
	if subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) != 1 {
		_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(password))
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// HashPassword returns the bcrypt hash stored in auth.password_hash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}
