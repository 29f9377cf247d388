// ABOUTME: Tests for the single-account credential check
// ABOUTME: Covers plaintext and pre-hashed passwords and rejected logins

package auth

import (
	"errors"
	"testing"
)

func TestAuthenticator_Plaintext(t *testing.T) {
	a, err := NewAuthenticator("admin", "admin", "")
	if err != nil {
		t.Fatalf("NewAuthenticator() error = %v", err)
	}

	if err := a.Check("admin", "admin"); err != nil {
		t.Errorf("Check(admin, admin) error = %v", err)
	}

	tests := []struct {
		name, user, pass string
	}{
		{"wrong password", "admin", "nope"},
		{"wrong user", "root", "admin"},
		{"empty", "", ""},
		{"case differs", "Admin", "admin"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := a.Check(tt.user, tt.pass); !errors.Is(err, ErrInvalidCredentials) {
				t.Errorf("Check() error = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestAuthenticator_Hash(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatal(err)
	}

	a, err := NewAuthenticator("walid", "ignored", hash)
	if err != nil {
		t.Fatalf("NewAuthenticator() error = %v", err)
	}
	if a.Username() != "walid" {
		t.Errorf("Username() = %q", a.Username())
	}
	if err := a.Check("walid", "s3cret"); err != nil {
		t.Errorf("Check() error = %v", err)
	}
	if err := a.Check("walid", "ignored"); err == nil {
		t.Error("plaintext password must be ignored when a hash is configured")
	}
}

func TestNewAuthenticator_Errors(t *testing.T) {
	if _, err := NewAuthenticator("", "x", ""); err == nil {
		t.Error("expected error for empty username")
	}
	if _, err := NewAuthenticator("admin", "", ""); err == nil {
		t.Error("expected error for missing password")
	}
	if _, err := NewAuthenticator("admin", "", "not-a-bcrypt-hash"); err == nil {
		t.Error("expected error for malformed hash")
	}
}
