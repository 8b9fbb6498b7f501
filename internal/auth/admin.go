package auth

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for any failed login attempt, regardless
// of whether the username or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid username or password")

// CheckAdminCredentials verifies a login attempt against the configured admin
// account. The stored password is a bcrypt hash; the username comparison is
// constant-time so the two failure modes are indistinguishable from timing.
func CheckAdminCredentials(username, password, adminUsername, adminPasswordHash string) error {
	if adminUsername == "" || adminPasswordHash == "" {
		return errors.New("admin credentials are not configured")
	}

	usernameMatch := subtle.ConstantTimeCompare([]byte(username), []byte(adminUsername)) == 1

	err := bcrypt.CompareHashAndPassword([]byte(adminPasswordHash), []byte(password))
	if err != nil || !usernameMatch {
		return ErrInvalidCredentials
	}

	return nil
}

// HashPassword generates a bcrypt hash suitable for the admin_password_hash
// config setting.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
