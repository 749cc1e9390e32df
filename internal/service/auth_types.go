package service

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// AuthConfig carries the auth-layer knobs out of the process config.
type AuthConfig struct {
	ResetTokenTTL time.Duration
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash string, password string) bool
}

// GoogleProfile is the verified identity a Google ID token resolves to.
type GoogleProfile struct {
	Subject string
	Email   string
	Name    string
	Picture string
}

// GoogleVerifier validates a Google ID token and extracts the profile.
type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (*GoogleProfile, error)
}

// EmailSender dispatches the password-reset mail. A nil sender disables
// dispatch without disabling the flow.
type EmailSender interface {
	SendPasswordResetEmail(ctx context.Context, email string, token string) error
}

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

// BcryptPasswordHasher hashes with bcrypt at the configured cost.
type BcryptPasswordHasher struct {
	Cost int
}

func (h BcryptPasswordHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = 12
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify reports whether password matches hash. A malformed hash verifies
// as false, never as an error.
func (h BcryptPasswordHasher) Verify(hash string, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
