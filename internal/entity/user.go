package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type UserRole string

const (
	RoleUser       UserRole = "USER"
	RoleAdmin      UserRole = "ADMIN"
	RoleSuperAdmin UserRole = "SUPER_ADMIN"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

type UserStatus string

const (
	StatusActive   UserStatus = "ACTIVE"
	StatusInactive UserStatus = "INACTIVE"
	StatusBlocked  UserStatus = "BLOCKED"
	StatusPending  UserStatus = "PENDING"
)

func (s UserStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusBlocked, StatusPending:
		return true
	}
	return false
}

type AuthProvider string

const (
	ProviderLocal  AuthProvider = "local"
	ProviderGoogle AuthProvider = "google"
)

const (
	// MaxSessions bounds the refresh-token list; the oldest entry is
	// evicted first once the cap is reached.
	MaxSessions = 5

	// MaxLoginAttempts failed password verifications lock the account
	// for LockDuration.
	MaxLoginAttempts = 5
	LockDuration     = 15 * time.Minute
)

type User struct {
	ID    uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Name  string    `gorm:"type:varchar(100);not null"`

	PasswordHash *string      `gorm:"type:text"`
	Provider     AuthProvider `gorm:"type:varchar(20);default:'local';not null;index:idx_users_provider_id"`
	ProviderID   *string      `gorm:"type:varchar(255);index:idx_users_provider_id"`

	Role   UserRole   `gorm:"type:varchar(20);default:'USER';not null;index"`
	Status UserStatus `gorm:"type:varchar(20);default:'ACTIVE';not null;index"`

	Avatar          *string `gorm:"type:text"`
	IsEmailVerified bool    `gorm:"default:false"`

	RefreshTokens datatypes.JSONSlice[string] `gorm:"type:jsonb"`

	LoginAttempts int `gorm:"default:0;not null"`
	LockUntil     *time.Time

	PasswordResetTokenHash *string `gorm:"type:text"`
	PasswordResetExpiresAt *time.Time

	PasswordChangedAt *time.Time
	LastLoginAt       *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsLocked reports whether the account is under an active login lock.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockUntil != nil && u.LockUntil.After(now)
}

// LockRemaining returns how long the current lock still holds, zero when
// the account is not locked.
func (u *User) LockRemaining(now time.Time) time.Duration {
	if !u.IsLocked(now) {
		return 0
	}
	return u.LockUntil.Sub(now)
}

// RecordFailedAttempt applies the lockout policy for one failed password
// verification. A lock that has already expired starts a fresh window at
// one attempt; an active lock is left untouched; otherwise the counter
// increments and the account locks once it reaches MaxLoginAttempts.
func (u *User) RecordFailedAttempt(now time.Time) {
	if u.LockUntil != nil && !u.LockUntil.After(now) {
		u.LoginAttempts = 1
		u.LockUntil = nil
		return
	}
	if u.IsLocked(now) {
		return
	}
	u.LoginAttempts++
	if u.LoginAttempts >= MaxLoginAttempts {
		lockUntil := now.Add(LockDuration)
		u.LockUntil = &lockUntil
	}
}

// RecordSuccess clears the lockout state and stamps the login time.
func (u *User) RecordSuccess(now time.Time) {
	u.LoginAttempts = 0
	u.LockUntil = nil
	u.LastLoginAt = &now
}

// AddRefreshToken appends token to the session registry, evicting the
// oldest entry once the cap is reached.
func (u *User) AddRefreshToken(token string) {
	tokens := []string(u.RefreshTokens)
	for len(tokens) >= MaxSessions {
		tokens = tokens[1:]
	}
	tokens = append(tokens, token)
	u.RefreshTokens = datatypes.NewJSONSlice(tokens)
}

// RotateRefreshToken replaces oldToken with newToken at the same position.
// It returns false when oldToken is not registered; the caller must treat
// that as possible token theft and clear the registry.
func (u *User) RotateRefreshToken(oldToken, newToken string) bool {
	for i, t := range u.RefreshTokens {
		if t == oldToken {
			u.RefreshTokens[i] = newToken
			return true
		}
	}
	return false
}

// RemoveRefreshToken drops token from the registry. Removing a token that
// is not present is not an error.
func (u *User) RemoveRefreshToken(token string) {
	tokens := make([]string, 0, len(u.RefreshTokens))
	for _, t := range u.RefreshTokens {
		if t != token {
			tokens = append(tokens, t)
		}
	}
	u.RefreshTokens = datatypes.NewJSONSlice(tokens)
}

// ClearRefreshTokens logs the user out of every device.
func (u *User) ClearRefreshTokens() {
	u.RefreshTokens = datatypes.NewJSONSlice([]string{})
}

// HasRefreshToken reports membership in the session registry.
func (u *User) HasRefreshToken(token string) bool {
	for _, t := range u.RefreshTokens {
		if t == token {
			return true
		}
	}
	return false
}
