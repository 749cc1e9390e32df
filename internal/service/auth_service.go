package service

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	"accounthub/internal/apperr"
	"accounthub/internal/entity"
	"accounthub/internal/repository"
	"accounthub/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Burned on lookups that miss so a missing account costs the same as a
// wrong password.
const dummyPasswordHash = "$2a$12$CwTycUXWue0Thq9StjUM0uJ8yQbWc1x9uxw2sQ2sXUNx5x9xJ9F2S"

// AuthResult is what register, login and google auth hand back to the
// transport layer.
type AuthResult struct {
	User         *entity.User
	AccessToken  string
	RefreshToken string
}

// AuthService owns the authentication and session lifecycle: credential
// verification, token issuance and rotation, lockout, password reset.
type AuthService struct {
	users  repository.UserRepository
	hasher PasswordHasher
	tokens utils.TokenManager
	google GoogleVerifier
	emails EmailSender
	clock  Clock
	config AuthConfig
	logger *logrus.Logger
}

func NewAuthService(
	users repository.UserRepository,
	hasher PasswordHasher,
	tokens utils.TokenManager,
	google GoogleVerifier,
	emails EmailSender,
	clock Clock,
	config AuthConfig,
	logger *logrus.Logger,
) *AuthService {
	return &AuthService{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		google: google,
		emails: emails,
		clock:  clock,
		config: config,
		logger: logger,
	}
}

// Register creates a LOCAL account and seeds its first session.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*AuthResult, error) {
	email = utils.NormalizeEmail(email)

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.New("Email already registered", http.StatusConflict, apperr.CodeEmailExists).
			WithData(map[string]any{"email": email})
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Email:        email,
		Name:         name,
		PasswordHash: &hash,
		Provider:     entity.ProviderLocal,
		Role:         entity.RoleUser,
		Status:       entity.StatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	pair, err := s.tokens.IssueTokenPair(user.ID.String(), user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}

	user.AddRefreshToken(pair.RefreshToken)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	return &AuthResult{User: user, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

// Login verifies credentials against the lockout policy and registers a
// new session, evicting the oldest one once the cap is reached.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = utils.NormalizeEmail(email)
	now := s.now()

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.hasher.Verify(dummyPasswordHash, password)
		return nil, invalidCredentials()
	}

	// The lock check runs before any password comparison so a locked
	// account never leaks comparison timing.
	if user.IsLocked(now) {
		remaining := int(math.Ceil(user.LockRemaining(now).Minutes()))
		return nil, apperr.New(
			fmt.Sprintf("Account is locked. Try again in %d minutes", remaining),
			http.StatusLocked, apperr.CodeAccountLocked,
		).WithData(map[string]any{"lockUntil": user.LockUntil, "remainingMinutes": remaining})
	}

	if user.PasswordHash == nil {
		return nil, apperr.New(
			"This account uses Google sign-in. Please login with Google.",
			http.StatusBadRequest, apperr.CodeNoPassword,
		).WithData(map[string]any{"provider": user.Provider})
	}

	if !s.hasher.Verify(*user.PasswordHash, password) {
		user.RecordFailedAttempt(now)
		if err := s.users.Update(ctx, user); err != nil {
			return nil, err
		}
		return nil, invalidCredentials()
	}

	user.RecordSuccess(now)

	pair, err := s.tokens.IssueTokenPair(user.ID.String(), user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}

	user.AddRefreshToken(pair.RefreshToken)
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	return &AuthResult{User: user, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

// Refresh rotates a refresh token in place and reissues the pair. A token
// that verifies but is not in the registry is treated as reuse after
// rotation, which clears every session for the user.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*utils.TokenPair, error) {
	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, apperr.New("Invalid refresh token", http.StatusUnauthorized, apperr.CodeInvalidRefreshToken)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.New("User not found", http.StatusUnauthorized, apperr.CodeUserNotFound)
	}

	pair, err := s.tokens.IssueTokenPair(user.ID.String(), user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}

	if !user.RotateRefreshToken(refreshToken, pair.RefreshToken) {
		user.ClearRefreshTokens()
		if err := s.users.Update(ctx, user); err != nil {
			return nil, err
		}
		s.logger.WithField("user_id", user.ID).Warn("refresh token reuse detected, sessions cleared")
		return nil, apperr.New("Invalid refresh token. Please login again.", http.StatusUnauthorized, apperr.CodeInvalidRefreshToken)
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return &pair, nil
}

// Logout removes one session when refreshToken is given, all otherwise.
// Logging out a token that is not registered is not an error.
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID, refreshToken string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return userNotFound()
	}

	if refreshToken != "" {
		user.RemoveRefreshToken(refreshToken)
	} else {
		user.ClearRefreshTokens()
	}
	return s.users.Update(ctx, user)
}

// LogoutAllDevices clears the whole session registry.
func (s *AuthService) LogoutAllDevices(ctx context.Context, userID uuid.UUID) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return userNotFound()
	}
	user.ClearRefreshTokens()
	return s.users.Update(ctx, user)
}

// ChangePassword verifies the current password, stores the new hash and
// forces re-login everywhere.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return userNotFound()
	}

	if user.PasswordHash == nil {
		return apperr.New(
			"Cannot change password for accounts using social login",
			http.StatusBadRequest, apperr.CodeNoPassword,
		).WithData(map[string]any{"provider": user.Provider})
	}

	if !s.hasher.Verify(*user.PasswordHash, currentPassword) {
		return apperr.New("Current password is incorrect", http.StatusUnauthorized, apperr.CodeInvalidPassword)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	s.setPassword(user, hash)
	return s.users.Update(ctx, user)
}

// ForgotPassword issues a reset grant. An unknown email yields the same
// nil outcome as a dispatched mail so callers cannot probe for accounts.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = utils.NormalizeEmail(email)

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		s.logger.WithField("email", email).Info("password reset requested for unknown email")
		return nil
	}

	if user.Status == entity.StatusBlocked || user.Status == entity.StatusInactive {
		return apperr.New(
			fmt.Sprintf("Your account is %s. Please contact support.", user.Status),
			http.StatusForbidden, apperr.CodeAccountInactive,
		).WithData(map[string]any{"status": user.Status})
	}

	if user.PasswordHash == nil {
		return apperr.New(
			"This account uses Google sign-in and has no password to reset.",
			http.StatusBadRequest, apperr.CodeNoPassword,
		).WithData(map[string]any{"provider": user.Provider})
	}

	rawToken, err := utils.GenerateRandomToken(32)
	if err != nil {
		return err
	}
	tokenHash := utils.HashToken(rawToken)
	expiresAt := s.now().Add(s.resetTokenTTL())

	user.PasswordResetTokenHash = &tokenHash
	user.PasswordResetExpiresAt = &expiresAt
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	if s.emails != nil {
		if err := s.emails.SendPasswordResetEmail(ctx, user.Email, rawToken); err != nil {
			return err
		}
	}
	return nil
}

// ResetPassword consumes a reset grant: new hash, cleared grant, cleared
// sessions. The grant is single-use.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	user, err := s.users.FindByResetTokenHash(ctx, utils.HashToken(token), s.now())
	if err != nil {
		return err
	}
	if user == nil {
		return apperr.New("Invalid or expired reset token", http.StatusBadRequest, apperr.CodeInvalidOrExpiredToken)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	s.setPassword(user, hash)
	user.PasswordResetTokenHash = nil
	user.PasswordResetExpiresAt = nil
	return s.users.Update(ctx, user)
}

// GoogleAuth signs a user in from a verified Google ID token, creating a
// GOOGLE account on first contact. An email already registered under a
// different provider is rejected outright, never silently merged.
func (s *AuthService) GoogleAuth(ctx context.Context, idToken string) (*AuthResult, error) {
	profile, err := s.google.Verify(ctx, idToken)
	if err != nil {
		return nil, apperr.New("Invalid Google ID token", http.StatusUnauthorized, apperr.CodeInvalidToken)
	}

	email := utils.NormalizeEmail(profile.Email)
	now := s.now()

	user, err := s.users.FindByEmailOrProviderID(ctx, email, profile.Subject)
	if err != nil {
		return nil, err
	}

	if user == nil {
		providerID := profile.Subject
		user = &entity.User{
			Email:           email,
			Name:            profile.Name,
			Provider:        entity.ProviderGoogle,
			ProviderID:      &providerID,
			Role:            entity.RoleUser,
			Status:          entity.StatusActive,
			IsEmailVerified: true,
		}
		if profile.Picture != "" {
			avatar := profile.Picture
			user.Avatar = &avatar
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
	} else if user.Provider != entity.ProviderGoogle {
		return nil, apperr.New(
			"An account with this email already exists. Please login with your password.",
			http.StatusConflict, apperr.CodeAccountExists,
		).WithData(map[string]any{"provider": user.Provider})
	}

	pair, err := s.tokens.IssueTokenPair(user.ID.String(), user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}

	user.AddRefreshToken(pair.RefreshToken)
	user.LastLoginAt = &now
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}

	return &AuthResult{User: user, AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

// Authenticate resolves an access token to a live, ACTIVE user, rejecting
// tokens issued before the last password change.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*entity.User, error) {
	claims, err := s.tokens.VerifyAccessToken(accessToken)
	if err != nil {
		return nil, err
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, apperr.New("Invalid access token", http.StatusUnauthorized, apperr.CodeInvalidToken)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.New("User no longer exists", http.StatusUnauthorized, apperr.CodeUserNotFound)
	}

	if user.Status != entity.StatusActive {
		return nil, apperr.New(
			fmt.Sprintf("Your account is %s. Please contact support.", user.Status),
			http.StatusForbidden, apperr.CodeAccountInactive,
		).WithData(map[string]any{"status": user.Status})
	}

	if user.PasswordChangedAt != nil && claims.IssuedAt != nil &&
		claims.IssuedAt.Time.Before(*user.PasswordChangedAt) {
		return nil, apperr.New(
			"Password was recently changed. Please login again.",
			http.StatusUnauthorized, apperr.CodePasswordChanged,
		)
	}

	return user, nil
}

// GetCurrentUser fetches the authenticated user's record.
func (s *AuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, userNotFound()
	}
	return user, nil
}

// setPassword stores the new hash, invalidates every session and stamps
// the change one second in the past so tokens minted in the same instant
// still fail the issued-at check.
func (s *AuthService) setPassword(user *entity.User, hash string) {
	changedAt := s.now().Add(-time.Second)
	user.PasswordHash = &hash
	user.PasswordChangedAt = &changedAt
	user.ClearRefreshTokens()
}

func (s *AuthService) now() time.Time {
	if s.clock == nil {
		return time.Now()
	}
	return s.clock.Now()
}

func (s *AuthService) resetTokenTTL() time.Duration {
	if s.config.ResetTokenTTL > 0 {
		return s.config.ResetTokenTTL
	}
	return time.Hour
}

func invalidCredentials() *apperr.Error {
	return apperr.New("Invalid email or password", http.StatusUnauthorized, apperr.CodeInvalidCredentials)
}

func userNotFound() *apperr.Error {
	return apperr.New("User not found", http.StatusNotFound, apperr.CodeUserNotFound)
}
