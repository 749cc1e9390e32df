package dto

import (
	"time"

	"accounthub/internal/entity"
)

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required,min=2,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"omitempty"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refreshToken" validate:"omitempty"`
	AllDevices   bool   `json:"allDevices" validate:"omitempty"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

type GoogleAuthRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// SafeUser is the user view returned to clients: no password hash, no
// reset-token fields, no session list.
type SafeUser struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	Name            string     `json:"name"`
	Avatar          *string    `json:"avatar,omitempty"`
	Role            string     `json:"role"`
	Status          string     `json:"status"`
	Provider        string     `json:"provider"`
	IsEmailVerified bool       `json:"isEmailVerified"`
	LastLoginAt     *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func SafeUserFromEntity(user *entity.User) SafeUser {
	return SafeUser{
		ID:              user.ID.String(),
		Email:           user.Email,
		Name:            user.Name,
		Avatar:          user.Avatar,
		Role:            string(user.Role),
		Status:          string(user.Status),
		Provider:        string(user.Provider),
		IsEmailVerified: user.IsEmailVerified,
		LastLoginAt:     user.LastLoginAt,
		CreatedAt:       user.CreatedAt,
		UpdatedAt:       user.UpdatedAt,
	}
}

func SafeUsersFromEntities(users []entity.User) []SafeUser {
	result := make([]SafeUser, 0, len(users))
	for i := range users {
		result = append(result, SafeUserFromEntity(&users[i]))
	}
	return result
}

// AuthData is the success payload of register, login and google auth.
type AuthData struct {
	User        SafeUser `json:"user"`
	AccessToken string   `json:"accessToken"`
}

// TokenData is the success payload of a token refresh.
type TokenData struct {
	AccessToken string `json:"accessToken"`
}
