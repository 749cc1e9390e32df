package handler

import (
	"errors"
	"net/http"

	"accounthub/api/middleware"
	"accounthub/internal/apperr"
	"accounthub/internal/dto"
	"accounthub/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	Auth     *service.AuthService
	Validate *validator.Validate
	Cookies  CookieSettings
}

func NewAuthHandler(auth *service.AuthService, validate *validator.Validate, cookies CookieSettings) *AuthHandler {
	return &AuthHandler{Auth: auth, Validate: validate, Cookies: cookies}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	result, err := h.Auth.Register(c.Request().Context(), req.Email, req.Password, req.Name)
	if err != nil {
		return err
	}

	h.Cookies.setAuthCookies(c, result.AccessToken, result.RefreshToken)
	return respond(c, http.StatusCreated, "Registration successful", dto.AuthData{
		User:        dto.SafeUserFromEntity(result.User),
		AccessToken: result.AccessToken,
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	result, err := h.Auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.Cookies.setAuthCookies(c, result.AccessToken, result.RefreshToken)
	return respond(c, http.StatusOK, "Login successful", dto.AuthData{
		User:        dto.SafeUserFromEntity(result.User),
		AccessToken: result.AccessToken,
	})
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	var req dto.RefreshTokenRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	token := h.refreshTokenFromRequest(c, req.RefreshToken)
	if token == "" {
		return apperr.New("Refresh token is required", http.StatusUnauthorized, apperr.CodeInvalidRefreshToken)
	}

	pair, err := h.Auth.Refresh(c.Request().Context(), token)
	if err != nil {
		return err
	}

	h.Cookies.setAuthCookies(c, pair.AccessToken, pair.RefreshToken)
	return respond(c, http.StatusOK, "Token refreshed successfully", dto.TokenData{
		AccessToken: pair.AccessToken,
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	user, ok := middleware.AuthUserFromContext(c)
	if !ok {
		return apperr.New("Authentication required", http.StatusUnauthorized, apperr.CodeNotAuthenticated)
	}

	var req dto.LogoutRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	token := ""
	if !req.AllDevices {
		token = h.refreshTokenFromRequest(c, req.RefreshToken)
	}
	if err := h.Auth.Logout(c.Request().Context(), user.ID, token); err != nil {
		return err
	}

	h.Cookies.clearAuthCookies(c)
	return respond(c, http.StatusOK, "Logged out successfully", nil)
}

func (h *AuthHandler) LogoutAll(c echo.Context) error {
	user, ok := middleware.AuthUserFromContext(c)
	if !ok {
		return apperr.New("Authentication required", http.StatusUnauthorized, apperr.CodeNotAuthenticated)
	}

	if err := h.Auth.LogoutAllDevices(c.Request().Context(), user.ID); err != nil {
		return err
	}

	h.Cookies.clearAuthCookies(c)
	return respond(c, http.StatusOK, "Logged out from all devices", nil)
}

func (h *AuthHandler) ChangePassword(c echo.Context) error {
	user, ok := middleware.AuthUserFromContext(c)
	if !ok {
		return apperr.New("Authentication required", http.StatusUnauthorized, apperr.CodeNotAuthenticated)
	}

	var req dto.ChangePasswordRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	if err := h.Auth.ChangePassword(c.Request().Context(), user.ID, req.CurrentPassword, req.NewPassword); err != nil {
		return err
	}

	h.Cookies.clearAuthCookies(c)
	return respond(c, http.StatusOK, "Password changed successfully. Please login again.", nil)
}

func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req dto.ForgotPasswordRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	if err := h.Auth.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return err
	}

	// Unknown emails get the same response as dispatched mail.
	return respond(c, http.StatusOK, "If an account exists for this email, a reset link has been sent.", nil)
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req dto.ResetPasswordRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	if err := h.Auth.ResetPassword(c.Request().Context(), req.Token, req.NewPassword); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Password reset successfully. Please login.", nil)
}

func (h *AuthHandler) GoogleAuth(c echo.Context) error {
	var req dto.GoogleAuthRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	result, err := h.Auth.GoogleAuth(c.Request().Context(), req.IDToken)
	if err != nil {
		return err
	}

	h.Cookies.setAuthCookies(c, result.AccessToken, result.RefreshToken)
	return respond(c, http.StatusOK, "Login successful", dto.AuthData{
		User:        dto.SafeUserFromEntity(result.User),
		AccessToken: result.AccessToken,
	})
}

func (h *AuthHandler) Me(c echo.Context) error {
	user, ok := middleware.AuthUserFromContext(c)
	if !ok {
		return apperr.New("Authentication required", http.StatusUnauthorized, apperr.CodeNotAuthenticated)
	}

	current, err := h.Auth.GetCurrentUser(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "User retrieved successfully", dto.SafeUserFromEntity(current))
}

// bind decodes and validates the request body. An empty body is tolerated
// for requests whose fields are all optional.
func (h *AuthHandler) bind(c echo.Context, target any) error {
	if err := c.Bind(target); err != nil {
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) && httpErr.Code == http.StatusBadRequest {
			return apperr.New("Invalid JSON format in request body", http.StatusBadRequest, apperr.CodeInvalidJSON)
		}
		return err
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(target); err != nil {
			return err
		}
	}
	return nil
}

// refreshTokenFromRequest prefers the body field, falling back to the
// refresh cookie.
func (h *AuthHandler) refreshTokenFromRequest(c echo.Context, bodyToken string) string {
	if bodyToken != "" {
		return bodyToken
	}
	if cookie, err := c.Cookie(RefreshTokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}
