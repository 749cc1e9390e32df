package middleware

import (
	"net/http"

	"accounthub/internal/apperr"
	"accounthub/internal/entity"
	"accounthub/internal/service"
	"accounthub/internal/utils"

	"github.com/labstack/echo/v4"
)

// AccessTokenCookie is the cookie fallback for the access token; the
// Authorization header takes precedence when both are present.
const AccessTokenCookie = "access_token"

type AuthMiddleware struct {
	Auth *service.AuthService
}

// RequireAuth authenticates the request from the bearer header or the
// access-token cookie and stores the resolved user on the context.
func (m AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := utils.ExtractBearerFromRequest(c.Request())
		if token == "" {
			if cookie, err := c.Cookie(AccessTokenCookie); err == nil {
				token = cookie.Value
			}
		}
		if token == "" {
			return apperr.New("Authentication required. Please login.", http.StatusUnauthorized, apperr.CodeNoToken)
		}

		user, err := m.Auth.Authenticate(c.Request().Context(), token)
		if err != nil {
			return err
		}

		SetAuthUser(c, user)
		return next(c)
	}
}

// RequireRole allows the request through only for the listed roles.
// It must run after RequireAuth.
func RequireRole(allowed ...entity.UserRole) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := AuthUserFromContext(c)
			if !ok {
				return apperr.New("Authentication required", http.StatusUnauthorized, apperr.CodeNotAuthenticated)
			}
			for _, role := range allowed {
				if user.Role == role {
					return next(c)
				}
			}
			return apperr.New("You do not have permission to perform this action", http.StatusForbidden, apperr.CodeForbidden)
		}
	}
}

// RequireAdmin admits ADMIN and SUPER_ADMIN.
func RequireAdmin() echo.MiddlewareFunc {
	return RequireRole(entity.RoleAdmin, entity.RoleSuperAdmin)
}

// RequireSuperAdmin admits SUPER_ADMIN only.
func RequireSuperAdmin() echo.MiddlewareFunc {
	return RequireRole(entity.RoleSuperAdmin)
}
