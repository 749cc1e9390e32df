package handler

import (
	"net/http"
	"time"

	"accounthub/api/middleware"

	"github.com/labstack/echo/v4"
)

const RefreshTokenCookie = "refresh_token"

// CookieSettings drives the attributes of both token cookies; Secure and
// SameSite come from the environment so local development works over HTTP.
type CookieSettings struct {
	Domain        string
	Secure        bool
	SameSite      http.SameSite
	AccessMaxAge  time.Duration
	RefreshMaxAge time.Duration
}

// setAuthCookies emits one http-only cookie per token class, short-lived
// for access and long-lived for refresh.
func (s CookieSettings) setAuthCookies(c echo.Context, accessToken, refreshToken string) {
	s.set(c, middleware.AccessTokenCookie, accessToken, s.AccessMaxAge)
	s.set(c, RefreshTokenCookie, refreshToken, s.RefreshMaxAge)
}

// clearAuthCookies expires both token cookies with matching attributes.
func (s CookieSettings) clearAuthCookies(c echo.Context) {
	s.set(c, middleware.AccessTokenCookie, "", -time.Second)
	s.set(c, RefreshTokenCookie, "", -time.Second)
}

func (s CookieSettings) set(c echo.Context, name, value string, maxAge time.Duration) {
	cookie := &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   s.Domain,
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.Secure,
		SameSite: s.SameSite,
	}
	if maxAge > 0 {
		cookie.Expires = time.Now().Add(maxAge)
	}
	c.SetCookie(cookie)
}
