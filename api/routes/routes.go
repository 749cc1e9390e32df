package routes

import (
	"time"

	"accounthub/api/handler"
	"accounthub/api/middleware"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type Router struct {
	Echo           *echo.Echo
	Auth           *handler.AuthHandler
	Users          *handler.UserHandler
	AuthMiddleware middleware.AuthMiddleware
	AuthRate       *middleware.RateLimiter
	LoginRate      *middleware.RateLimiter
}

func NewRouter(e *echo.Echo, auth *handler.AuthHandler, users *handler.UserHandler, authMiddleware middleware.AuthMiddleware) *Router {
	return &Router{
		Echo:           e,
		Auth:           auth,
		Users:          users,
		AuthMiddleware: authMiddleware,
		AuthRate:       middleware.NewRateLimiter(rate.Limit(5), 10, 5*time.Minute),
		LoginRate:      middleware.NewRateLimiter(rate.Limit(2), 4, 10*time.Minute),
	}
}

func (r *Router) RegisterRoutes() {
	e := r.Echo
	requireAuth := r.AuthMiddleware.RequireAuth

	auth := e.Group("/auth")
	auth.POST("/register", r.Auth.Register, r.AuthRate.Middleware())
	auth.POST("/login", r.Auth.Login, r.LoginRate.Middleware())
	auth.POST("/google", r.Auth.GoogleAuth, r.LoginRate.Middleware())
	auth.POST("/refresh-token", r.Auth.Refresh, r.AuthRate.Middleware())
	auth.POST("/logout", r.Auth.Logout, requireAuth)
	auth.POST("/logout-all", r.Auth.LogoutAll, requireAuth)
	auth.POST("/change-password", r.Auth.ChangePassword, requireAuth)
	auth.POST("/forgot-password", r.Auth.ForgotPassword, r.LoginRate.Middleware())
	auth.POST("/reset-password", r.Auth.ResetPassword, r.AuthRate.Middleware())
	auth.GET("/me", r.Auth.Me, requireAuth)

	users := e.Group("/users", requireAuth)
	users.PATCH("/me", r.Users.UpdateMyProfile)
	users.GET("", r.Users.ListUsers, middleware.RequireAdmin())
	users.GET("/stats", r.Users.GetStats, middleware.RequireAdmin())
	users.GET("/:id", r.Users.GetUser, middleware.RequireAdmin())
	users.PATCH("/:id", r.Users.UpdateUser, middleware.RequireAdmin())
	users.DELETE("/:id", r.Users.DeleteUser, middleware.RequireAdmin())
	users.PATCH("/:id/status", r.Users.ChangeStatus, middleware.RequireAdmin())
	users.PATCH("/:id/role", r.Users.ChangeRole, middleware.RequireSuperAdmin())
}
