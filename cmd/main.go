package main

import (
	"net/http"
	"os"
	"time"

	"accounthub/api/handler"
	apiMiddleware "accounthub/api/middleware"
	"accounthub/api/routes"
	"accounthub/config"
	"accounthub/internal/entity"
	"accounthub/internal/repository"
	"accounthub/internal/service"
	"accounthub/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		logger.WithError(err).Fatal("database connection failed")
	}
	if err := db.AutoMigrate(&entity.User{}); err != nil {
		logger.WithError(err).Fatal("migration failed")
	}

	validate := validator.New()

	tokenManager := utils.TokenManager{
		AccessSecret:  []byte(cfg.JWTAccessSecret),
		RefreshSecret: []byte(cfg.JWTRefreshSecret),
		Issuer:        cfg.JWTIssuer,
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshTTL:    cfg.RefreshTokenTTL,
	}

	userRepo := repository.NewUserRepository(db)

	var emailSender service.EmailSender
	if sender := service.NewResendEmailSender(cfg.ResendAPIKey, cfg.EmailFrom, cfg.AppBaseURL); sender != nil {
		emailSender = sender
	}

	authService := service.NewAuthService(
		userRepo,
		service.BcryptPasswordHasher{Cost: cfg.BcryptCost},
		tokenManager,
		service.GoogleIDTokenVerifier{ClientID: cfg.GoogleClientID},
		emailSender,
		service.RealClock{},
		service.AuthConfig{ResetTokenTTL: cfg.ResetTokenTTL},
		logger,
	)
	userService := service.NewUserService(userRepo)

	cookies := handler.CookieSettings{
		Domain:        cfg.CookieDomain,
		Secure:        cfg.SecureCookies,
		SameSite:      http.SameSiteStrictMode,
		AccessMaxAge:  cfg.AccessTokenTTL,
		RefreshMaxAge: cfg.RefreshTokenTTL,
	}
	if !cfg.IsProduction() {
		cookies.SameSite = http.SameSiteLaxMode
	}

	authHandler := handler.NewAuthHandler(authService, validate, cookies)
	userHandler := handler.NewUserHandler(userService, validate)

	app := echo.New()
	app.HideBanner = true
	app.HidePort = true
	app.HTTPErrorHandler = apiMiddleware.NewHTTPErrorHandler(logger, cfg.IsProduction())
	app.Use(echoMiddleware.Recover())
	app.Use(echoMiddleware.RequestID())
	app.Use(echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogStatus:    true,
		LogMethod:    true,
		LogURI:       true,
		LogRemoteIP:  true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			entry := logger.WithFields(logrus.Fields{
				"status":     v.Status,
				"method":     v.Method,
				"uri":        v.URI,
				"ip":         v.RemoteIP,
				"request_id": v.RequestID,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Error("request")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}))

	authMiddleware := apiMiddleware.AuthMiddleware{Auth: authService}
	router := routes.NewRouter(app, authHandler, userHandler, authMiddleware)
	router.RegisterRoutes()

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.WithField("addr", cfg.HTTPAddr).Info("server started")
	if err := app.StartServer(server); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}
