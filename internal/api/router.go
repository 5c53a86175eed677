package api

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/videotube/user-service/internal/api/handler"
	"github.com/videotube/user-service/internal/api/middleware"
	"github.com/videotube/user-service/internal/core/ports"
	infrahttp "github.com/videotube/user-service/internal/infrastructure/http"
)

// Dependencies is everything NewRouter wires into the HTTP layer.
type Dependencies struct {
	Sessions ports.SessionService
	Accounts ports.AccountService
	Tokens   ports.TokenService
	Users    ports.UserRepository

	Cookies        handler.CookieOptions
	UploadDir      string
	UploadMaxBytes int64
	CORSOrigin     string

	Ops infrahttp.OpsOptions
	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	if deps.CORSOrigin != "" {
		e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
			AllowOrigins:     []string{deps.CORSOrigin},
			AllowCredentials: true,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
			AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
		}))
	}

	infrahttp.RegisterOps(e, deps.Ops)

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(deps.Sessions, deps.Cookies, deps.UploadDir, deps.Log)
	accountHandler := handler.NewAccountHandler(deps.Accounts, deps.UploadDir, deps.Log)
	authenticate := middleware.Authenticate(deps.Tokens, deps.Users, deps.Log)
	uploads := uploadLimit(deps.UploadMaxBytes)

	// --- User routes ---
	users := e.Group("/api/v1/users")
	users.POST("/signup", authHandler.Signup, uploads)
	users.POST("/login", authHandler.Login)
	users.POST("/refresh-access-token", authHandler.RefreshAccessToken)

	users.POST("/logout", authHandler.Logout, authenticate)
	users.POST("/changePassword", authHandler.ChangePassword, authenticate)
	users.GET("/current-user", accountHandler.CurrentUser, authenticate)
	for _, method := range []string{http.MethodPost, http.MethodPatch} {
		users.Add(method, "/updateAccountDetails", accountHandler.UpdateAccountDetails, authenticate)
		users.Add(method, "/updateAvatar", accountHandler.UpdateAvatar, authenticate, uploads)
		users.Add(method, "/updateCoverImage", accountHandler.UpdateCoverImage, authenticate, uploads)
	}

	return e
}

func uploadLimit(maxBytes int64) echo.MiddlewareFunc {
	if maxBytes <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return echomiddleware.BodyLimit(fmt.Sprintf("%dB", maxBytes))
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			evt := log.Info()
			if v.Status >= http.StatusInternalServerError {
				evt = log.Error().Err(v.Error)
			}
			evt.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
