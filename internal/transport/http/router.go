package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-push-registry/internal/application/device"
	"github.com/go-push-registry/internal/application/notification"
	"github.com/go-push-registry/internal/application/session"
	"github.com/go-push-registry/internal/config"
	"github.com/go-push-registry/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-push-registry/internal/infrastructure/jwt"
	"github.com/go-push-registry/internal/infrastructure/push"
	"github.com/go-push-registry/internal/infrastructure/smtp"
	"github.com/go-push-registry/internal/transport/http/handler"
	appmiddleware "github.com/go-push-registry/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	DeviceRepo       *dynamo.DeviceRepo
	NotificationRepo *dynamo.NotificationRepo
	PushSender       push.Sender
	Mailer           smtp.Mailer
	JWTProvider      *jwtinfra.Provider
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second with a burst of 10 on the credential-checking endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	var signer interface {
		Sign(user, token string) (string, error)
	}
	if deps.JWTProvider != nil {
		signer = deps.JWTProvider
	}

	deviceSvc := device.NewService(deps.DeviceRepo)
	sessionSvc := session.NewService(deps.DeviceRepo, deps.Mailer, signer)
	notifSvc := notification.NewService(deps.DeviceRepo, deps.NotificationRepo, deps.PushSender, cfg.NotificationTitle)

	healthH := handler.NewHealthHandler()
	actionsH := handler.NewActionsHandler(deviceSvc, sessionSvc, notifSvc)
	deviceH := handler.NewDeviceHandler(deviceSvc)
	sessionH := handler.NewSessionHandler(sessionSvc)
	notifH := handler.NewNotificationHandler(notifSvc)

	// Function-style boundary: everything behind a single `action` parameter.
	r.Get("/", actionsH.Dispatch)
	r.Post("/", actionsH.Dispatch)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)

		r.Post("/devices", deviceH.Register)
		r.With(sensitiveRL.Limit).Post("/sessions/login", sessionH.Login)
		r.Post("/sessions/logout", sessionH.Logout)
		r.Post("/notifications", notifH.Dispatch)

		// Read routes require a bearer when JWT keys are configured.
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/users/{user}/devices", deviceH.List)
			r.Get("/users/{user}/notifications", notifH.History)
		})
	})

	return r
}
