package todoauth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/todo-auth/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/todo-auth/internal/http/handlers/auth/me"
	"github.com/magabrotheeeer/todo-auth/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/todo-auth/internal/http/handlers/health"
	"github.com/magabrotheeeer/todo-auth/internal/http/middlewarectx"
	"github.com/magabrotheeeer/todo-auth/internal/metrics"
)

// AuthService объединяет операции, нужные HTTP-слою.
type AuthService interface {
	register.Service
	login.Service
	middlewarectx.Service
}

// Deps зависимости роутера.
type Deps struct {
	Logger         *slog.Logger
	Auth           AuthService
	DB             health.Pinger
	Gatherer       prometheus.Gatherer
	AllowedOrigins []string
	SecureCookie   bool
}

// NewRouter регистрирует все маршруты приложения.
func NewRouter(d Deps) chi.Router {
	r := chi.NewRouter()

	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
		cors.Handler(cors.Options{
			AllowedOrigins:   d.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}),
	)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/sign-up", register.New(d.Logger, d.Auth).ServeHTTP)
		r.Post("/login", login.New(d.Logger, d.Auth, d.SecureCookie).ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.Authenticate(d.Auth, d.Logger))
			r.Get("/me", me.New(d.Logger).ServeHTTP)
		})
	})

	r.Get("/health", health.New(d.Logger, d.DB).ServeHTTP)
	r.Handle("/metrics", metrics.Handler(d.Gatherer))
	r.Get("/docs/*", httpSwagger.WrapHandler)

	return r
}
