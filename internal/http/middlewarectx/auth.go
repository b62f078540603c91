// Package middlewarectx содержит HTTP middleware для проверки access-токена.
//
// Authenticate берёт токен из заголовка Authorization (схема Bearer), а при его
// отсутствии из cookie access_token, проверяет его через сервис и кладёт
// найденного пользователя в контекст запроса.
package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/todo-auth/internal/http/response"
	"github.com/magabrotheeeer/todo-auth/internal/lib/sl"
	"github.com/magabrotheeeer/todo-auth/internal/models"
	services "github.com/magabrotheeeer/todo-auth/internal/services/auth"
)

// AccessCookie имя cookie, из которой читается токен, если нет заголовка.
const AccessCookie = "access_token"

// Key тип для ключей контекста HTTP-запроса.
type Key string

// User ключ для пользователя в контексте.
const User Key = "user"

// Service описывает проверку access-токена.
type Service interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// Authenticate возвращает middleware, пропускающий запрос только с действительным access-токеном.
func Authenticate(service Service, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.Authenticate"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			token, ok := tokenFromRequest(r)
			if !ok {
				log.Info("missing credentials")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("missing credentials"))
				return
			}

			user, err := service.Authenticate(r.Context(), token)
			switch {
			case errors.Is(err, services.ErrTokenExpired):
				log.Info("token expired")
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("session expired"))
				return
			case errors.Is(err, services.ErrTokenInvalid):
				log.Info("invalid token", sl.Err(err))
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, response.Error("invalid credentials"))
				return
			case errors.Is(err, services.ErrUserDoesNotExist):
				log.Info("token owner not found")
				render.Status(r, http.StatusNotFound)
				render.JSON(w, r, response.Error("account not found"))
				return
			case err != nil:
				log.Error("failed to authenticate", sl.Err(err))
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, response.Error("internal error"))
				return
			}

			ctx := context.WithValue(r.Context(), User, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext возвращает пользователя, положенного Authenticate.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(User).(*models.User)
	return user, ok && user != nil
}

func tokenFromRequest(r *http.Request) (string, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") {
			return "", false
		}
		token = strings.TrimSpace(token)
		return token, token != ""
	}
	if c, err := r.Cookie(AccessCookie); err == nil && c.Value != "" {
		return c.Value, true
	}
	return "", false
}
