// Package me реализует HTTP-обработчик, возвращающий текущего пользователя.
package me

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/todo-auth/internal/http/middlewarectx"
	"github.com/magabrotheeeer/todo-auth/internal/http/response"
)

// Handler обрабатывает GET /auth/me. Должен стоять за middlewarectx.Authenticate.
type Handler struct {
	log *slog.Logger
}

// New создает Handler.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Текущий пользователь
// @Description Возвращает владельца access-токена.
// @Tags Auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=models.User} "Пользователь"
// @Failure 401 {object} response.ErrorResponse "Нет или неверный токен"
// @Failure 404 {object} response.ErrorResponse "Учётная запись не найдена"
// @Router /auth/me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.me"

	user, ok := middlewarectx.UserFromContext(r.Context())
	if !ok {
		h.log.Error("user missing in context",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("missing credentials"))
		return
	}

	render.JSON(w, r, response.OKWithData(user))
}
