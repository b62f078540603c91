// Package health реализует проверку доступности сервиса.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/todo-auth/internal/http/response"
	"github.com/magabrotheeeer/todo-auth/internal/lib/sl"
)

// Pinger проверяет зависимость сервиса, например базу данных.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler отвечает на GET /health.
type Handler struct {
	log *slog.Logger
	db  Pinger
}

// New создает Handler. db может быть nil, тогда проверяется только процесс.
func New(log *slog.Logger, db Pinger) *Handler {
	return &Handler{
		log: log,
		db:  db,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			h.log.Error("database is unavailable", slog.String("op", op), sl.Err(err))
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, response.Error("database unavailable"))
			return
		}
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"status": "ok",
	}))
}
