// Package login реализует HTTP-обработчик входа пользователя.
//
// При успешной аутентификации возвращает access и refresh токены в теле ответа
// и дублирует их в cookie: refresh_token недоступен из JavaScript (HttpOnly).
package login

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/todo-auth/internal/http/response"
	"github.com/magabrotheeeer/todo-auth/internal/lib/jwt"
	"github.com/magabrotheeeer/todo-auth/internal/lib/sl"
	services "github.com/magabrotheeeer/todo-auth/internal/services/auth"
)

const (
	// AccessCookie имя cookie с access-токеном.
	AccessCookie = "access_token"
	// RefreshCookie имя cookie с refresh-токеном.
	RefreshCookie = "refresh_token"
)

// Request структура входных данных для авторизации.
type Request struct {
	Email    string `json:"email" validate:"required,max=100"`
	Password string `json:"password" validate:"required,max=255"`
}

// AccessToken access-токен в ответе. ExpireTime в секундах.
type AccessToken struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpireTime  int64  `json:"expire_time"`
}

// RefreshToken refresh-токен в ответе. ExpireTime в секундах.
type RefreshToken struct {
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpireTime   int64  `json:"expire_time"`
}

// TokenResponse тело успешного ответа.
type TokenResponse struct {
	Access  AccessToken  `json:"access"`
	Refresh RefreshToken `json:"refresh"`
}

// Service описывает интерфейс бизнес-логики аутентификации.
type Service interface {
	Login(ctx context.Context, email, password string) (*services.TokenPair, error)
}

// Handler обрабатывает HTTP-запросы для авторизации.
type Handler struct {
	log          *slog.Logger        // Логгер для записи операций и ошибок
	service      Service             // Сервис аутентификации
	validate     *validator.Validate // Валидатор для проверки входных данных
	secureCookie bool                // Передавать cookie только по HTTPS
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service, secureCookie bool) *Handler {
	return &Handler{
		log:          log,
		service:      service,
		validate:     validator.New(),
		secureCookie: secureCookie,
	}
}

// ServeHTTP godoc
// @Summary Авторизация пользователя
// @Description Аутентифицирует пользователя по email и паролю. Возвращает access и refresh токены.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Учетные данные пользователя"
// @Success 200 {object} response.Response{data=TokenResponse} "Успешная авторизация"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		if errors.Is(err, io.EOF) {
			render.JSON(w, r, response.Error("request body is empty"))
			return
		}
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			log.Error("validation failed", sl.Err(err))
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid request body"))
			return
		}
		log.Info("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(verrs))
		return
	}

	pair, err := h.service.Login(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, services.ErrUserDoesNotExist), errors.Is(err, services.ErrPasswordDoesNotMatch):
		log.Info("login rejected", sl.Err(err))
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("email or password incorrect"))
		return
	case err != nil:
		log.Error("login failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	h.setCookie(w, RefreshCookie, pair.Refresh, true)
	h.setCookie(w, AccessCookie, pair.Access, false)

	log.Info("login success")
	render.JSON(w, r, response.OKWithData(TokenResponse{
		Access: AccessToken{
			AccessToken: pair.Access.Token,
			TokenType:   pair.Access.TokenType,
			ExpireTime:  int64(pair.Access.ExpiresIn.Seconds()),
		},
		Refresh: RefreshToken{
			RefreshToken: pair.Refresh.Token,
			TokenType:    pair.Refresh.TokenType,
			ExpireTime:   int64(pair.Refresh.ExpiresIn.Seconds()),
		},
	}))
}

func (h *Handler) setCookie(w http.ResponseWriter, name string, b *jwt.Bundle, httpOnly bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    b.Token,
		Path:     "/",
		MaxAge:   int(b.ExpiresIn.Seconds()),
		HttpOnly: httpOnly,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
