// Package services содержит бизнес-логику регистрации, входа и проверки токенов.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/todo-auth/internal/lib/jwt"
	"github.com/magabrotheeeer/todo-auth/internal/lib/password"
	"github.com/magabrotheeeer/todo-auth/internal/lib/sl"
	"github.com/magabrotheeeer/todo-auth/internal/metrics"
	"github.com/magabrotheeeer/todo-auth/internal/models"
	"github.com/magabrotheeeer/todo-auth/internal/storage"
)

// Имена операций для метрик.
const (
	opRegister     = "register"
	opLogin        = "login"
	opResolveUser  = "resolve_user"
	opAuthenticate = "authenticate"
)

// UserRepository описывает контракт для работы с пользователями в базе данных.
type UserRepository interface {
	// GetUserByEmail возвращает пользователя по email или storage.ErrUserNotFound.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	// CreateUser сохраняет нового пользователя; занятый email даёт storage.ErrUserExists.
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
}

// PasswordHasher хеширует и сверяет пароли.
type PasswordHasher interface {
	Hash(password string) ([]byte, error)
	Verify(password string, hash []byte) bool
}

// UserCache необязательный кэш пользователей, найденных по токену.
type UserCache interface {
	GetUser(ctx context.Context, email string) (*models.User, bool, error)
	SetUser(ctx context.Context, user *models.User) error
}

// Recorder принимает метрики операций.
type Recorder interface {
	Record(operation, outcome string, d time.Duration)
	CacheLookup(hit bool)
}

// TokenPair пара токенов, выдаваемая при входе.
type TokenPair struct {
	Access  *jwt.Bundle
	Refresh *jwt.Bundle
}

// AuthService отвечает за регистрацию, вход и проверку JWT.
type AuthService struct {
	users   UserRepository
	hasher  PasswordHasher
	tokens  jwt.Maker
	cache   UserCache
	metrics Recorder
	log     *slog.Logger
}

// NewAuthService создает новый экземпляр AuthService. cache и metrics могут быть nil.
func NewAuthService(users UserRepository, hasher PasswordHasher, tokens jwt.Maker,
	cache UserCache, rec Recorder, log *slog.Logger) *AuthService {
	if rec == nil {
		rec = noopRecorder{}
	}
	return &AuthService{
		users:   users,
		hasher:  hasher,
		tokens:  tokens,
		cache:   cache,
		metrics: rec,
		log:     log,
	}
}

// Register создает нового пользователя с хэшированием пароля.
//
// Email проверяется заранее, но окончательно уникальность обеспечивает индекс:
// конкурентная регистрация того же email тоже вернёт ErrUserAlreadyExists.
func (s *AuthService) Register(ctx context.Context, email, username, rawPassword string) (user *models.User, err error) {
	const op = "services.Register"
	log := s.log.With(slog.String("op", op), sl.Email(email))
	defer s.observe(opRegister, time.Now(), &err)

	existing, err := s.users.GetUserByEmail(ctx, email)
	switch {
	case err == nil && existing != nil:
		log.Info("email already registered", slog.String("username", username))
		return nil, fmt.Errorf("%s: %w (username %s)", op, ErrUserAlreadyExists, username)
	case err != nil && !errors.Is(err, storage.ErrUserNotFound):
		log.Error("failed to look up user", sl.Err(err))
		return nil, fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
	}

	hashed, err := s.hasher.Hash(rawPassword)
	if err != nil {
		if errors.Is(err, password.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%s: %w", op, ErrPasswordTooLong)
		}
		log.Error("failed to hash password", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	created, err := s.users.CreateUser(ctx, models.User{
		Email:        email,
		Username:     username,
		PasswordHash: hashed,
	})
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			log.Info("email taken concurrently", slog.String("username", username))
			return nil, fmt.Errorf("%s: %w (username %s)", op, ErrUserAlreadyExists, username)
		}
		log.Error("failed to create user", sl.Err(err))
		return nil, fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
	}

	log.Info("user registered", slog.String("id", created.ID))
	return created, nil
}

// Login проверяет пароль пользователя и выпускает access и refresh токены.
//
// Пароль сверяется только после того, как пользователь найден, токены выпускаются
// только после успешной проверки пароля.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (pair *TokenPair, err error) {
	const op = "services.Login"
	log := s.log.With(slog.String("op", op), sl.Email(email))
	defer s.observe(opLogin, time.Now(), &err)

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserDoesNotExist)
		}
		log.Error("failed to look up user", sl.Err(err))
		return nil, fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
	}
	if !user.IsActive {
		log.Info("login attempt for inactive account", slog.String("id", user.ID))
		return nil, fmt.Errorf("%s: %w", op, ErrUserDoesNotExist)
	}

	if !s.hasher.Verify(rawPassword, user.PasswordHash) {
		return nil, fmt.Errorf("%s: %w", op, ErrPasswordDoesNotMatch)
	}

	access, err := s.tokens.Issue(user.Email, user.Username, jwt.KindAccess)
	if err != nil {
		log.Error("failed to issue access token", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	refresh, err := s.tokens.Issue(user.Email, user.Username, jwt.KindRefresh)
	if err != nil {
		log.Error("failed to issue refresh token", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user logged in", slog.String("id", user.ID))
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// ResolveUser находит пользователя по email из проверенных claims.
func (s *AuthService) ResolveUser(ctx context.Context, claims *jwt.CustomClaims) (user *models.User, err error) {
	defer s.observe(opResolveUser, time.Now(), &err)
	return s.resolveUser(ctx, claims)
}

// Authenticate проверяет access-токен и возвращает его владельца.
func (s *AuthService) Authenticate(ctx context.Context, token string) (user *models.User, err error) {
	const op = "services.Authenticate"
	defer s.observe(opAuthenticate, time.Now(), &err)

	claims, err := s.tokens.Verify(token, jwt.KindAccess)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}
		return nil, fmt.Errorf("%s: %w: %w", op, ErrTokenInvalid, err)
	}
	return s.resolveUser(ctx, claims)
}

func (s *AuthService) resolveUser(ctx context.Context, claims *jwt.CustomClaims) (*models.User, error) {
	const op = "services.ResolveUser"
	log := s.log.With(slog.String("op", op))

	if claims == nil || claims.Email == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrTokenInvalid)
	}

	if s.cache != nil {
		cached, found, err := s.cache.GetUser(ctx, claims.Email)
		if err != nil {
			log.Warn("failed to read user cache", sl.Err(err))
		}
		s.metrics.CacheLookup(found)
		if found {
			return cached, nil
		}
	}

	user, err := s.users.GetUserByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserDoesNotExist)
		}
		log.Error("failed to look up user", sl.Err(err))
		return nil, fmt.Errorf("%s: %w: %w", op, ErrPersistence, err)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("%s: %w", op, ErrUserDoesNotExist)
	}

	if s.cache != nil {
		if err := s.cache.SetUser(ctx, user); err != nil {
			log.Warn("failed to cache user", sl.Err(err))
		}
	}
	return user, nil
}

func (s *AuthService) observe(operation string, start time.Time, err *error) {
	s.metrics.Record(operation, outcome(*err), time.Since(start))
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ErrUserAlreadyExists):
		return metrics.OutcomeUserExists
	case errors.Is(err, ErrUserDoesNotExist):
		return metrics.OutcomeUserNotFound
	case errors.Is(err, ErrPasswordDoesNotMatch):
		return metrics.OutcomeWrongPassword
	case errors.Is(err, ErrPasswordTooLong):
		return metrics.OutcomePasswordTooLong
	case errors.Is(err, ErrTokenExpired):
		return metrics.OutcomeTokenExpired
	case errors.Is(err, ErrTokenInvalid):
		return metrics.OutcomeTokenInvalid
	default:
		return metrics.OutcomeError
	}
}

type noopRecorder struct{}

func (noopRecorder) Record(string, string, time.Duration) {}
func (noopRecorder) CacheLookup(bool)                     {}
