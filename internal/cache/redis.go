// Package cache реализует кэш разрешённых по токену пользователей поверх Redis.
//
// Хэш пароля в кэш не попадает: поле models.User.PasswordHash не сериализуется.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/todo-auth/internal/config"
	"github.com/magabrotheeeer/todo-auth/internal/models"
)

const userKeyPrefix = "auth:user:"

// Cache хранит клиент Redis и время жизни записей о пользователях.
type Cache struct {
	Db      *redis.Client
	userTTL time.Duration
}

// InitServer подключается к Redis и проверяет соединение.
func InitServer(ctx context.Context, cfg config.RedisConnection) (*Cache, error) {
	const op = "cache.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Cache{Db: db, userTTL: cfg.UserTTL}, nil
}

// Get читает JSON по ключу в result. found=false, если ключа нет.
func (c *Cache) Get(ctx context.Context, key string, result any) (bool, error) {
	const op = "cache.Get"
	val, err := c.Db.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if err = json.Unmarshal(val, result); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// Set сохраняет value в JSON с временем жизни expiration.
func (c *Cache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	const op = "cache.Set"
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = c.Db.Set(ctx, key, jsonData, expiration).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Invalidate удаляет ключ.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	return c.Db.Del(ctx, key).Err()
}

// GetUser возвращает пользователя из кэша по email.
func (c *Cache) GetUser(ctx context.Context, email string) (*models.User, bool, error) {
	var u models.User
	found, err := c.Get(ctx, userKey(email), &u)
	if err != nil || !found {
		return nil, false, err
	}
	return &u, true, nil
}

// SetUser кладёт пользователя в кэш на userTTL.
func (c *Cache) SetUser(ctx context.Context, user *models.User) error {
	return c.Set(ctx, userKey(user.Email), user, c.userTTL)
}

// InvalidateUser удаляет пользователя из кэша.
func (c *Cache) InvalidateUser(ctx context.Context, email string) error {
	return c.Invalidate(ctx, userKey(email))
}

// Close закрывает клиент Redis.
func (c *Cache) Close() error {
	return c.Db.Close()
}

func userKey(email string) string {
	return userKeyPrefix + email
}
