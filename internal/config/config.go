// Package config предоставляет структуры и функции для парсинга и загрузки конфига.
//
// Значения читаются из YAML-файла и могут быть переопределены переменными окружения.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	// EnvLocal локальный запуск, текстовые логи уровня debug.
	EnvLocal = "local"
	// EnvDev стенд разработки, JSON-логи уровня debug.
	EnvDev = "dev"
	// EnvProd продакшен, JSON-логи уровня info.
	EnvProd = "prod"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING" env-required:"true"`
	MigrationsPath          string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwt"`
	Hashing                 `yaml:"password"`
	CORS                    `yaml:"cors"`
	Cookie                  `yaml:"cookie"`
	RedisConnection         `yaml:"redis"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8080"`
	TimeoutHTTP     time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"4s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"15s"`
}

// JWTToken структура для работы с jwt-токенами.
//
// Времена жизни задаются в секундах, как и в исходном окружении развёртывания.
type JWTToken struct {
	JWTSecretKey         string `yaml:"secret_key" env:"JWT_SECRET_KEY"`
	Algorithm            string `yaml:"algorithm" env:"ALGORITHM" env-default:"HS256"`
	AccessExpireSeconds  int    `yaml:"access_expire_seconds" env:"ACCESS_TOKEN_EXPIRE_SECONDS" env-default:"3600"`
	RefreshExpireSeconds int    `yaml:"refresh_expire_seconds" env:"REFRESH_TOKEN_EXPIRE_SECONDS" env-default:"604800"`
}

// Hashing структура настроек хеширования паролей.
type Hashing struct {
	BcryptCost int `yaml:"bcrypt_cost" env:"BCRYPT_COST" env-default:"10"`
}

// CORS структура со списком разрешённых источников запросов.
type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ORIGINS" env-separator:","`
}

// Cookie структура настроек cookie с токенами.
type Cookie struct {
	Secure bool `yaml:"secure" env:"COOKIE_SECURE" env-default:"false"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	Enabled      bool          `yaml:"enabled" env:"REDIS_ENABLED" env-default:"false"`
	AddressRedis string        `yaml:"address" env:"REDIS_ADDRESS" env-default:"localhost:6379"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user" env:"REDIS_USER"`
	DB           int           `yaml:"db" env:"REDIS_DB" env-default:"0"`
	MaxRetries   int           `yaml:"max_retries" env:"REDIS_MAX_RETRIES" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env:"REDIS_DIAL_TIMEOUT" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeout" env:"REDIS_TIMEOUT" env-default:"3s"`
	UserTTL      time.Duration `yaml:"user_ttl" env:"REDIS_USER_TTL" env-default:"1m"`
}

// AccessTTL возвращает время жизни access-токена.
func (j JWTToken) AccessTTL() time.Duration {
	return time.Duration(j.AccessExpireSeconds) * time.Second
}

// RefreshTTL возвращает время жизни refresh-токена.
func (j JWTToken) RefreshTTL() time.Duration {
	return time.Duration(j.RefreshExpireSeconds) * time.Second
}

// MustLoad функция для загрузки конфига. Путь берётся из флага --config или CONFIG_PATH.
// При любой ошибке процесс завершается.
func MustLoad() *Config {
	configPath := fetchConfigPath()
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// Load читает конфиг из файла, накладывает переменные окружения и проверяет значения.
func Load(configPath string) (*Config, error) {
	const op = "config.Load"

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s: file %s does not exist", op, configPath)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &cfg, nil
}

// Validate проверяет значения, без которых сервис не может выпускать токены.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecretKey == "" {
		errs = append(errs, errors.New("jwt secret key is empty"))
	}
	if c.AccessExpireSeconds <= 0 {
		errs = append(errs, fmt.Errorf("access token lifetime must be positive, got %d", c.AccessExpireSeconds))
	}
	if c.RefreshExpireSeconds <= 0 {
		errs = append(errs, fmt.Errorf("refresh token lifetime must be positive, got %d", c.RefreshExpireSeconds))
	}
	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		errs = append(errs, fmt.Errorf("unknown env %q", c.Env))
	}
	return errors.Join(errs...)
}

func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}
	return res
}

func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"StorageConnectionString: %s\n"+
			"MigrationsPath: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  Timeout: %s\n"+
			"  IdleTimeout: %s\n"+
			"JWTToken:\n"+
			"  JWTSecretKey: %s\n"+
			"  Algorithm: %s\n"+
			"  AccessTTL: %s\n"+
			"  RefreshTTL: %s\n"+
			"CORS:\n"+
			"  AllowedOrigins: %v\n"+
			"Redis:\n"+
			"  Enabled: %t\n"+
			"  Addr: %s\n"+
			"  DB: %d\n",
		c.Env,
		redact(c.StorageConnectionString),
		c.MigrationsPath,
		c.AddressHTTP,
		c.TimeoutHTTP,
		c.IdleTimeout,
		redact(c.JWTSecretKey),
		c.Algorithm,
		c.AccessTTL(),
		c.RefreshTTL(),
		c.AllowedOrigins,
		c.Enabled,
		c.AddressRedis,
		c.DB,
	)
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "[REDACTED]"
}
