// Package jwt реализует выпуск и проверку подписанных JWT токенов доступа и обновления.
//
// Maker определяет интерфейс для выпуска токена заданного вида и его проверки.
// MakerImpl является реализацией на симметричном ключе с закреплённым HMAC-алгоритмом:
// токены выпускает и проверяет один и тот же сервис.
package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Kind вид токена, у каждого вида своё время жизни.
type Kind string

const (
	// KindAccess короткоживущий токен для доступа к защищённым операциям.
	KindAccess Kind = "access"
	// KindRefresh долгоживущий токен для обновления сессии.
	KindRefresh Kind = "refresh"
)

// TokenTypeBearer тип токена, который возвращается клиенту.
const TokenTypeBearer = "bearer"

var (
	// ErrTokenExpired подпись верна, но срок действия истёк.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid подпись неверна, токен повреждён, алгоритм не совпадает
	// или отсутствует обязательный claim.
	ErrTokenInvalid = errors.New("token invalid")
)

// CustomClaims описывает пользовательские данные, хранящиеся в JWT.
type CustomClaims struct {
	Email                string `json:"email"`    // Электронная почта владельца
	Username             string `json:"username"` // Имя пользователя
	Kind                 Kind   `json:"kind"`     // Вид токена
	jwt.RegisteredClaims        // ExpiresAt, IssuedAt и ID
}

// Bundle выпущенный токен вместе с метаданными для клиента.
type Bundle struct {
	Token     string
	TokenType string
	ExpiresIn time.Duration
	ExpiresAt time.Time
}

// Maker описывает интерфейс для выпуска и проверки JWT токенов.
type Maker interface {
	// Issue выпускает токен вида kind для пользователя.
	Issue(email, username string, kind Kind) (*Bundle, error)
	// Verify проверяет подпись и срок действия токена и убеждается, что он вида kind.
	Verify(tokenStr string, kind Kind) (*CustomClaims, error)
}
