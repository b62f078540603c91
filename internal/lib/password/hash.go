// Package password реализует функции для безопасного хеширования и проверки паролей.
//
// Hasher создает bcrypt-хеш пароля со случайной солью для безопасного хранения
// и сравнивает сохранённый хеш с введённым паролем.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MaxLength максимальная длина пароля в байтах. bcrypt не учитывает байты сверх этого предела,
// поэтому более длинные пароли отклоняются, а не обрезаются молча.
const MaxLength = 72

// ErrPasswordTooLong возвращается, если пароль длиннее MaxLength байт.
var ErrPasswordTooLong = errors.New("password exceeds 72 bytes")

// Hasher хеширует пароли bcrypt с заданной стоимостью.
type Hasher struct {
	cost int
}

// NewHasher создаёт Hasher. Стоимость вне диапазона bcrypt заменяется на bcrypt.DefaultCost.
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash принимает пароль пользователя и возвращает его bcrypt‑хэш.
//
// Соль генерируется заново при каждом вызове и хранится внутри хэша.
func (h *Hasher) Hash(password string) ([]byte, error) {
	const op = "password.Hash"
	if len(password) > MaxLength {
		return nil, fmt.Errorf("%s: %w", op, ErrPasswordTooLong)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return hashed, nil
}

// Verify сравнивает bcrypt‑хэш с введённым паролем.
//
// Возвращает false при несовпадении, повреждённом хэше или слишком длинном пароле.
func (h *Hasher) Verify(password string, hash []byte) bool {
	if len(password) > MaxLength {
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
}
