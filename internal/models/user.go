// Package models содержит доменную модель пользователя todo-приложения,
// включающую данные учётной записи, хэш пароля и служебные отметки времени.
// Структура используется в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// User представляет зарегистрированного пользователя системы.
type User struct {
	ID           string    `json:"id"`         // Уникальный идентификатор, выдаётся хранилищем
	Email        string    `json:"email"`      // Электронная почта (уникальная, с учётом регистра)
	Username     string    `json:"username"`   // Отображаемое имя
	PasswordHash []byte    `json:"-"`          // bcrypt-хэш пароля, никогда не сериализуется
	IsActive     bool      `json:"is_active"`  // Признак активной учётной записи
	CreatedAt    time.Time `json:"created_at"` // Дата регистрации
	UpdatedAt    time.Time `json:"updated_at"` // Дата последнего изменения
}
