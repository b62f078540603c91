package services

import "errors"

// Ошибки сервиса аутентификации. Сравниваются через errors.Is.
var (
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrUserDoesNotExist     = errors.New("user does not exist")
	ErrPasswordDoesNotMatch = errors.New("password does not match")
	ErrPasswordTooLong      = errors.New("password too long")
	ErrTokenExpired         = errors.New("token expired")
	ErrTokenInvalid         = errors.New("token invalid")
	ErrPersistence          = errors.New("persistence failure")
)
