// Package sl содержит атрибуты slog, общие для всего сервиса.
package sl

import (
	"log/slog"
	"strings"
)

// Err возвращает атрибут "error" с текстом ошибки. nil даёт пустую строку.
//
//	log.Error("failed to do something", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// Email возвращает атрибут "email" с замаскированной локальной частью:
// alice@example.com превращается в a***@example.com.
func Email(email string) slog.Attr {
	return slog.String("email", maskEmail(email))
}

func maskEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" {
		return "***"
	}
	return local[:1] + "***@" + domain
}
