package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// MakerImpl реализует интерфейс Maker с использованием секретного ключа,
// закреплённого алгоритма подписи и времени жизни для каждого вида токена.
type MakerImpl struct {
	secretKey  []byte
	method     jwt.SigningMethod
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewJWTMaker создаёт MakerImpl.
//
// algorithm должен быть HMAC-алгоритмом (HS256, HS384, HS512): асимметричные методы
// и "none" отклоняются, так как выпуск и проверка происходят в одном процессе.
func NewJWTMaker(secretKey, algorithm string, accessTTL, refreshTTL time.Duration) (*MakerImpl, error) {
	const op = "jwt.NewJWTMaker"

	if secretKey == "" {
		return nil, fmt.Errorf("%s: secret key is empty", op)
	}
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok {
		return nil, fmt.Errorf("%s: unsupported signing algorithm %q", op, algorithm)
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, fmt.Errorf("%s: token lifetimes must be positive", op)
	}

	return &MakerImpl{
		secretKey:  []byte(secretKey),
		method:     method,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

// TTL возвращает время жизни токена заданного вида.
func (j *MakerImpl) TTL(kind Kind) (time.Duration, error) {
	switch kind {
	case KindAccess:
		return j.accessTTL, nil
	case KindRefresh:
		return j.refreshTTL, nil
	default:
		return 0, fmt.Errorf("unknown token kind %q", kind)
	}
}

// Issue создает JWT токен вида kind с email и username, подписывая его секретным ключом.
//
// Срок действия отсчитывается от текущего времени на время жизни этого вида.
func (j *MakerImpl) Issue(email, username string, kind Kind) (*Bundle, error) {
	const op = "jwt.Issue"

	ttl, err := j.TTL(kind)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := j.now()
	claims := CustomClaims{
		Email:    email,
		Username: username,
		Kind:     kind,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	}

	token, err := jwt.NewWithClaims(j.method, claims).SignedString(j.secretKey)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Bundle{
		Token:     token,
		TokenType: TokenTypeBearer,
		ExpiresIn: ttl,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Verify парсит JWT токен, сначала проверяя подпись, затем срок действия.
//
// Алгоритм из заголовка токена должен совпадать с настроенным. Возвращает ErrTokenExpired
// для просроченного токена с верной подписью и ErrTokenInvalid во всех остальных случаях.
func (j *MakerImpl) Verify(tokenStr string, kind Kind) (*CustomClaims, error) {
	const op = "jwt.Verify"

	claims := &CustomClaims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(_ *jwt.Token) (any, error) {
		return j.secretKey, nil
	},
		jwt.WithValidMethods([]string{j.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}
		return nil, fmt.Errorf("%s: %w: %v", op, ErrTokenInvalid, err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrTokenInvalid)
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("%s: %w: email claim is missing", op, ErrTokenInvalid)
	}
	if claims.Kind != kind {
		return nil, fmt.Errorf("%s: %w: expected %s token, got %q", op, ErrTokenInvalid, kind, claims.Kind)
	}
	return claims, nil
}
