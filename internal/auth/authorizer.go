package auth

import (
	"context"
	"errors"
	"time"

	"github.com/SergeiKhy/affiliate-storefront/internal/models"
	"github.com/SergeiKhy/affiliate-storefront/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

var (
	ErrNotAuthorized = errors.New("требуются права администратора")
	ErrInvalidToken  = errors.New("invalid token")
)

// LoginPath куда отправлять неавторизованного пользователя
const LoginPath = "/admin/login"

const devUserID = "dev-user"

// Authorizer отвечает на вопрос, является ли вызывающий администратором
type Authorizer interface {
	RequireAdmin(ctx context.Context) (*models.Profile, error)
}

type Config struct {
	JWTSecret string
	// DevBypass действует только вместе с ненастроенным хранилищем
	DevBypass       bool
	StoreConfigured bool
}

type authorizer struct {
	secret   []byte
	bypass   bool
	profiles repository.ProfileRepository
	logger   *zap.Logger
}

func NewAuthorizer(cfg Config, profiles repository.ProfileRepository, logger *zap.Logger) Authorizer {
	if logger == nil {
		logger = zap.NewNop()
	}

	bypass := cfg.DevBypass && !cfg.StoreConfigured
	if cfg.DevBypass && cfg.StoreConfigured {
		logger.Warn("ADMIN_DEV_BYPASS игнорируется: хранилище настроено")
	}
	if bypass {
		logger.Warn("Режим разработки: проверка администратора отключена")
	}

	return &authorizer{
		secret:   []byte(cfg.JWTSecret),
		bypass:   bypass,
		profiles: profiles,
		logger:   logger,
	}
}

func (a *authorizer) RequireAdmin(ctx context.Context) (*models.Profile, error) {
	if a.bypass {
		now := time.Now()
		return &models.Profile{UserID: devUserID, Role: models.RoleAdmin, CreatedAt: now, UpdatedAt: now}, nil
	}

	token, ok := TokenFromContext(ctx)
	if !ok {
		return nil, ErrNotAuthorized
	}

	if len(a.secret) == 0 {
		a.logger.Warn("ADMIN_JWT_SECRET не задан, админка недоступна")
		return nil, ErrNotAuthorized
	}

	userID, err := a.subject(token)
	if err != nil {
		a.logger.Debug("Токен администратора отклонён", zap.Error(err))
		return nil, ErrNotAuthorized
	}

	profile, err := a.profiles.GetByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			a.logger.Error("Не удалось получить профиль", zap.String("user_id", userID), zap.Error(err))
		}
		return nil, ErrNotAuthorized
	}

	if !profile.IsAdmin() {
		return nil, ErrNotAuthorized
	}

	return profile, nil
}

func (a *authorizer) subject(tokenString string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}

	if !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}

// IssueToken подписывает токен для пользователя, нужен для выдачи вне сервиса и в тестах
func IssueToken(secret, userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
