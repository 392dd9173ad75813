package settings

import (
	"context"
	"errors"
	"time"
)

type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderClaude Provider = "claude"
)

var (
	ErrInvalidProvider  = errors.New("invalid provider")
	ErrInvalidKeyFormat = errors.New("invalid api key format")
)

func ParseProvider(s string) (Provider, error) {
	switch Provider(s) {
	case ProviderOpenAI, ProviderClaude:
		return Provider(s), nil
	default:
		return "", ErrInvalidProvider
	}
}

func AllProviders() []Provider {
	return []Provider{ProviderOpenAI, ProviderClaude}
}

// APIKey — ключ в отображаемой форме, без секрета
type APIKey struct {
	Provider  Provider
	Mask      string
	CreatedAt time.Time
}

type UserSettings struct {
	UserID            int64
	PreferredProvider Provider // "" — не выбран
	Keys              map[Provider]APIKey
}

func (s *UserSettings) HasKey(p Provider) bool {
	_, ok := s.Keys[p]
	return ok
}

// Repo — работа с БД
type Repo interface {
	UpsertPreferredProvider(ctx context.Context, userID int64, p Provider) error
	UpsertAPIKey(ctx context.Context, userID int64, p Provider, keyCipher, keyMask string) error
	DeleteAPIKey(ctx context.Context, userID int64, p Provider) error
	GetSettings(ctx context.Context, userID int64) (*UserSettings, error)
	GetKeyCipher(ctx context.Context, userID int64, p Provider) (string, error)
}

// Service — бизнес-операции над настройками пользователя
type Service interface {
	SetPreferredProvider(ctx context.Context, userID int64, provider string) (*UserSettings, error)
	AddAPIKey(ctx context.Context, userID int64, provider, rawKey string) (string, error)
	RemoveAPIKey(ctx context.Context, userID int64, provider string) error
	GetSettings(ctx context.Context, userID int64) (*UserSettings, error)
	// GetAPIKey возвращает расшифрованный ключ для вызова провайдера.
	GetAPIKey(ctx context.Context, userID int64, p Provider) (string, error)
}
