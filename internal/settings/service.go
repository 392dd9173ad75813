package settings

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
)

type service struct {
	repo   Repo
	keybox *Keybox
}

func NewService(repo Repo, keybox *Keybox) Service {
	return &service{repo: repo, keybox: keybox}
}

func (s *service) SetPreferredProvider(ctx context.Context, userID int64, provider string) (*UserSettings, error) {
	p, err := ParseProvider(provider)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpsertPreferredProvider(ctx, userID, p); err != nil {
		return nil, err
	}
	log.Printf("[settings] preferred provider set user=%d provider=%s", userID, p)
	return s.repo.GetSettings(ctx, userID)
}

func (s *service) AddAPIKey(ctx context.Context, userID int64, provider, rawKey string) (string, error) {
	p, err := ParseProvider(provider)
	if err != nil {
		return "", err
	}

	rawKey = strings.TrimSpace(rawKey)
	if err := validateKeyFormat(p, rawKey); err != nil {
		return "", err
	}

	cipher, err := s.keybox.Encrypt(rawKey)
	if err != nil {
		return "", fmt.Errorf("encrypt api key: %w", err)
	}

	mask := MaskKey(rawKey)
	if err := s.repo.UpsertAPIKey(ctx, userID, p, cipher, mask); err != nil {
		return "", err
	}

	// первый ключ становится предпочтением автоматически
	cur, err := s.repo.GetSettings(ctx, userID)
	if err == nil && cur.PreferredProvider == "" {
		if err := s.repo.UpsertPreferredProvider(ctx, userID, p); err != nil {
			log.Printf("[settings] auto-select provider fail user=%d: %v", userID, err)
		}
	}

	log.Printf("[settings] api key stored user=%d provider=%s mask=%s", userID, p, mask)
	return mask, nil
}

func (s *service) RemoveAPIKey(ctx context.Context, userID int64, provider string) error {
	p, err := ParseProvider(provider)
	if err != nil {
		return err
	}
	// идемпотентно: отсутствие ключа не ошибка
	if err := s.repo.DeleteAPIKey(ctx, userID, p); err != nil {
		return err
	}
	log.Printf("[settings] api key removed user=%d provider=%s", userID, p)
	return nil
}

func (s *service) GetSettings(ctx context.Context, userID int64) (*UserSettings, error) {
	return s.repo.GetSettings(ctx, userID)
}

func (s *service) GetAPIKey(ctx context.Context, userID int64, p Provider) (string, error) {
	cipher, err := s.repo.GetKeyCipher(ctx, userID, p)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("no key for provider %s", p)
		}
		return "", err
	}
	return s.keybox.Decrypt(cipher)
}

func validateKeyFormat(p Provider, key string) error {
	if key == "" {
		return ErrInvalidKeyFormat
	}
	switch p {
	case ProviderOpenAI:
		if !strings.HasPrefix(key, "sk-") || strings.HasPrefix(key, "sk-ant-") {
			return ErrInvalidKeyFormat
		}
	case ProviderClaude:
		if !strings.HasPrefix(key, "sk-ant-") && !strings.HasPrefix(key, "sk-ant_api03-") {
			return ErrInvalidKeyFormat
		}
	}
	if len(key) < 12 {
		return ErrInvalidKeyFormat
	}
	return nil
}

// MaskKey — отображаемая форма ключа: первые и последние символы
func MaskKey(key string) string {
	if len(key) > 14 {
		return key[:10] + "..." + key[len(key)-4:]
	}
	return "***"
}
