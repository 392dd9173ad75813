package settings

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeRepo struct {
	preferred map[int64]Provider
	ciphers   map[int64]map[Provider]string
	masks     map[int64]map[Provider]string
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		preferred: make(map[int64]Provider),
		ciphers:   make(map[int64]map[Provider]string),
		masks:     make(map[int64]map[Provider]string),
	}
}

func (f *fakeRepo) UpsertPreferredProvider(_ context.Context, userID int64, p Provider) error {
	f.preferred[userID] = p
	return nil
}

func (f *fakeRepo) UpsertAPIKey(_ context.Context, userID int64, p Provider, cipher, mask string) error {
	if f.ciphers[userID] == nil {
		f.ciphers[userID] = make(map[Provider]string)
		f.masks[userID] = make(map[Provider]string)
	}
	f.ciphers[userID][p] = cipher
	f.masks[userID][p] = mask
	return nil
}

func (f *fakeRepo) DeleteAPIKey(_ context.Context, userID int64, p Provider) error {
	delete(f.ciphers[userID], p)
	delete(f.masks[userID], p)
	return nil
}

func (f *fakeRepo) GetSettings(_ context.Context, userID int64) (*UserSettings, error) {
	out := &UserSettings{
		UserID:            userID,
		PreferredProvider: f.preferred[userID],
		Keys:              make(map[Provider]APIKey),
	}
	for p, mask := range f.masks[userID] {
		out.Keys[p] = APIKey{Provider: p, Mask: mask, CreatedAt: time.Now()}
	}
	return out, nil
}

func (f *fakeRepo) GetKeyCipher(_ context.Context, userID int64, p Provider) (string, error) {
	cipher, ok := f.ciphers[userID][p]
	if !ok {
		return "", sql.ErrNoRows
	}
	return cipher, nil
}

func newTestService(t *testing.T) (Service, *fakeRepo) {
	t.Helper()
	kb, err := NewKeybox(base64.StdEncoding.EncodeToString(make([]byte, 32)))
	if err != nil {
		t.Fatalf("keybox: %v", err)
	}
	repo := newFakeRepo()
	return NewService(repo, kb), repo
}

func TestSetPreferredProviderRoundtrip(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, p := range AllProviders() {
		if _, err := svc.SetPreferredProvider(ctx, 1, string(p)); err != nil {
			t.Fatalf("set %s: %v", p, err)
		}
		us, err := svc.GetSettings(ctx, 1)
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if us.PreferredProvider != p {
			t.Fatalf("preferred = %s, want %s", us.PreferredProvider, p)
		}
	}
}

func TestSetPreferredProviderRejectsUnknown(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.SetPreferredProvider(context.Background(), 1, "gemini")
	if !errors.Is(err, ErrInvalidProvider) {
		t.Fatalf("err = %v, want ErrInvalidProvider", err)
	}
}

func TestAddAPIKeyValidatesFormat(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []struct {
		provider string
		key      string
	}{
		{"openai", ""},
		{"openai", "not-a-key"},
		{"openai", "sk-ant-belongs-to-claude"},
		{"openai", "sk-short"},
		{"claude", "sk-regular-openai-key-123"},
		{"claude", "anything-else"},
	}

	for _, c := range cases {
		if _, err := svc.AddAPIKey(ctx, 1, c.provider, c.key); !errors.Is(err, ErrInvalidKeyFormat) {
			t.Fatalf("provider=%s key=%q: err = %v, want ErrInvalidKeyFormat", c.provider, c.key, err)
		}
	}

	if _, err := svc.AddAPIKey(ctx, 1, "nosuch", "sk-valid-key-12345"); !errors.Is(err, ErrInvalidProvider) {
		t.Fatalf("unknown provider: err = %v, want ErrInvalidProvider", err)
	}
}

func TestAddAPIKeyNeverExposesRawKey(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	raw := "sk-super-secret-key-abcdef123456"
	mask, err := svc.AddAPIKey(ctx, 1, "openai", raw)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if mask == raw || !strings.Contains(mask, "...") {
		t.Fatalf("mask looks wrong: %q", mask)
	}

	us, err := svc.GetSettings(ctx, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	stored := us.Keys[ProviderOpenAI]
	if stored.Mask == raw {
		t.Fatalf("settings expose raw key")
	}
	if repo.ciphers[1][ProviderOpenAI] == raw {
		t.Fatalf("repo stores raw key")
	}

	// расшифрованный ключ доступен только через GetAPIKey
	got, err := svc.GetAPIKey(ctx, 1, ProviderOpenAI)
	if err != nil {
		t.Fatalf("get api key: %v", err)
	}
	if got != raw {
		t.Fatalf("decrypted key mismatch: %q", got)
	}
}

func TestAddFirstKeyAutoSelectsProvider(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.AddAPIKey(ctx, 1, "claude", "sk-ant-api03-valid-key"); err != nil {
		t.Fatalf("add: %v", err)
	}

	us, _ := svc.GetSettings(ctx, 1)
	if us.PreferredProvider != ProviderClaude {
		t.Fatalf("preferred = %q, want claude", us.PreferredProvider)
	}

	// второй ключ предпочтение не трогает
	if _, err := svc.AddAPIKey(ctx, 1, "openai", "sk-valid-openai-key-123"); err != nil {
		t.Fatalf("add second: %v", err)
	}
	us, _ = svc.GetSettings(ctx, 1)
	if us.PreferredProvider != ProviderClaude {
		t.Fatalf("preferred changed to %q", us.PreferredProvider)
	}
}

func TestRemoveAPIKeyIdempotent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// удаление несуществующего ключа — не ошибка
	if err := svc.RemoveAPIKey(ctx, 1, "openai"); err != nil {
		t.Fatalf("remove absent: %v", err)
	}

	if _, err := svc.AddAPIKey(ctx, 1, "openai", "sk-valid-openai-key-123"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := svc.RemoveAPIKey(ctx, 1, "openai"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := svc.RemoveAPIKey(ctx, 1, "openai"); err != nil {
		t.Fatalf("second remove: %v", err)
	}

	us, _ := svc.GetSettings(ctx, 1)
	if us.HasKey(ProviderOpenAI) {
		t.Fatalf("key still present after remove")
	}
}

func TestGetSettingsDefaultForUnknownUser(t *testing.T) {
	svc, _ := newTestService(t)

	us, err := svc.GetSettings(context.Background(), 999)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if us.PreferredProvider != "" || len(us.Keys) != 0 {
		t.Fatalf("expected zero settings, got %+v", us)
	}
}

func TestMaskKey(t *testing.T) {
	if got := MaskKey("sk-abcdefghijklmnop"); got != "sk-abcdefg...mnop" {
		t.Fatalf("mask = %q", got)
	}
	if got := MaskKey("sk-short"); got != "***" {
		t.Fatalf("short mask = %q", got)
	}
}
