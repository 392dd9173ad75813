package settings

import (
	"context"
	"database/sql"
)

type infra struct {
	db *sql.DB
}

func NewInfra(db *sql.DB) Repo {
	return &infra{db: db}
}

func (i *infra) UpsertPreferredProvider(ctx context.Context, userID int64, p Provider) error {
	_, err := i.db.ExecContext(ctx, `
		INSERT INTO user_settings (user_id, preferred_provider, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET preferred_provider = $2, updated_at = NOW()
	`, userID, string(p))
	return err
}

func (i *infra) UpsertAPIKey(ctx context.Context, userID int64, p Provider, keyCipher, keyMask string) error {
	tx, err := i.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// строка настроек должна существовать до ключа
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO user_settings (user_id, preferred_provider, updated_at)
		VALUES ($1, '', NOW())
		ON CONFLICT (user_id) DO NOTHING
	`, userID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO user_api_keys (user_id, provider, key_cipher, key_mask, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id, provider)
		DO UPDATE SET key_cipher = $3, key_mask = $4, created_at = NOW()
	`, userID, string(p), keyCipher, keyMask); err != nil {
		return err
	}

	return tx.Commit()
}

func (i *infra) DeleteAPIKey(ctx context.Context, userID int64, p Provider) error {
	_, err := i.db.ExecContext(ctx, `
		DELETE FROM user_api_keys
		WHERE user_id = $1 AND provider = $2
	`, userID, string(p))
	return err
}

func (i *infra) GetSettings(ctx context.Context, userID int64) (*UserSettings, error) {
	out := &UserSettings{
		UserID: userID,
		Keys:   make(map[Provider]APIKey),
	}

	var preferred string
	err := i.db.QueryRowContext(ctx, `
		SELECT preferred_provider
		FROM user_settings
		WHERE user_id = $1
	`, userID).Scan(&preferred)
	if err != nil && err != sql.ErrNoRows {
		return nil, err
	}
	out.PreferredProvider = Provider(preferred)

	rows, err := i.db.QueryContext(ctx, `
		SELECT provider, key_mask, created_at
		FROM user_api_keys
		WHERE user_id = $1
		ORDER BY provider
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var k APIKey
		var provider string
		if err := rows.Scan(&provider, &k.Mask, &k.CreatedAt); err != nil {
			return nil, err
		}
		k.Provider = Provider(provider)
		out.Keys[k.Provider] = k
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (i *infra) GetKeyCipher(ctx context.Context, userID int64, p Provider) (string, error) {
	var cipher string
	err := i.db.QueryRowContext(ctx, `
		SELECT key_cipher
		FROM user_api_keys
		WHERE user_id = $1 AND provider = $2
	`, userID, string(p)).Scan(&cipher)
	return cipher, err
}
