package usage

import (
	"context"
	"database/sql"
	"time"
)

type infra struct {
	db  *sql.DB
	now func() time.Time
}

func NewInfra(db *sql.DB) Repo {
	return &infra{db: db, now: time.Now}
}

func (i *infra) Record(ctx context.Context, in Interaction, tokens int64) error {
	now := i.now().UTC()

	tx, err := i.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO user_interactions
			(user_id, chat_id, action, message_type, message_length, response_length, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, in.UserID, in.ChatID, in.Action, in.MessageType, in.MessageLength, in.ResponseLength, now); err != nil {
		return err
	}

	// строка статистики блокируется на время транзакции,
	// конкурентные сообщения одного пользователя сериализуются
	var prev *Stats
	var cur Stats
	err = tx.QueryRowContext(ctx, `
		SELECT total_messages, messages_today, messages_this_week,
		       tokens_used, avg_response_length, first_used, last_used
		FROM user_stats
		WHERE user_id = $1
		FOR UPDATE
	`, in.UserID).Scan(
		&cur.TotalMessages,
		&cur.MessagesToday,
		&cur.MessagesThisWeek,
		&cur.TokensUsed,
		&cur.AvgResponseLength,
		&cur.FirstUsed,
		&cur.LastUsed,
	)
	switch err {
	case nil:
		cur.UserID = in.UserID
		prev = &cur
	case sql.ErrNoRows:
		prev = nil
	default:
		return err
	}

	next := apply(prev, in.UserID, in.ResponseLength, tokens, now)

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO user_stats
			(user_id, total_messages, messages_today, messages_this_week,
			 tokens_used, avg_response_length, first_used, last_used, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (user_id)
		DO UPDATE SET
			total_messages = $2,
			messages_today = $3,
			messages_this_week = $4,
			tokens_used = $5,
			avg_response_length = $6,
			last_used = $8,
			updated_at = $8
	`, next.UserID, next.TotalMessages, next.MessagesToday, next.MessagesThisWeek,
		next.TokensUsed, next.AvgResponseLength, next.FirstUsed, next.LastUsed); err != nil {
		return err
	}

	return tx.Commit()
}

func (i *infra) GetStats(ctx context.Context, userID int64) (*Stats, error) {
	var s Stats
	err := i.db.QueryRowContext(ctx, `
		SELECT user_id, total_messages, messages_today, messages_this_week,
		       tokens_used, avg_response_length, first_used, last_used, updated_at
		FROM user_stats
		WHERE user_id = $1
	`, userID).Scan(
		&s.UserID,
		&s.TotalMessages,
		&s.MessagesToday,
		&s.MessagesThisWeek,
		&s.TokensUsed,
		&s.AvgResponseLength,
		&s.FirstUsed,
		&s.LastUsed,
		&s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (i *infra) DeleteInteractions(ctx context.Context, userID int64) error {
	_, err := i.db.ExecContext(ctx, `
		DELETE FROM user_interactions
		WHERE user_id = $1
	`, userID)
	return err
}

func (i *infra) SystemStats(ctx context.Context) (*SystemStats, error) {
	var out SystemStats

	if err := i.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM user_stats
	`).Scan(&out.TotalUsers); err != nil {
		return nil, err
	}

	if err := i.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM user_interactions
	`).Scan(&out.TotalInteractions); err != nil {
		return nil, err
	}

	todayStart := i.now().UTC().Truncate(24 * time.Hour)
	if err := i.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM user_interactions
		WHERE created_at >= $1
	`, todayStart).Scan(&out.TodayInteractions); err != nil {
		return nil, err
	}

	return &out, nil
}
