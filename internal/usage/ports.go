package usage

import (
	"context"
	"time"
)

// Interaction — одна обработанная операция, append-only
type Interaction struct {
	ID             int64
	UserID         int64
	ChatID         int64
	Action         string
	MessageType    string
	MessageLength  int
	ResponseLength int
	CreatedAt      time.Time
}

// Stats — накопительная статистика пользователя
type Stats struct {
	UserID            int64
	TotalMessages     int64
	MessagesToday     int64
	MessagesThisWeek  int64
	TokensUsed        int64
	AvgResponseLength int64
	FirstUsed         time.Time
	LastUsed          time.Time
	UpdatedAt         time.Time
}

type SystemStats struct {
	TotalUsers        int64
	TotalInteractions int64
	TodayInteractions int64
}

// Repo — работа с БД
type Repo interface {
	// Record вставляет interaction и обновляет статистику в одной транзакции.
	Record(ctx context.Context, in Interaction, tokens int64) error
	GetStats(ctx context.Context, userID int64) (*Stats, error)
	DeleteInteractions(ctx context.Context, userID int64) error
	SystemStats(ctx context.Context) (*SystemStats, error)
}

// Service — бизнес-операции учёта использования
type Service interface {
	Record(ctx context.Context, userID, chatID int64, action, messageType string, messageLen, responseLen int, tokens int64) error
	GetStats(ctx context.Context, userID int64) (*Stats, error)
	// ClearInteractions удаляет историю взаимодействий, статистика сохраняется.
	ClearInteractions(ctx context.Context, userID int64) error
	SystemStats(ctx context.Context) (*SystemStats, error)
}
