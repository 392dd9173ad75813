package usage

import (
	"context"
	"log"
)

type service struct {
	repo Repo
}

func NewService(repo Repo) Service {
	return &service{repo: repo}
}

func (s *service) Record(
	ctx context.Context,
	userID, chatID int64,
	action, messageType string,
	messageLen, responseLen int,
	tokens int64,
) error {
	err := s.repo.Record(ctx, Interaction{
		UserID:         userID,
		ChatID:         chatID,
		Action:         action,
		MessageType:    messageType,
		MessageLength:  messageLen,
		ResponseLength: responseLen,
	}, tokens)
	if err != nil {
		log.Printf("[usage] record fail user=%d action=%s: %v", userID, action, err)
	}
	return err
}

func (s *service) GetStats(ctx context.Context, userID int64) (*Stats, error) {
	return s.repo.GetStats(ctx, userID)
}

func (s *service) ClearInteractions(ctx context.Context, userID int64) error {
	if err := s.repo.DeleteInteractions(ctx, userID); err != nil {
		return err
	}
	log.Printf("[usage] interactions cleared user=%d", userID)
	return nil
}

func (s *service) SystemStats(ctx context.Context) (*SystemStats, error) {
	return s.repo.SystemStats(ctx)
}
