package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/beocch/telegram-ai-assistant/internal/provider"
)

const historyTTL = 24 * time.Hour

type historyEntry struct {
	Timestamp   string `json:"timestamp"`
	UserMessage string `json:"user_message"`
	AIResponse  string `json:"ai_response"`
}

// Client — redis-кэш истории диалогов и счётчиков.
// Недоступный redis не фатален: бот деградирует до работы без кэша.
type Client struct {
	rdb        *redis.Client
	maxHistory int
	available  bool
}

func New(url string, maxHistory int) *Client {
	opts, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[cache] bad redis url, running uncached: %v", err)
		return &Client{maxHistory: maxHistory}
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("[cache] redis unreachable, running uncached: %v", err)
		return &Client{maxHistory: maxHistory}
	}

	log.Printf("[cache] redis connected")
	return &Client{rdb: rdb, maxHistory: maxHistory, available: true}
}

func (c *Client) Available() bool {
	return c.available
}

func historyKey(userID int64) string {
	return fmt.Sprintf("conversation:%d", userID)
}

func (c *Client) AppendHistory(ctx context.Context, userID int64, userMsg, aiResp string) error {
	if !c.available {
		return nil
	}

	raw, err := json.Marshal(historyEntry{
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		UserMessage: userMsg,
		AIResponse:  aiResp,
	})
	if err != nil {
		return err
	}

	key := historyKey(userID)
	pipe := c.rdb.Pipeline()
	pipe.LPush(ctx, key, raw)
	pipe.LTrim(ctx, key, 0, int64(c.maxHistory)-1)
	pipe.Expire(ctx, key, historyTTL)
	_, err = pipe.Exec(ctx)
	return err
}

// GetHistory возвращает историю в хронологическом порядке,
// по два сообщения (user, assistant) на запись.
func (c *Client) GetHistory(ctx context.Context, userID int64) ([]provider.Message, error) {
	if !c.available {
		return nil, nil
	}

	items, err := c.rdb.LRange(ctx, historyKey(userID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	// LPUSH хранит свежие записи первыми
	out := make([]provider.Message, 0, len(items)*2)
	for i := len(items) - 1; i >= 0; i-- {
		var e historyEntry
		if err := json.Unmarshal([]byte(items[i]), &e); err != nil {
			log.Printf("[cache] skip bad history entry user=%d: %v", userID, err)
			continue
		}
		out = append(out,
			provider.Message{Role: "user", Content: e.UserMessage},
			provider.Message{Role: "assistant", Content: e.AIResponse},
		)
	}
	return out, nil
}

func (c *Client) ClearHistory(ctx context.Context, userID int64) error {
	if !c.available {
		return nil
	}
	return c.rdb.Del(ctx, historyKey(userID)).Err()
}

// Incr — атомарный счётчик с TTL. Второй результат false, когда redis недоступен.
func (c *Client) Incr(ctx context.Context, key string, ttl time.Duration) (int64, bool) {
	if !c.available {
		return 0, false
	}

	pipe := c.rdb.Pipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[cache] incr fail key=%s: %v", key, err)
		return 0, false
	}
	return incr.Val(), true
}

func (c *Client) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}
