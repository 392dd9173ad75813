package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type ProviderConfig struct {
	Model       string
	MaxTokens   int
	Temperature float32
}

type Config struct {
	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN,required"`
	AdminChatID      int64  `env:"ADMIN_CHAT_ID"`

	DatabaseURL string `env:"DATABASE_URL,required"`
	RedisURL    string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`

	// Ключ шифрования пользовательских API-ключей (32 байта, base64)
	EncryptionKey string `env:"ENCRYPTION_KEY,required"`

	HTTPPort string `env:"PORT" envDefault:"8080"`

	Debug    bool   `env:"DEBUG" envDefault:"false"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	MaxConversationHistory int `env:"MAX_CONVERSATION_HISTORY" envDefault:"10"`
	RateLimitPerMinute     int `env:"RATE_LIMIT_PER_MINUTE" envDefault:"30"`

	// OpenAI
	OpenAIModel       string  `env:"OPENAI_MODEL" envDefault:"gpt-3.5-turbo"`
	OpenAIMaxTokens   int     `env:"OPENAI_MAX_TOKENS" envDefault:"1000"`
	OpenAITemperature float32 `env:"OPENAI_TEMPERATURE" envDefault:"0.7"`

	// Claude
	ClaudeModel       string  `env:"CLAUDE_MODEL" envDefault:"claude-3-haiku-20240307"`
	ClaudeMaxTokens   int     `env:"CLAUDE_MAX_TOKENS" envDefault:"1000"`
	ClaudeTemperature float32 `env:"CLAUDE_TEMPERATURE" envDefault:"0.7"`
}

func New() *Config {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	return cfg
}

func (c *Config) OpenAI() ProviderConfig {
	return ProviderConfig{
		Model:       c.OpenAIModel,
		MaxTokens:   c.OpenAIMaxTokens,
		Temperature: c.OpenAITemperature,
	}
}

func (c *Config) Claude() ProviderConfig {
	return ProviderConfig{
		Model:       c.ClaudeModel,
		MaxTokens:   c.ClaudeMaxTokens,
		Temperature: c.ClaudeTemperature,
	}
}
