package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит конфигурацию сервера генерации профессий.
type Config struct {
	// HTTP сервер
	Port            string        `envconfig:"PORT" default:"8080"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	// Логирование
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	LogEncoding string `envconfig:"LOG_ENCODING" default:"json"`

	// Настройки AI (OpenAI или OpenRouter-совместимый API)
	AIAPIKey      string        `envconfig:"AI_API_KEY"`
	AIBaseURL     string        `envconfig:"AI_BASE_URL" default:"https://api.openai.com/v1"`
	AIModel       string        `envconfig:"AI_MODEL" default:"gpt-4o-mini"`
	AIImageModel  string        `envconfig:"AI_IMAGE_MODEL" default:"dall-e-3"`
	AISpeechModel string        `envconfig:"AI_SPEECH_MODEL" default:"tts-1"`
	AISpeechVoice string        `envconfig:"AI_SPEECH_VOICE" default:"alloy"`
	AITimeout     time.Duration `envconfig:"AI_TIMEOUT" default:"120s"`

	// Ретраи текстовой стадии
	AIMaxAttempts int           `envconfig:"AI_MAX_ATTEMPTS" default:"3"`
	AIRetryDelay  time.Duration `envconfig:"AI_RETRY_DELAY" default:"1s"`

	// Поиск вакансий (HeadHunter)
	HHBaseURL string        `envconfig:"HH_BASE_URL" default:"https://api.hh.ru"`
	HHTimeout time.Duration `envconfig:"HH_TIMEOUT" default:"15s"`

	// Поиск видео (YouTube Data API)
	YouTubeAPIKey string `envconfig:"YOUTUBE_API_KEY"`

	// Кеш артефактов
	CacheBackend  string `envconfig:"CACHE_BACKEND" default:"file"` // file или redis
	CacheDir      string `envconfig:"CACHE_DIR" default:"data/cache"`
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`

	// Медиа (сгенерированные аудиоклипы)
	MediaDir string `envconfig:"MEDIA_DIR" default:"data/media"`

	// Фича-флаг озвучки расписания
	AudioEnabled bool `envconfig:"AUDIO_ENABLED" default:"false"`
	// Пауза между TTS-запросами (щадим лимиты апстрима)
	AudioCallDelay time.Duration `envconfig:"AUDIO_CALL_DELAY" default:"500ms"`

	// Пауза между запусками обогащения веток карьерного дерева
	CareerEnrichDelay time.Duration `envconfig:"CAREER_ENRICH_DELAY" default:"200ms"`

	// CORS
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"*"`
}

// Load загружает конфигурацию из переменных окружения.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	if cfg.CacheBackend != "file" && cfg.CacheBackend != "redis" {
		return nil, fmt.Errorf("неизвестный CACHE_BACKEND %q (ожидается file или redis)", cfg.CacheBackend)
	}
	if cfg.AIMaxAttempts <= 0 {
		cfg.AIMaxAttempts = 3
	}

	return &cfg, nil
}
