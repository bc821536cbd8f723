package clients

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pkoukk/tiktoken-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	openaigo "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"profession-server/internal/models"
)

// ErrAIGenerationFailed - ошибка при обращении к AI API.
var ErrAIGenerationFailed = errors.New("ошибка генерации AI")

var (
	aiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profession_ai_requests_total",
			Help: "Total number of requests to the AI API.",
		},
		[]string{"kind", "status"}, // kind: text, image, speech
	)
	aiRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "profession_ai_request_duration_seconds",
			Help:    "Histogram of AI API request durations.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"kind"},
	)
	aiPromptTokens = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "profession_ai_prompt_tokens",
		Help:    "Histogram of prompt token counts for text requests.",
		Buckets: prometheus.LinearBuckets(250, 250, 20),
	})
)

// AIClient - интерфейс для взаимодействия с AI API.
// Покрывает все три возможности апстрима: JSON-генерация текста,
// генерация изображений и синтез речи.
type AIClient interface {
	// GenerateJSON выполняет chat completion в JSON-режиме и возвращает сырой JSON.
	GenerateJSON(ctx context.Context, systemPrompt, userInput string) (string, error)
	// GenerateImage генерирует одно изображение и возвращает его URL.
	GenerateImage(ctx context.Context, prompt string) (string, error)
	// GenerateSpeech синтезирует короткий аудиоклип (mp3).
	GenerateSpeech(ctx context.Context, text string) ([]byte, error)
}

// AIConfig - настройки клиента AI API.
type AIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	ImageModel  string
	SpeechModel string
	SpeechVoice string
	Timeout     time.Duration
}

type openAIClient struct {
	client *openaigo.Client
	cfg    AIConfig
	logger *zap.Logger
}

// NewAIClient создает клиент AI API. Отсутствие ключа не мешает созданию:
// оно проверяется в начале каждой операции и возвращается как ошибка
// конфигурации, без ретраев.
func NewAIClient(cfg AIConfig, logger *zap.Logger) AIClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	clientCfg := openaigo.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &openAIClient{
		client: openaigo.NewClientWithConfig(clientCfg),
		cfg:    cfg,
		logger: logger.Named("AIClient"),
	}
}

func (c *openAIClient) checkKey(feature string) error {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return models.NewConfigurationError(feature, "AI_API_KEY")
	}
	return nil
}

// GenerateJSON отправляет chat completion с принудительным JSON-ответом.
func (c *openAIClient) GenerateJSON(ctx context.Context, systemPrompt, userInput string) (string, error) {
	if err := c.checkKey("генерации текста"); err != nil {
		return "", err
	}
	if strings.TrimSpace(systemPrompt) == "" {
		return "", fmt.Errorf("%w: системный промт пуст", ErrAIGenerationFailed)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	messages := []openaigo.ChatCompletionMessage{
		{Role: openaigo.ChatMessageRoleSystem, Content: systemPrompt},
	}
	if userInput != "" {
		messages = append(messages, openaigo.ChatCompletionMessage{
			Role: openaigo.ChatMessageRoleUser, Content: userInput,
		})
	}

	// Примерный подсчет токенов промта для метрик (как в стриминге)
	if tke, err := tiktoken.GetEncoding("cl100k_base"); err == nil {
		aiPromptTokens.Observe(float64(len(tke.Encode(systemPrompt+userInput, nil, nil))))
	}

	req := openaigo.ChatCompletionRequest{
		Model:    c.cfg.Model,
		Messages: messages,
		ResponseFormat: &openaigo.ChatCompletionResponseFormat{
			Type: openaigo.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	c.logger.Debug("Sending text request to AI API",
		zap.String("model", c.cfg.Model),
		zap.Int("system_prompt_bytes", len(systemPrompt)),
		zap.Int("user_input_bytes", len(userInput)))

	start := time.Now()
	resp, err := c.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)
	aiRequestDuration.WithLabelValues("text").Observe(duration.Seconds())
	if err != nil {
		aiRequestsTotal.WithLabelValues("text", "error").Inc()
		return "", fmt.Errorf("%w: %v", ErrAIGenerationFailed, err)
	}
	if len(resp.Choices) == 0 {
		aiRequestsTotal.WithLabelValues("text", "error").Inc()
		return "", fmt.Errorf("%w: пустой ответ от API", ErrAIGenerationFailed)
	}
	aiRequestsTotal.WithLabelValues("text", "success").Inc()

	c.logger.Debug("AI text response received",
		zap.Duration("duration", duration),
		zap.Int("total_tokens", resp.Usage.TotalTokens))

	return resp.Choices[0].Message.Content, nil
}

// GenerateImage генерирует одно изображение и возвращает URL.
func (c *openAIClient) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if err := c.checkKey("генерации изображений"); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	start := time.Now()
	resp, err := c.client.CreateImage(ctx, openaigo.ImageRequest{
		Model:          c.cfg.ImageModel,
		Prompt:         prompt,
		N:              1,
		Size:           openaigo.CreateImageSize1024x1024,
		ResponseFormat: openaigo.CreateImageResponseFormatURL,
	})
	aiRequestDuration.WithLabelValues("image").Observe(time.Since(start).Seconds())
	if err != nil {
		aiRequestsTotal.WithLabelValues("image", "error").Inc()
		return "", fmt.Errorf("%w: %v", ErrAIGenerationFailed, err)
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		aiRequestsTotal.WithLabelValues("image", "error").Inc()
		return "", fmt.Errorf("%w: API не вернул изображение", ErrAIGenerationFailed)
	}
	aiRequestsTotal.WithLabelValues("image", "success").Inc()
	return resp.Data[0].URL, nil
}

// GenerateSpeech синтезирует mp3-клип по тексту.
func (c *openAIClient) GenerateSpeech(ctx context.Context, text string) ([]byte, error) {
	if err := c.checkKey("озвучки"); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()

	start := time.Now()
	resp, err := c.client.CreateSpeech(ctx, openaigo.CreateSpeechRequest{
		Model: openaigo.SpeechModel(c.cfg.SpeechModel),
		Input: text,
		Voice: openaigo.SpeechVoice(c.cfg.SpeechVoice),
	})
	aiRequestDuration.WithLabelValues("speech").Observe(time.Since(start).Seconds())
	if err != nil {
		aiRequestsTotal.WithLabelValues("speech", "error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrAIGenerationFailed, err)
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		aiRequestsTotal.WithLabelValues("speech", "error").Inc()
		return nil, fmt.Errorf("%w: ошибка чтения аудио: %v", ErrAIGenerationFailed, err)
	}
	aiRequestsTotal.WithLabelValues("speech", "success").Inc()
	return data, nil
}

func (c *openAIClient) timeout() time.Duration {
	if c.cfg.Timeout > 0 {
		return c.cfg.Timeout
	}
	return 120 * time.Second
}
