package producer

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"profession-server/internal/clients"
	"profession-server/internal/models"
)

const (
	imageAttempts   = 2
	imageRetryDelay = 500 * time.Millisecond
)

// ImageInput - входные данные батча изображений (из результата первой стадии).
type ImageInput struct {
	Profession string
	Company    string
	Stack      []string
}

// ImageBatchProducer генерирует фиксированный батч из 4 изображений.
// Каждый вызов ретраится и деградирует в плейсхолдер независимо,
// поэтому батч целиком не падает никогда.
type ImageBatchProducer struct {
	ai     clients.AIClient
	logger *zap.Logger
}

// NewImageBatchProducer создает продюсер батча изображений.
func NewImageBatchProducer(ai clients.AIClient, logger *zap.Logger) *ImageBatchProducer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImageBatchProducer{ai: ai, logger: logger.Named("ImageBatchProducer")}
}

// imagePrompts возвращает 4 сюжета для иллюстраций профиля.
func imagePrompts(in ImageInput) [models.MaxImages]string {
	tools := strings.Join(in.Stack, ", ")
	return [models.MaxImages]string{
		fmt.Sprintf("Рабочее место специалиста: %s в компании типа %q, инструменты: %s. Фотореалистично, дневной свет.", in.Profession, in.Company, tools),
		fmt.Sprintf("Специалист %s за работой, середина рабочего дня. Фотореалистично.", in.Profession),
		fmt.Sprintf("Командная встреча в офисе, где работает %s. Фотореалистично.", in.Profession),
		fmt.Sprintf("Результат труда специалиста %s крупным планом. Фотореалистично.", in.Profession),
	}
}

func placeholderURL(profession string, index int) string {
	return fmt.Sprintf("https://placehold.co/1024x1024?text=%s",
		url.QueryEscape(fmt.Sprintf("%s %d", profession, index+1)))
}

// Produce запускает 4 независимых запроса параллельно и восстанавливает
// порядок результатов по исходному индексу, а не по порядку завершения.
func (p *ImageBatchProducer) Produce(ctx context.Context, in ImageInput, onProgress ProgressFunc) Outcome[[]string] {
	if onProgress == nil {
		onProgress = NopProgress
	}
	onProgress("Рисуем иллюстрации...", 45)

	prompts := imagePrompts(in)
	results := make([]string, len(prompts))
	fallbacks := 0

	var wg sync.WaitGroup
	var mu sync.Mutex
	for i, prompt := range prompts {
		wg.Add(1)
		go func(idx int, prompt string) {
			defer wg.Done()
			imgURL, err := p.generateOne(ctx, prompt)
			if err != nil {
				p.logger.Warn("Image generation fell back to placeholder",
					zap.Int("index", idx), zap.Error(err))
				imgURL = placeholderURL(in.Profession, idx)
				mu.Lock()
				fallbacks++
				mu.Unlock()
			}
			results[idx] = imgURL
		}(i, prompt)
	}
	wg.Wait()

	onProgress("Иллюстрации готовы", 70)

	if fallbacks == len(prompts) {
		return FallbackOutcome(results, "все изображения заменены плейсхолдерами")
	}
	return Success(results)
}

// ProduceOne генерирует только первую иллюстрацию - для быстрого
// частичного профиля. Семантика деградации та же, что у полного батча.
func (p *ImageBatchProducer) ProduceOne(ctx context.Context, in ImageInput, onProgress ProgressFunc) Outcome[[]string] {
	if onProgress == nil {
		onProgress = NopProgress
	}
	onProgress("Рисуем иллюстрацию...", 45)

	prompts := imagePrompts(in)
	imgURL, err := p.generateOne(ctx, prompts[0])
	if err != nil {
		p.logger.Warn("Image generation fell back to placeholder", zap.Error(err))
		return FallbackOutcome([]string{placeholderURL(in.Profession, 0)}, err.Error())
	}

	onProgress("Иллюстрация готова", 70)
	return Success([]string{imgURL})
}

// generateOne - одиночный вызов с двумя попытками и фиксированной паузой.
func (p *ImageBatchProducer) generateOne(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= imageAttempts; attempt++ {
		imgURL, err := p.ai.GenerateImage(ctx, prompt)
		if err == nil {
			return imgURL, nil
		}
		lastErr = err
		if attempt < imageAttempts {
			select {
			case <-time.After(imageRetryDelay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}
	return "", lastErr
}
