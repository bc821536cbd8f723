package retry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"profession-server/internal/models"
)

// Config - параметры ретраев. Задержка фиксированная, без экспоненты.
type Config struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultConfig - 3 попытки с паузой в секунду.
func DefaultConfig() Config {
	return Config{MaxAttempts: 3, Delay: time.Second}
}

// Апстрим не отдает машиночитаемую таксономию ошибок, поэтому терминальные
// отказы распознаются по известным подстрокам в тексте ошибки.
var terminalMarkers = []string{
	"unsupported_country_region_territory",
	"country, region, or territory not supported",
	"region not supported",
}

// IsTerminal сообщает, что повторять попытку бессмысленно:
// региональное ограничение апстрима либо ошибка конфигурации/валидации.
func IsTerminal(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, models.ErrConfiguration) ||
		errors.Is(err, models.ErrValidation) ||
		errors.Is(err, models.ErrUpstreamTerminal) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range terminalMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// classify оборачивает ошибку в подходящий тип таксономии.
// Региональный отказ дополняется подсказкой по обходу.
func classify(err error, attempts int) error {
	if errors.Is(err, models.ErrConfiguration) || errors.Is(err, models.ErrValidation) {
		return err
	}
	if IsTerminal(err) {
		if errors.Is(err, models.ErrUpstreamTerminal) {
			return err
		}
		return fmt.Errorf("%w: сервис недоступен из текущего региона (%v); "+
			"задайте AI_BASE_URL на совместимый шлюз или используйте прокси",
			models.ErrUpstreamTerminal, err)
	}
	return fmt.Errorf("%w: после %d попыток: %v", models.ErrUpstreamTransient, attempts, err)
}

// Do выполняет op с ограниченным числом попыток и фиксированной задержкой
// между ними. Терминальные ошибки прерывают цикл сразу; остальные ретраятся
// до исчерпания MaxAttempts.
func Do[T any](ctx context.Context, log *zap.Logger, cfg Config, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if IsTerminal(err) {
			log.Warn("Terminal upstream error, giving up",
				zap.Int("attempt", attempt), zap.Error(err))
			return zero, classify(err, attempt)
		}

		log.Warn("Attempt failed",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", cfg.MaxAttempts),
			zap.Error(err))

		if attempt == cfg.MaxAttempts {
			break
		}

		select {
		case <-time.After(cfg.Delay):
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}

	return zero, classify(lastErr, cfg.MaxAttempts)
}
