package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"profession-server/internal/models"
	"profession-server/internal/service"
)

const enrichmentTimeout = 10 * time.Minute

// StreamGenerate - POST /api/generate/stream.
// Гонит поток NDJSON-кадров прогресса; терминальный кадр несет либо
// слитый артефакт с done=true и cached, либо {error, done:true}.
func (h *Handler) StreamGenerate(c *gin.Context) {
	var req models.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIError{Error: "некорректное тело запроса: " + err.Error()})
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		// Ошибка валидации поднимается до первого кадра
		c.JSON(http.StatusBadRequest, APIError{Error: err.Error()})
		return
	}

	log := h.logger.With(zap.String("profession", req.Profession))

	c.Header("Content-Type", "application/x-ndjson; charset=utf-8")
	c.Header("Cache-Control", "no-cache")
	c.Status(http.StatusOK)

	enc := json.NewEncoder(c.Writer)
	var mu sync.Mutex
	emit := func(v interface{}) {
		mu.Lock()
		defer mu.Unlock()
		if err := enc.Encode(v); err != nil {
			log.Debug("Failed to write progress frame", zap.Error(err))
			return
		}
		c.Writer.Flush()
	}

	opts := service.Options{WithAudio: req.WithAudio}
	artifact, cached, err := h.svc.Generate(c.Request.Context(), req, opts, func(message string, percent int) {
		emit(progressFrame{Message: message, Progress: percent})
	})
	if err != nil {
		log.Error("Generation failed", zap.Error(err))
		emit(errorFrame{Error: err.Error(), Done: true})
		return
	}

	frame, err := finalFrame(artifact, cached)
	if err != nil {
		emit(errorFrame{Error: "ошибка сериализации артефакта", Done: true})
		return
	}
	emit(frame)
}

// FastGenerate - POST /api/generate/fast.
// Возвращает частичный артефакт (стадия 1 + первая иллюстрация +
// статистика рынка) сразу, а полное обогащение запускает в фоне:
// оно перезапишет запись кеша под тем же ключом.
func (h *Handler) FastGenerate(c *gin.Context) {
	var req models.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIError{Error: "некорректное тело запроса: " + err.Error()})
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, APIError{Error: err.Error()})
		return
	}

	artifact, cached, err := h.svc.Generate(c.Request.Context(), req, service.Options{Fast: true}, nil)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if artifact.IsPartial {
		h.startFullEnrichment(req)
	}

	c.JSON(http.StatusOK, gin.H{
		"artifact": artifact,
		"cached":   cached,
		"key":      h.svc.DeriveKey(req),
	})
}

// startFullEnrichment запускает фоновой полный прогон пайплайна,
// перезаписывающий частичную запись. Повторный запуск для ключа,
// по которому уже идет обогащение, не создается.
func (h *Handler) startFullEnrichment(req models.GenerationRequest) {
	key := h.svc.DeriveKey(req)
	task, ok := h.registry.Begin(key)
	if !ok {
		return
	}

	log := h.logger.With(zap.String("key", key), zap.String("task_id", task.ID.String()))
	log.Info("Starting background full enrichment")

	go func() {
		// Фоновая работа не привязана к контексту исходного запроса:
		// отключение клиента не отменяет обогащение
		ctx, cancel := context.WithTimeout(context.Background(), enrichmentTimeout)
		defer cancel()

		_, _, err := h.svc.Generate(ctx, req, service.Options{Force: true, WithAudio: req.WithAudio}, func(message string, percent int) {
			h.registry.Update(key, percent, message)
		})
		if err != nil {
			log.Warn("Background enrichment failed", zap.Error(err))
			h.registry.Fail(key, err)
			return
		}
		h.registry.Complete(key)
		log.Info("Background enrichment completed")
	}()
}

// GetProfession - GET /api/professions/:key.
func (h *Handler) GetProfession(c *gin.Context) {
	key := c.Param("key")
	artifact, err := h.svc.GetArtifact(c.Request.Context(), key)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, artifact)
}

// EnrichAudio - POST /api/professions/:key/audio.
// Читает закешированный артефакт, озвучивает расписание и перезаписывает
// тот же ключ. Отсутствие артефакта - 404; отсутствие расписания - 400.
func (h *Handler) EnrichAudio(c *gin.Context) {
	key := c.Param("key")
	artifact, err := h.svc.EnrichAudio(c.Request.Context(), key, nil)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, artifact)
}

// GetGenerationStatus - GET /api/generate/status/:key.
func (h *Handler) GetGenerationStatus(c *gin.Context) {
	key := c.Param("key")
	task, ok := h.registry.Get(key)
	if !ok {
		c.JSON(http.StatusNotFound, APIError{Error: "нет фоновой задачи для ключа " + key})
		return
	}
	c.JSON(http.StatusOK, task)
}

// respondError переводит таксономию ошибок в HTTP-коды.
func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, APIError{Error: err.Error()})
	case errors.Is(err, models.ErrValidation):
		c.JSON(http.StatusBadRequest, APIError{Error: err.Error()})
	case errors.Is(err, models.ErrConfiguration):
		c.JSON(http.StatusServiceUnavailable, APIError{Error: err.Error()})
	case errors.Is(err, models.ErrUpstreamTerminal), errors.Is(err, models.ErrUpstreamTransient):
		c.JSON(http.StatusBadGateway, APIError{Error: err.Error()})
	default:
		h.logger.Error("Unhandled error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, APIError{Error: "внутренняя ошибка сервера"})
	}
}
