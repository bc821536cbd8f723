package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"profession-server/internal/cache"
	"profession-server/internal/models"
	"profession-server/internal/producer"
)

var (
	generationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profession_generations_total",
			Help: "Total number of generation requests by mode and status.",
		},
		[]string{"mode", "status"}, // mode: full, fast, enrich; status: success, error, cached
	)
	cacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "profession_cache_lookups_total",
			Help: "Total number of artifact cache lookups.",
		},
		[]string{"result"}, // hit, miss
	)
	generationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "profession_generation_duration_seconds",
		Help:    "Duration of full pipeline runs.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 8),
	})
)

// Options управляют режимом пайплайна.
type Options struct {
	// Fast - быстрый частичный профиль: стадия 1 + первая иллюстрация +
	// первая страница статистики рынка; isPartial=true.
	Fast bool
	// WithAudio включает третью стадию (озвучку расписания).
	WithAudio bool
	// Force пропускает cache-hit: проход обогащения перезаписывает
	// существующую запись под тем же ключом.
	Force bool
}

// GenerationService - оркестратор пайплайна генерации профиля профессии.
// Последовательность стадий: кеш -> текст (ретраи, фатально) ->
// конкурентный fan-out остальных продюсеров (settle-all) ->
// опциональная озвучка -> слияние -> запись в кеш.
type GenerationService struct {
	store        cache.Store
	text         *producer.TextProducer
	images       *producer.ImageBatchProducer
	market       *producer.MarketStatsProducer
	videos       *producer.VideoSearchProducer
	career       *producer.CareerTreeProducer
	audio        *producer.AudioProducer
	audioEnabled bool
	logger       *zap.Logger

	// Реестр in-flight генераций: второй конкурентный запрос того же ключа
	// ждет результат первого вместо дублирования работы.
	inflight singleflight.Group
}

// NewGenerationService создает оркестратор. Композиция клиентов и продюсеров
// происходит в main - сервис не владеет глобальным состоянием.
func NewGenerationService(
	store cache.Store,
	text *producer.TextProducer,
	images *producer.ImageBatchProducer,
	market *producer.MarketStatsProducer,
	videos *producer.VideoSearchProducer,
	career *producer.CareerTreeProducer,
	audio *producer.AudioProducer,
	audioEnabled bool,
	logger *zap.Logger,
) *GenerationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GenerationService{
		store:        store,
		text:         text,
		images:       images,
		market:       market,
		videos:       videos,
		career:       career,
		audio:        audio,
		audioEnabled: audioEnabled,
		logger:       logger.Named("GenerationService"),
	}
}

// DeriveKey возвращает ключ кеша для запроса.
func (s *GenerationService) DeriveKey(req models.GenerationRequest) string {
	return cache.DeriveKey(req)
}

// GetArtifact читает готовый артефакт по ключу.
func (s *GenerationService) GetArtifact(ctx context.Context, key string) (*models.Profession, error) {
	return s.store.Read(ctx, key)
}

// Generate выполняет пайплайн для запроса. Возвращает артефакт и признак
// того, что он взят из кеша. Промежуточные события прогресса идут в
// onProgress; терминальное событие публикует вызывающая сторона.
func (s *GenerationService) Generate(ctx context.Context, req models.GenerationRequest, opts Options, onProgress func(string, int)) (*models.Profession, bool, error) {
	key := cache.DeriveKey(req)
	log := s.logger.With(zap.String("key", key), zap.String("profession", req.Profession))
	rep := NewReporter(onProgress)

	if !opts.Force {
		rep.Report("Проверяем кеш...", 2)
		artifact, err := s.store.Read(ctx, key)
		if err == nil {
			cacheLookups.WithLabelValues("hit").Inc()
			log.Info("Cache hit")

			// Озвучка запрошена, но в кеше ее нет - проход обогащения
			// перезаписывает ключ (read-modify-write)
			if opts.WithAudio && s.audioEnabled && len(artifact.Audio) == 0 && len(artifact.Schedule) > 0 {
				if enriched, enrichErr := s.EnrichAudio(ctx, key, rep.Report); enrichErr == nil {
					return enriched, true, nil
				}
				log.Warn("Audio enrichment of cached artifact failed, returning as-is")
			}

			generationsTotal.WithLabelValues(mode(opts), "cached").Inc()
			return artifact, true, nil
		}
		if !errors.Is(err, models.ErrNotFound) {
			return nil, false, fmt.Errorf("ошибка чтения кеша: %w", err)
		}
		cacheLookups.WithLabelValues("miss").Inc()
	}

	result, err, shared := s.inflight.Do(key, func() (interface{}, error) {
		return s.runPipeline(ctx, key, req, opts, rep)
	})
	if err != nil {
		generationsTotal.WithLabelValues(mode(opts), "error").Inc()
		return nil, false, err
	}
	if shared {
		log.Info("Joined in-flight generation for the same key")
	}

	generationsTotal.WithLabelValues(mode(opts), "success").Inc()
	return result.(*models.Profession), false, nil
}

func mode(opts Options) string {
	switch {
	case opts.Force:
		return "enrich"
	case opts.Fast:
		return "fast"
	default:
		return "full"
	}
}

// runPipeline - тело генерации на cache miss.
func (s *GenerationService) runPipeline(ctx context.Context, key string, req models.GenerationRequest, opts Options, rep *Reporter) (*models.Profession, error) {
	log := s.logger.With(zap.String("key", key))
	start := time.Now()

	// Стадия 1: текстовое ядро. Единственная фатальная стадия -
	// без stack и schedule остальным продюсерам нечего потреблять.
	content, err := s.text.Produce(ctx, req, rep.Report)
	if err != nil {
		log.Error("Text stage failed, aborting request", zap.Error(err))
		return nil, err
	}

	imageInput := producer.ImageInput{
		Profession: req.Profession,
		Company:    req.Company,
		Stack:      content.Stack,
	}

	var (
		imagesOut producer.Outcome[[]string]
		marketOut producer.Outcome[models.MarketStats]
		videosOut producer.Outcome[[]models.Video]
		careerOut producer.Outcome[*models.CareerTree]
	)

	if opts.Fast {
		// Быстрый режим: только первая иллюстрация и статистика рынка
		producer.Settle(
			func() {
				imagesOut = producer.Guarded(log, "images", []string{}, func() (producer.Outcome[[]string], error) {
					return s.images.ProduceOne(ctx, imageInput, rep.Report), nil
				})
			},
			func() {
				marketOut = producer.Guarded(log, "market", producer.EmptyMarketStats(), func() (producer.Outcome[models.MarketStats], error) {
					return s.market.Produce(ctx, req.Profession, req.Location, rep.Report), nil
				})
			},
		)
		videosOut = producer.Success([]models.Video{})
		careerOut = producer.Success[*models.CareerTree](nil)
	} else {
		// Стадия 2: полный fan-out, settle-all. Сбой любого продюсера
		// деградирует в его значение по умолчанию и не блокирует остальных.
		producer.Settle(
			func() {
				imagesOut = producer.Guarded(log, "images", []string{}, func() (producer.Outcome[[]string], error) {
					return s.images.Produce(ctx, imageInput, rep.Report), nil
				})
			},
			func() {
				marketOut = producer.Guarded(log, "market", producer.EmptyMarketStats(), func() (producer.Outcome[models.MarketStats], error) {
					return s.market.Produce(ctx, req.Profession, req.Location, rep.Report), nil
				})
			},
			func() {
				videosOut = producer.Guarded(log, "videos", []models.Video{}, func() (producer.Outcome[[]models.Video], error) {
					return s.videos.Produce(ctx, req.Profession, rep.Report), nil
				})
			},
			func() {
				careerOut = producer.Guarded[*models.CareerTree](log, "career", nil, func() (producer.Outcome[*models.CareerTree], error) {
					return s.career.Produce(ctx, req.Profession, req.Location, content.Stack, rep.Report), nil
				})
			},
		)
	}

	artifact := &models.Profession{
		Profession:  req.Profession,
		Title:       content.Title,
		Description: content.Description,
		Level:       req.Level,
		Company:     req.Company,
		Schedule:    content.Schedule,
		Stack:       content.Stack,
		Benefits:    content.Benefits,
		CareerPath:  content.CareerPath,
		CareerTree:  careerOut.Value,
		Dialog:      content.Dialog,
		Images:      imagesOut.Value,
		Market:      marketOut.Value,
		Videos:      videosOut.Value,
		IsPartial:   opts.Fast,
		GeneratedAt: time.Now().UTC(),
		Modifiers:   req.ModifiersOf(),
	}

	// Стадия 3 (опциональная): озвучка расписания
	if opts.WithAudio && !opts.Fast {
		if s.audioEnabled && s.audio != nil {
			audioOut := producer.Guarded(log, "audio", []models.AudioClip{}, func() (producer.Outcome[[]models.AudioClip], error) {
				return s.audio.Produce(ctx, key, artifact.Schedule, rep.Report), nil
			})
			artifact.Audio = audioOut.Value
		} else {
			log.Warn("Audio requested but the feature is disabled")
		}
	}

	rep.Report("Сохраняем результат...", 99)
	if err := s.store.Write(ctx, key, artifact); err != nil {
		// Сбой записи кеша фатален: клиент не должен получить артефакт,
		// который невозможно потом прочитать по ключу
		log.Error("Cache write failed", zap.Error(err))
		return nil, err
	}

	generationDuration.Observe(time.Since(start).Seconds())
	log.Info("Artifact generated",
		zap.Bool("partial", artifact.IsPartial),
		zap.Duration("duration", time.Since(start)))
	return artifact, nil
}

// EnrichAudio выполняет проход озвучки над уже закешированным артефактом:
// читает запись, генерирует клипы и перезаписывает тот же ключ.
// Отсутствие ключа - ErrNotFound; отсутствие расписания - ErrValidation
// (клиентская ошибка, отличная от not-found).
func (s *GenerationService) EnrichAudio(ctx context.Context, key string, onProgress func(string, int)) (*models.Profession, error) {
	if !s.audioEnabled || s.audio == nil {
		return nil, models.NewConfigurationError("озвучки", "AUDIO_ENABLED")
	}

	artifact, err := s.store.Read(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(artifact.Schedule) == 0 {
		return nil, fmt.Errorf("%w: у артефакта %s нет расписания для озвучки", models.ErrValidation, key)
	}

	rep := NewReporter(onProgress)
	audioOut := producer.Guarded(s.logger, "audio", []models.AudioClip{}, func() (producer.Outcome[[]models.AudioClip], error) {
		return s.audio.Produce(ctx, key, artifact.Schedule, rep.Report), nil
	})
	artifact.Audio = audioOut.Value

	if err := s.store.Write(ctx, key, artifact); err != nil {
		return nil, err
	}
	generationsTotal.WithLabelValues("enrich", "success").Inc()
	return artifact, nil
}
