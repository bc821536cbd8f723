package producer

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"profession-server/internal/clients"
	"profession-server/internal/models"
)

// VideoSearchProducer ищет короткие видео о профессии.
// Не ретраится: видео некритичны, при любом сбое (включая отсутствие
// ключа API) возвращается пустой список.
type VideoSearchProducer struct {
	yt     clients.VideoSearchClient
	logger *zap.Logger
}

// NewVideoSearchProducer создает продюсер поиска видео.
func NewVideoSearchProducer(yt clients.VideoSearchClient, logger *zap.Logger) *VideoSearchProducer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VideoSearchProducer{yt: yt, logger: logger.Named("VideoSearchProducer")}
}

// Produce возвращает до 6 коротких видео.
func (p *VideoSearchProducer) Produce(ctx context.Context, profession string, onProgress ProgressFunc) Outcome[[]models.Video] {
	if onProgress == nil {
		onProgress = NopProgress
	}
	onProgress("Подбираем видео о профессии...", 50)

	query := fmt.Sprintf("профессия %s день из жизни", profession)
	videos, err := p.yt.SearchShortVideos(ctx, query, models.MaxVideos)
	if err != nil {
		return FallbackOutcome([]models.Video{}, err.Error())
	}
	if len(videos) > models.MaxVideos {
		videos = videos[:models.MaxVideos]
	}

	onProgress("Видео подобраны", 80)
	return Success(videos)
}
