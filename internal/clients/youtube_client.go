package clients

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	youtube "google.golang.org/api/youtube/v3"

	"profession-server/internal/models"
)

// VideoSearchClient - клиент поиска коротких видео о профессии.
type VideoSearchClient interface {
	SearchShortVideos(ctx context.Context, query string, maxResults int64) ([]models.Video, error)
}

type youtubeClient struct {
	apiKey string
	logger *zap.Logger
}

// NewYouTubeClient создает клиент YouTube Data API.
// Отсутствие ключа проверяется в начале операции, а не при создании.
func NewYouTubeClient(apiKey string, logger *zap.Logger) VideoSearchClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &youtubeClient{apiKey: apiKey, logger: logger.Named("YouTubeClient")}
}

// SearchShortVideos ищет короткие видео по запросу.
func (c *youtubeClient) SearchShortVideos(ctx context.Context, query string, maxResults int64) ([]models.Video, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return nil, models.NewConfigurationError("поиска видео", "YOUTUBE_API_KEY")
	}

	svc, err := youtube.NewService(ctx, option.WithAPIKey(c.apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	call := svc.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		VideoDuration("short").
		MaxResults(maxResults)

	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("YouTube search failed: %w", err)
	}

	videos := make([]models.Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" || item.Snippet == nil {
			continue
		}
		videos = append(videos, models.Video{
			Title:   item.Snippet.Title,
			Channel: item.Snippet.ChannelTitle,
			URL:     "https://www.youtube.com/watch?v=" + item.Id.VideoId,
		})
	}

	c.logger.Debug("YouTube search completed",
		zap.String("query", query), zap.Int("results", len(videos)))
	return videos, nil
}
