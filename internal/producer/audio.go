package producer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"profession-server/internal/clients"
	"profession-server/internal/models"
)

// AudioProducer озвучивает записи расписания по одной, с фиксированной
// паузой между TTS-запросами, чтобы не упираться в лимиты апстрима.
// Сбой отдельной записи логируется и пропускается, батч не ретраится.
type AudioProducer struct {
	ai        clients.AIClient
	mediaDir  string
	callDelay time.Duration
	logger    *zap.Logger
}

// NewAudioProducer создает продюсер озвучки расписания.
func NewAudioProducer(ai clients.AIClient, mediaDir string, callDelay time.Duration, logger *zap.Logger) *AudioProducer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AudioProducer{ai: ai, mediaDir: mediaDir, callDelay: callDelay, logger: logger.Named("AudioProducer")}
}

// Produce генерирует по клипу на запись расписания последовательно.
// Клипы сохраняются в mediaDir/audio и отдаются статикой по /media/audio.
func (p *AudioProducer) Produce(ctx context.Context, key string, schedule []models.ScheduleEntry, onProgress ProgressFunc) Outcome[[]models.AudioClip] {
	if onProgress == nil {
		onProgress = NopProgress
	}
	onProgress("Озвучиваем расписание...", 90)

	audioDir := filepath.Join(p.mediaDir, "audio")
	if err := os.MkdirAll(audioDir, 0o755); err != nil {
		return FallbackOutcome([]models.AudioClip{}, fmt.Sprintf("ошибка создания директории медиа: %v", err))
	}

	clips := make([]models.AudioClip, 0, len(schedule))
	for i, entry := range schedule {
		if i > 0 && p.callDelay > 0 {
			select {
			case <-time.After(p.callDelay):
			case <-ctx.Done():
				return FallbackOutcome(clips, ctx.Err().Error())
			}
		}

		text := fmt.Sprintf("%s. %s", entry.Time, entry.Activity)
		data, err := p.ai.GenerateSpeech(ctx, text)
		if err != nil {
			// Пропускаем запись, остальные клипы все равно генерируем
			p.logger.Warn("Schedule entry voice-over failed, skipping",
				zap.Int("index", i), zap.Error(err))
			continue
		}

		filename := fmt.Sprintf("%s-%d.mp3", key, i)
		if err := os.WriteFile(filepath.Join(audioDir, filename), data, 0o644); err != nil {
			p.logger.Warn("Failed to store audio clip, skipping",
				zap.Int("index", i), zap.Error(err))
			continue
		}

		clips = append(clips, models.AudioClip{Index: i, URL: "/media/audio/" + filename})
	}

	if len(clips) == 0 {
		return FallbackOutcome(clips, "ни один клип не был сгенерирован")
	}

	onProgress("Озвучка готова", 97)
	return Success(clips)
}
