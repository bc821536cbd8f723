package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"profession-server/internal/clients"
	"profession-server/internal/models"
	"profession-server/internal/retry"
)

const textSystemPrompt = `Ты - карьерный консультант. По названию профессии, уровню и типу компании составь профиль "один день из жизни" на русском языке.
Ответ - строго JSON-объект со следующими полями:
- "title": короткое название профессии;
- "description": 2-3 предложения о сути профессии;
- "schedule": ровно 6 записей рабочего дня по порядку, каждая {"time": "HH:MM", "activity": "..."};
- "stack": список рабочих инструментов и навыков (5-10 строк);
- "benefits": ровно 4 преимущества профессии;
- "careerPath": ровно 4 ступени роста, каждая {"position": "...", "period": "например 1-2 года", "description": "..."};
- "dialog": одна короткая рабочая сценка из 2-4 реплик, каждая {"speaker": "...", "text": "..."}.
Никакого текста вне JSON.`

// TextProducer - единственный продюсер, чей сбой фатален для запроса:
// все продюсеры второй стадии потребляют его stack и schedule.
type TextProducer struct {
	ai       clients.AIClient
	retryCfg retry.Config
	logger   *zap.Logger
}

// NewTextProducer создает текстовый продюсер первой стадии.
func NewTextProducer(ai clients.AIClient, retryCfg retry.Config, logger *zap.Logger) *TextProducer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TextProducer{ai: ai, retryCfg: retryCfg, logger: logger.Named("TextProducer")}
}

// Produce генерирует текстовое ядро профиля с ретраями и валидацией схемы.
func (p *TextProducer) Produce(ctx context.Context, req models.GenerationRequest, onProgress ProgressFunc) (*models.ProfessionContent, error) {
	if onProgress == nil {
		onProgress = NopProgress
	}
	onProgress("Генерируем описание профессии...", 10)

	userInput := fmt.Sprintf("Профессия: %s. Уровень: %s. Компания: %s.", req.Profession, req.Level, req.Company)
	if req.Specialization != "" {
		userInput += fmt.Sprintf(" Специализация: %s.", req.Specialization)
	}

	content, err := retry.Do(ctx, p.logger, p.retryCfg, func(ctx context.Context) (*models.ProfessionContent, error) {
		raw, err := p.ai.GenerateJSON(ctx, textSystemPrompt, userInput)
		if err != nil {
			return nil, err
		}
		return parseProfessionContent(raw, req.Profession)
	})
	if err != nil {
		return nil, err
	}

	onProgress("Описание профессии готово", 40)
	return content, nil
}

// extractJSON срезает markdown-ограждения, которыми модели иногда
// оборачивают JSON вопреки инструкциям.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSuffix(strings.TrimSpace(raw), "```")
	}
	return strings.TrimSpace(raw)
}

// parseProfessionContent разбирает и валидирует ответ модели на границе.
// Несовпадение схемы - ошибка (и повод для ретрая), а не доверие
// свободному JSON апстрима.
func parseProfessionContent(raw, profession string) (*models.ProfessionContent, error) {
	var content models.ProfessionContent
	if err := json.Unmarshal([]byte(extractJSON(raw)), &content); err != nil {
		return nil, fmt.Errorf("ответ модели не является валидным JSON: %w", err)
	}

	if strings.TrimSpace(content.Title) == "" {
		content.Title = profession
	}
	if strings.TrimSpace(content.Description) == "" {
		return nil, fmt.Errorf("в ответе модели отсутствует description")
	}
	if len(content.Schedule) < models.ScheduleLen {
		return nil, fmt.Errorf("ожидалось %d записей расписания, получено %d", models.ScheduleLen, len(content.Schedule))
	}
	content.Schedule = content.Schedule[:models.ScheduleLen]
	if len(content.Stack) == 0 {
		return nil, fmt.Errorf("в ответе модели пустой stack")
	}
	if len(content.Benefits) < models.BenefitsLen {
		return nil, fmt.Errorf("ожидалось %d преимуществ, получено %d", models.BenefitsLen, len(content.Benefits))
	}
	content.Benefits = content.Benefits[:models.BenefitsLen]
	if len(content.CareerPath) < models.CareerPathLen {
		return nil, fmt.Errorf("ожидалось %d ступеней карьерного пути, получено %d", models.CareerPathLen, len(content.CareerPath))
	}
	content.CareerPath = content.CareerPath[:models.CareerPathLen]
	if len(content.Dialog) == 0 {
		return nil, fmt.Errorf("в ответе модели отсутствует dialog")
	}

	return &content, nil
}
