package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"profession-server/internal/clients"
	"profession-server/internal/models"
)

const (
	careerPathsMin = 4
	careerPathsMax = 6
)

const careerSystemPrompt = `Ты - карьерный консультант. По профессии и набору навыков предложи ветвящееся дерево развития карьеры на русском языке.
Ответ - строго JSON-объект вида {"paths": [...]}, где paths - от 4 до 6 направлений роста, каждое {"title": "...", "description": "1-2 предложения", "skills": ["ключевые навыки для перехода"]}.
Направления должны быть разными по характеру: вертикальный рост, смежные роли, экспертный трек, собственное дело.
Никакого текста вне JSON.`

// CareerTreeProducer строит дерево развития в два внутренних шага:
// сначала модель предлагает 4-6 направлений, затем каждое направление
// обогащается живым числом вакансий. Полный отказ первичного вызова
// дает nil-дерево - артефакт собирается без него.
type CareerTreeProducer struct {
	ai          clients.AIClient
	hh          clients.VacancySearchClient
	enrichDelay time.Duration
	logger      *zap.Logger
}

// NewCareerTreeProducer создает продюсер карьерного дерева.
func NewCareerTreeProducer(ai clients.AIClient, hh clients.VacancySearchClient, enrichDelay time.Duration, logger *zap.Logger) *CareerTreeProducer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CareerTreeProducer{ai: ai, hh: hh, enrichDelay: enrichDelay, logger: logger.Named("CareerTreeProducer")}
}

// Produce строит и обогащает дерево развития.
func (p *CareerTreeProducer) Produce(ctx context.Context, profession, location string, stack []string, onProgress ProgressFunc) Outcome[*models.CareerTree] {
	if onProgress == nil {
		onProgress = NopProgress
	}
	onProgress("Строим дерево развития...", 55)

	userInput := fmt.Sprintf("Профессия: %s. Навыки: %s.", profession, strings.Join(stack, ", "))
	raw, err := p.ai.GenerateJSON(ctx, careerSystemPrompt, userInput)
	if err != nil {
		return FallbackOutcome[*models.CareerTree](nil, err.Error())
	}

	tree, err := parseCareerTree(raw)
	if err != nil {
		return FallbackOutcome[*models.CareerTree](nil, err.Error())
	}

	p.enrichVacancies(ctx, tree, location)

	onProgress("Дерево развития готово", 85)
	return Success(tree)
}

func parseCareerTree(raw string) (*models.CareerTree, error) {
	var tree models.CareerTree
	if err := json.Unmarshal([]byte(extractJSON(raw)), &tree); err != nil {
		return nil, fmt.Errorf("ответ модели не является валидным JSON: %w", err)
	}
	if len(tree.Paths) < careerPathsMin {
		return nil, fmt.Errorf("ожидалось не менее %d направлений, получено %d", careerPathsMin, len(tree.Paths))
	}
	if len(tree.Paths) > careerPathsMax {
		tree.Paths = tree.Paths[:careerPathsMax]
	}
	return &tree, nil
}

// enrichVacancies обогащает каждую ветку живым числом вакансий.
// Запуски разнесены фиксированной паузой (локальный рейт-лимит),
// результаты пишутся по исходному индексу, а не в порядке завершения.
// Ветка, чье обогащение не удалось, сохраняет прежний счетчик.
func (p *CareerTreeProducer) enrichVacancies(ctx context.Context, tree *models.CareerTree, location string) {
	var wg sync.WaitGroup
	for i := range tree.Paths {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			if p.enrichDelay > 0 && idx > 0 {
				select {
				case <-time.After(time.Duration(idx) * p.enrichDelay):
				case <-ctx.Done():
					return
				}
			}

			count, err := p.hh.CountVacancies(ctx, tree.Paths[idx].Title, location)
			if err != nil {
				p.logger.Warn("Career path enrichment failed, keeping prior count",
					zap.String("path", tree.Paths[idx].Title), zap.Error(err))
				return
			}
			tree.Paths[idx].Vacancies = count
		}(i)
	}
	wg.Wait()
}
