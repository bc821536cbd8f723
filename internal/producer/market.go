package producer

import (
	"context"
	"math"

	"go.uber.org/zap"

	"profession-server/internal/clients"
	"profession-server/internal/models"
)

const (
	marketPageSize   = 20
	topEmployersMax  = 5
	competitionHigh  = 1000
	competitionMedum = 500
)

// MarketStatsProducer собирает статистику рынка вакансий по профессии.
// Любой сбой выдачи разрешается в нулевые значения, запрос не падает.
type MarketStatsProducer struct {
	hh     clients.VacancySearchClient
	logger *zap.Logger
}

// NewMarketStatsProducer создает продюсер статистики рынка.
func NewMarketStatsProducer(hh clients.VacancySearchClient, logger *zap.Logger) *MarketStatsProducer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MarketStatsProducer{hh: hh, logger: logger.Named("MarketStatsProducer")}
}

// EmptyMarketStats - документированное значение по умолчанию.
func EmptyMarketStats() models.MarketStats {
	return models.MarketStats{Competition: models.CompetitionUnknown}
}

// Produce запрашивает первую страницу выдачи и выводит из нее метрики.
func (p *MarketStatsProducer) Produce(ctx context.Context, profession, location string, onProgress ProgressFunc) Outcome[models.MarketStats] {
	if onProgress == nil {
		onProgress = NopProgress
	}
	onProgress("Изучаем рынок вакансий...", 45)

	result, err := p.hh.SearchVacancies(ctx, profession, location, marketPageSize)
	if err != nil {
		return FallbackOutcome(EmptyMarketStats(), err.Error())
	}

	stats := models.MarketStats{
		Vacancies:    result.Found,
		Competition:  competitionTier(result.Found),
		TopEmployers: topEmployers(result.Items),
	}
	if avg := averageSalary(result.Items); avg > 0 {
		stats.AverageSalary = &avg
	}

	p.logger.Debug("Market stats collected",
		zap.Int("vacancies", stats.Vacancies),
		zap.String("competition", stats.Competition))

	onProgress("Статистика рынка собрана", 75)
	return Success(stats)
}

// competitionTier - пороговая таблица уровня конкуренции.
func competitionTier(found int) string {
	switch {
	case found > competitionHigh:
		return models.CompetitionHigh
	case found > competitionMedum:
		return models.CompetitionMedium
	default:
		return models.CompetitionLow
	}
}

// averageSalary усредняет доступные вилки: середина при обеих границах,
// иначе существующая граница. Результат округляется до тысячи.
func averageSalary(items []clients.Vacancy) int {
	var sum, count float64
	for _, v := range items {
		if v.Salary == nil {
			continue
		}
		switch {
		case v.Salary.From != nil && v.Salary.To != nil:
			sum += float64(*v.Salary.From+*v.Salary.To) / 2
		case v.Salary.From != nil:
			sum += float64(*v.Salary.From)
		case v.Salary.To != nil:
			sum += float64(*v.Salary.To)
		default:
			continue
		}
		count++
	}
	if count == 0 {
		return 0
	}
	return int(math.Round(sum/count/1000) * 1000)
}

// topEmployers - первые 5 уникальных работодателей в порядке появления.
func topEmployers(items []clients.Vacancy) []string {
	seen := make(map[string]struct{}, topEmployersMax)
	var names []string
	for _, v := range items {
		name := v.Employer.Name
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
		if len(names) == topEmployersMax {
			break
		}
	}
	return names
}
