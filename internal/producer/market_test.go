package producer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"profession-server/internal/clients"
	"profession-server/internal/mocks"
	"profession-server/internal/models"
	"profession-server/internal/producer"
)

func intPtr(v int) *int { return &v }

func vacancy(employer string, from, to *int) clients.Vacancy {
	v := clients.Vacancy{Name: "Бариста"}
	v.Employer.Name = employer
	if from != nil || to != nil {
		v.Salary = &clients.Salary{From: from, To: to, Currency: "RUR"}
	}
	return v
}

func TestMarketStatsProducer_CompetitionTiers(t *testing.T) {
	cases := []struct {
		name  string
		found int
		tier  string
	}{
		{"above high threshold", 1500, models.CompetitionHigh},
		{"above medium threshold", 700, models.CompetitionMedium},
		{"exactly at medium threshold", 500, models.CompetitionLow},
		{"low", 42, models.CompetitionLow},
		{"zero", 0, models.CompetitionLow},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mockHH := mocks.NewMockVacancySearchClient(t)
			mockHH.On("SearchVacancies", mock.Anything, "Бариста", models.LocationMoscow, 20).
				Return(&clients.VacancySearchResult{Found: tc.found}, nil).Once()

			p := producer.NewMarketStatsProducer(mockHH, nil)
			out := p.Produce(context.Background(), "Бариста", models.LocationMoscow, nil)

			require.False(t, out.Fallback)
			assert.Equal(t, tc.found, out.Value.Vacancies)
			assert.Equal(t, tc.tier, out.Value.Competition)
		})
	}
}

func TestMarketStatsProducer_AverageSalary(t *testing.T) {
	mockHH := mocks.NewMockVacancySearchClient(t)
	mockHH.On("SearchVacancies", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&clients.VacancySearchResult{
			Found: 10,
			Items: []clients.Vacancy{
				// Вилка: середина 75000
				vacancy("Кофемания", intPtr(60000), intPtr(90000)),
				// Только нижняя граница: 50000
				vacancy("Шоколадница", intPtr(50000), nil),
				// Без зарплаты - не участвует
				vacancy("Даблби", nil, nil),
			},
		}, nil).Once()

	p := producer.NewMarketStatsProducer(mockHH, nil)
	out := p.Produce(context.Background(), "Бариста", "", nil)

	require.False(t, out.Fallback)
	require.NotNil(t, out.Value.AverageSalary)
	// (75000 + 50000) / 2 = 62500, округление до тысячи -> 63000
	assert.Equal(t, 63000, *out.Value.AverageSalary)
}

func TestMarketStatsProducer_NoSalariesMeansNoAverage(t *testing.T) {
	mockHH := mocks.NewMockVacancySearchClient(t)
	mockHH.On("SearchVacancies", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&clients.VacancySearchResult{
			Found: 3,
			Items: []clients.Vacancy{vacancy("Кофемания", nil, nil)},
		}, nil).Once()

	p := producer.NewMarketStatsProducer(mockHH, nil)
	out := p.Produce(context.Background(), "Бариста", "", nil)

	require.False(t, out.Fallback)
	assert.Nil(t, out.Value.AverageSalary)
}

func TestMarketStatsProducer_TopEmployersUniqueFirstSeen(t *testing.T) {
	mockHH := mocks.NewMockVacancySearchClient(t)
	mockHH.On("SearchVacancies", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&clients.VacancySearchResult{
			Found: 100,
			Items: []clients.Vacancy{
				vacancy("Кофемания", nil, nil),
				vacancy("Шоколадница", nil, nil),
				vacancy("Кофемания", nil, nil), // дубликат
				vacancy("Даблби", nil, nil),
				vacancy("Surf Coffee", nil, nil),
				vacancy("Skuratov", nil, nil),
				vacancy("One More", nil, nil), // седьмой уникальный - за бортом
			},
		}, nil).Once()

	p := producer.NewMarketStatsProducer(mockHH, nil)
	out := p.Produce(context.Background(), "Бариста", "", nil)

	require.False(t, out.Fallback)
	assert.Equal(t,
		[]string{"Кофемания", "Шоколадница", "Даблби", "Surf Coffee", "Skuratov"},
		out.Value.TopEmployers)
}

func TestMarketStatsProducer_FetchFailureFallsBackToDefaults(t *testing.T) {
	mockHH := mocks.NewMockVacancySearchClient(t)
	mockHH.On("SearchVacancies", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("hh is down")).Once()

	p := producer.NewMarketStatsProducer(mockHH, nil)
	out := p.Produce(context.Background(), "Бариста", "", nil)

	assert.True(t, out.Fallback)
	assert.Equal(t, 0, out.Value.Vacancies)
	assert.Equal(t, models.CompetitionUnknown, out.Value.Competition)
	assert.Empty(t, out.Value.TopEmployers)
	assert.Nil(t, out.Value.AverageSalary)
}
