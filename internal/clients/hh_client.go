package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"profession-server/internal/models"
)

// Коды регионов HeadHunter.
const (
	hhAreaMoscow = "1"
	hhAreaSPB    = "2"
	hhAreaRussia = "113"
)

// Salary - зарплатная вилка вакансии; любая из границ может отсутствовать.
type Salary struct {
	From     *int   `json:"from"`
	To       *int   `json:"to"`
	Currency string `json:"currency"`
}

// Vacancy - вакансия из поисковой выдачи.
type Vacancy struct {
	Name     string `json:"name"`
	Employer struct {
		Name string `json:"name"`
	} `json:"employer"`
	Salary *Salary `json:"salary"`
}

// VacancySearchResult - страница поисковой выдачи.
type VacancySearchResult struct {
	Found int       `json:"found"`
	Items []Vacancy `json:"items"`
}

// VacancySearchClient - клиент поиска вакансий.
type VacancySearchClient interface {
	// SearchVacancies ищет вакансии по тексту и локации, возвращая первую страницу.
	SearchVacancies(ctx context.Context, text, location string, perPage int) (*VacancySearchResult, error)
	// CountVacancies возвращает только общее число найденных вакансий.
	CountVacancies(ctx context.Context, text, location string) (int, error)
}

type hhClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewHHClient создает клиент HeadHunter API.
func NewHHClient(baseURL string, timeout time.Duration, logger *zap.Logger) (VacancySearchClient, error) {
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL for HH client: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &hhClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Named("HHClient"),
	}, nil
}

// SearchVacancies выполняет GET /vacancies с фильтром по региону.
func (c *hhClient) SearchVacancies(ctx context.Context, text, location string, perPage int) (*VacancySearchResult, error) {
	searchURL := fmt.Sprintf("%s/vacancies", c.baseURL)

	params := url.Values{}
	params.Set("text", text)
	params.Set("per_page", strconv.Itoa(perPage))
	switch location {
	case models.LocationMoscow:
		params.Set("area", hhAreaMoscow)
	case models.LocationSPB:
		params.Set("area", hhAreaSPB)
	case models.LocationRemote:
		params.Set("area", hhAreaRussia)
		params.Set("schedule", "remote")
	default:
		params.Set("area", hhAreaRussia)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create HH request: %w", err)
	}
	// HH отклоняет запросы без User-Agent
	req.Header.Set("User-Agent", "profession-server/1.0")

	log := c.logger.With(zap.String("text", text), zap.String("location", location))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute HH request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Warn("HH API returned non-OK status", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("HH API returned status %d", resp.StatusCode)
	}

	var result VacancySearchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode HH response: %w", err)
	}

	log.Debug("HH search completed", zap.Int("found", result.Found), zap.Int("items", len(result.Items)))
	return &result, nil
}

// CountVacancies - облегченный вариант поиска только ради счетчика found.
func (c *hhClient) CountVacancies(ctx context.Context, text, location string) (int, error) {
	result, err := c.SearchVacancies(ctx, text, location, 0)
	if err != nil {
		return 0, err
	}
	return result.Found, nil
}
