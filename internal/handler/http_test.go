package handler_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"profession-server/internal/cache"
	"profession-server/internal/clients"
	"profession-server/internal/handler"
	"profession-server/internal/mocks"
	"profession-server/internal/models"
	"profession-server/internal/producer"
	"profession-server/internal/retry"
	"profession-server/internal/service"
	"profession-server/internal/tasks"
)

type httpEnv struct {
	router   http.Handler
	store    *cache.FileStore
	registry *tasks.Registry
	mockAI   *mocks.MockAIClient
	mockHH   *mocks.MockVacancySearchClient
	mockYT   *mocks.MockVideoSearchClient
}

func newHTTPEnv(t *testing.T, audioEnabled bool) *httpEnv {
	t.Helper()

	store := cache.NewFileStore(t.TempDir(), nil)
	mockAI := mocks.NewMockAIClient(t)
	mockHH := mocks.NewMockVacancySearchClient(t)
	mockYT := mocks.NewMockVideoSearchClient(t)

	svc := service.NewGenerationService(
		store,
		producer.NewTextProducer(mockAI, retry.Config{MaxAttempts: 2, Delay: time.Millisecond}, nil),
		producer.NewImageBatchProducer(mockAI, nil),
		producer.NewMarketStatsProducer(mockHH, nil),
		producer.NewVideoSearchProducer(mockYT, nil),
		producer.NewCareerTreeProducer(mockAI, mockHH, 0, nil),
		producer.NewAudioProducer(mockAI, t.TempDir(), 0, nil),
		audioEnabled,
		nil,
	)

	registry := tasks.NewRegistry()
	h := handler.New(svc, registry, nil)
	router := handler.NewRouter(h, handler.RouterConfig{AllowedOrigins: []string{"*"}}, nil)

	return &httpEnv{router: router, store: store, registry: registry, mockAI: mockAI, mockHH: mockHH, mockYT: mockYT}
}

func (env *httpEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

var (
	streamTextMatcher   = mock.MatchedBy(func(p string) bool { return strings.Contains(p, `"schedule"`) })
	streamCareerMatcher = mock.MatchedBy(func(p string) bool { return strings.Contains(p, `"paths"`) })
)

func streamContentJSON(t *testing.T) string {
	t.Helper()
	content := models.ProfessionContent{
		Title:       "Повар",
		Description: "Готовит блюда по технологическим картам.",
		Schedule: []models.ScheduleEntry{
			{Time: "09:00", Activity: "Заготовки"},
			{Time: "11:00", Activity: "Ланч"},
			{Time: "14:00", Activity: "Перерыв"},
			{Time: "16:00", Activity: "Ужин"},
			{Time: "20:00", Activity: "Уборка"},
			{Time: "22:00", Activity: "Закрытие"},
		},
		Stack:    []string{"пароконвектомат"},
		Benefits: []string{"питание", "график", "команда", "рост"},
		CareerPath: []models.CareerStage{
			{Position: "Повар", Period: "0-1"},
			{Position: "Су-шеф", Period: "1-3"},
			{Position: "Шеф", Period: "3-6"},
			{Position: "Бренд-шеф", Period: "6+"},
		},
		Dialog: []models.DialogLine{{Speaker: "Шеф", Text: "Отдаем!"}},
	}
	data, err := json.Marshal(content)
	require.NoError(t, err)
	return string(data)
}

func expectFullSuccess(env *httpEnv, t *testing.T) {
	env.mockAI.On("GenerateJSON", mock.Anything, streamTextMatcher, mock.Anything).
		Return(streamContentJSON(t), nil).Once()
	env.mockAI.On("GenerateImage", mock.Anything, mock.Anything).
		Return("https://img.example/ok", nil).Times(models.MaxImages)
	env.mockHH.On("SearchVacancies", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&clients.VacancySearchResult{Found: 300}, nil).Once()
	env.mockYT.On("SearchShortVideos", mock.Anything, mock.Anything, mock.Anything).
		Return([]models.Video{}, nil).Once()
	env.mockAI.On("GenerateJSON", mock.Anything, streamCareerMatcher, mock.Anything).
		Return(`{"paths":[{"title":"А","description":"x"},{"title":"Б","description":"x"},{"title":"В","description":"x"},{"title":"Г","description":"x"}]}`, nil).Once()
	env.mockHH.On("CountVacancies", mock.Anything, mock.Anything, mock.Anything).
		Return(5, nil).Times(4)
}

func TestStreamGenerate_MissingProfessionRejectedBeforeStream(t *testing.T) {
	env := newHTTPEnv(t, false)

	rec := env.do(t, http.MethodPost, "/api/generate/stream", `{"profession":"  "}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var apiErr map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &apiErr))
	assert.Contains(t, apiErr["error"], "profession")
}

func TestStreamGenerate_InvalidLocationRejected(t *testing.T) {
	env := newHTTPEnv(t, false)

	rec := env.do(t, http.MethodPost, "/api/generate/stream", `{"profession":"Повар","location":"марс"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStreamGenerate_MalformedBodyRejected(t *testing.T) {
	env := newHTTPEnv(t, false)

	rec := env.do(t, http.MethodPost, "/api/generate/stream", `{"profession":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStreamGenerate_SuccessStreamEndsWithTerminalFrame(t *testing.T) {
	env := newHTTPEnv(t, false)
	expectFullSuccess(env, t)

	rec := env.do(t, http.MethodPost, "/api/generate/stream", `{"profession":"Повар"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/x-ndjson")

	var frames []map[string]interface{}
	scanner := bufio.NewScanner(rec.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var frame map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &frame), "every line must be a standalone JSON object")
		frames = append(frames, frame)
	}
	require.NoError(t, scanner.Err())
	require.NotEmpty(t, frames)

	// Промежуточные кадры: message + progress, без done
	for _, frame := range frames[:len(frames)-1] {
		assert.Contains(t, frame, "message")
		assert.Contains(t, frame, "progress")
		assert.NotContains(t, frame, "done")
	}

	last := frames[len(frames)-1]
	assert.Equal(t, true, last["done"])
	assert.Equal(t, false, last["cached"])
	assert.Equal(t, float64(100), last["progress"])
	assert.Equal(t, "Повар", last["profession"])
	assert.NotEmpty(t, last["schedule"])
}

func TestStreamGenerate_UpstreamFailureYieldsErrorFrame(t *testing.T) {
	env := newHTTPEnv(t, false)

	env.mockAI.On("GenerateJSON", mock.Anything, streamTextMatcher, mock.Anything).
		Return("", assert.AnError).Times(2)

	rec := env.do(t, http.MethodPost, "/api/generate/stream", `{"profession":"Повар"}`)

	// Поток уже открыт: ошибка едет внутри терминального кадра, статус 200
	require.Equal(t, http.StatusOK, rec.Code)

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	var last map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &last))
	assert.Equal(t, true, last["done"])
	assert.NotEmpty(t, last["error"])
}

func TestStreamGenerate_SecondRequestServedFromCache(t *testing.T) {
	env := newHTTPEnv(t, false)
	expectFullSuccess(env, t)

	first := env.do(t, http.MethodPost, "/api/generate/stream", `{"profession":"Повар"}`)
	require.Equal(t, http.StatusOK, first.Code)

	second := env.do(t, http.MethodPost, "/api/generate/stream", `{"profession":"повар"}`)
	require.Equal(t, http.StatusOK, second.Code)

	lines := strings.Split(strings.TrimSpace(second.Body.String()), "\n")
	var last map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &last))
	assert.Equal(t, true, last["cached"], "case-insensitive repeat must be a cache hit")
}

func TestGetProfession_MissingKeyIs404(t *testing.T) {
	env := newHTTPEnv(t, false)

	rec := env.do(t, http.MethodGet, "/api/professions/net-takogo", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetProfession_ReturnsStoredArtifact(t *testing.T) {
	env := newHTTPEnv(t, false)
	artifact := &models.Profession{Profession: "Повар", Title: "Повар"}
	require.NoError(t, env.store.Write(context.Background(), "povar", artifact))

	rec := env.do(t, http.MethodGet, "/api/professions/povar", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var got models.Profession
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Повар", got.Profession)
}

func TestEnrichAudio_MissingArtifactIs404(t *testing.T) {
	env := newHTTPEnv(t, true)

	rec := env.do(t, http.MethodPost, "/api/professions/net-takogo/audio", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEnrichAudio_NoScheduleIs400(t *testing.T) {
	env := newHTTPEnv(t, true)
	require.NoError(t, env.store.Write(context.Background(), "pustoy", &models.Profession{Profession: "X"}))

	rec := env.do(t, http.MethodPost, "/api/professions/pustoy/audio", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEnrichAudio_FeatureDisabledIs503(t *testing.T) {
	env := newHTTPEnv(t, false)

	rec := env.do(t, http.MethodPost, "/api/professions/povar/audio", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetGenerationStatus_UnknownKeyIs404(t *testing.T) {
	env := newHTTPEnv(t, false)

	rec := env.do(t, http.MethodGet, "/api/generate/status/net-takogo", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFastGenerate_ReturnsPartialAndStartsEnrichment(t *testing.T) {
	env := newHTTPEnv(t, false)

	// Быстрый прогон: текст + первая иллюстрация + рынок
	env.mockAI.On("GenerateJSON", mock.Anything, streamTextMatcher, mock.Anything).
		Return(streamContentJSON(t), nil).Once()
	env.mockAI.On("GenerateImage", mock.Anything, mock.Anything).
		Return("https://img.example/fast", nil).Once()
	env.mockHH.On("SearchVacancies", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&clients.VacancySearchResult{Found: 10}, nil).Once()

	// Фоновое обогащение: полный прогон с Force
	env.mockAI.On("GenerateJSON", mock.Anything, streamTextMatcher, mock.Anything).
		Return(streamContentJSON(t), nil).Once()
	env.mockAI.On("GenerateImage", mock.Anything, mock.Anything).
		Return("https://img.example/full", nil).Times(models.MaxImages)
	env.mockHH.On("SearchVacancies", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&clients.VacancySearchResult{Found: 10}, nil).Once()
	env.mockYT.On("SearchShortVideos", mock.Anything, mock.Anything, mock.Anything).
		Return([]models.Video{}, nil).Once()
	env.mockAI.On("GenerateJSON", mock.Anything, streamCareerMatcher, mock.Anything).
		Return(`{"paths":[{"title":"А","description":"x"},{"title":"Б","description":"x"},{"title":"В","description":"x"},{"title":"Г","description":"x"}]}`, nil).Once()
	env.mockHH.On("CountVacancies", mock.Anything, mock.Anything, mock.Anything).
		Return(5, nil).Times(4)

	rec := env.do(t, http.MethodPost, "/api/generate/fast", `{"profession":"Повар"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Artifact models.Profession `json:"artifact"`
		Cached   bool              `json:"cached"`
		Key      string            `json:"key"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Artifact.IsPartial)
	assert.Equal(t, "povar", body.Key)
	assert.Len(t, body.Artifact.Images, 1)

	// Фоновая задача видна в реестре и доводит запись до полного артефакта
	require.Eventually(t, func() bool {
		task, ok := env.registry.Get("povar")
		return ok && task.Status == tasks.StatusCompleted
	}, 3*time.Second, 10*time.Millisecond, "background enrichment must complete")

	stored, err := env.store.Read(context.Background(), "povar")
	require.NoError(t, err)
	assert.False(t, stored.IsPartial)
	assert.Len(t, stored.Images, models.MaxImages)

	statusRec := env.do(t, http.MethodGet, "/api/generate/status/povar", "")
	require.Equal(t, http.StatusOK, statusRec.Code)
	var task tasks.Task
	require.NoError(t, json.Unmarshal(statusRec.Body.Bytes(), &task))
	assert.Equal(t, tasks.StatusCompleted, task.Status)
	assert.Equal(t, 100, task.Progress)
}
