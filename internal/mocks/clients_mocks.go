package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"profession-server/internal/clients"
	"profession-server/internal/models"
)

// MockAIClient is a mock type for the clients.AIClient type
type MockAIClient struct {
	mock.Mock
}

// GenerateJSON provides a mock function with given fields: ctx, systemPrompt, userInput
func (_m *MockAIClient) GenerateJSON(ctx context.Context, systemPrompt string, userInput string) (string, error) {
	ret := _m.Called(ctx, systemPrompt, userInput)
	return ret.String(0), ret.Error(1)
}

// GenerateImage provides a mock function with given fields: ctx, prompt
func (_m *MockAIClient) GenerateImage(ctx context.Context, prompt string) (string, error) {
	ret := _m.Called(ctx, prompt)
	return ret.String(0), ret.Error(1)
}

// GenerateSpeech provides a mock function with given fields: ctx, text
func (_m *MockAIClient) GenerateSpeech(ctx context.Context, text string) ([]byte, error) {
	ret := _m.Called(ctx, text)

	var r0 []byte
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]byte)
	}
	return r0, ret.Error(1)
}

// NewMockAIClient creates a new instance of MockAIClient and registers
// the testing interface and expectation assertions on cleanup.
func NewMockAIClient(t interface {
	mock.TestingT
	Cleanup(func())
	Helper()
}) *MockAIClient {
	m := &MockAIClient{}
	m.Mock.Test(t)
	t.Helper()
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ clients.AIClient = (*MockAIClient)(nil)

// MockVacancySearchClient is a mock type for the clients.VacancySearchClient type
type MockVacancySearchClient struct {
	mock.Mock
}

// SearchVacancies provides a mock function with given fields: ctx, text, location, perPage
func (_m *MockVacancySearchClient) SearchVacancies(ctx context.Context, text string, location string, perPage int) (*clients.VacancySearchResult, error) {
	ret := _m.Called(ctx, text, location, perPage)

	var r0 *clients.VacancySearchResult
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*clients.VacancySearchResult)
	}
	return r0, ret.Error(1)
}

// CountVacancies provides a mock function with given fields: ctx, text, location
func (_m *MockVacancySearchClient) CountVacancies(ctx context.Context, text string, location string) (int, error) {
	ret := _m.Called(ctx, text, location)
	return ret.Int(0), ret.Error(1)
}

// NewMockVacancySearchClient creates a new instance of MockVacancySearchClient.
func NewMockVacancySearchClient(t interface {
	mock.TestingT
	Cleanup(func())
	Helper()
}) *MockVacancySearchClient {
	m := &MockVacancySearchClient{}
	m.Mock.Test(t)
	t.Helper()
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ clients.VacancySearchClient = (*MockVacancySearchClient)(nil)

// MockVideoSearchClient is a mock type for the clients.VideoSearchClient type
type MockVideoSearchClient struct {
	mock.Mock
}

// SearchShortVideos provides a mock function with given fields: ctx, query, maxResults
func (_m *MockVideoSearchClient) SearchShortVideos(ctx context.Context, query string, maxResults int64) ([]models.Video, error) {
	ret := _m.Called(ctx, query, maxResults)

	var r0 []models.Video
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]models.Video)
	}
	return r0, ret.Error(1)
}

// NewMockVideoSearchClient creates a new instance of MockVideoSearchClient.
func NewMockVideoSearchClient(t interface {
	mock.TestingT
	Cleanup(func())
	Helper()
}) *MockVideoSearchClient {
	m := &MockVideoSearchClient{}
	m.Mock.Test(t)
	t.Helper()
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

var _ clients.VideoSearchClient = (*MockVideoSearchClient)(nil)
