package producer_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"profession-server/internal/mocks"
	"profession-server/internal/models"
	"profession-server/internal/producer"
)

func baristaImageInput() producer.ImageInput {
	return producer.ImageInput{
		Profession: "Бариста",
		Company:    "кофейня",
		Stack:      []string{"кофемашина", "гриндер"},
	}
}

// promptMatcher выбирает промт по характерному фрагменту сюжета.
func promptMatcher(fragment string) interface{} {
	return mock.MatchedBy(func(prompt string) bool {
		return strings.Contains(prompt, fragment)
	})
}

func TestImageBatchProducer_Produce_FixedCountOrderedByIndex(t *testing.T) {
	mockAI := mocks.NewMockAIClient(t)
	// Каждому сюжету отвечаем его собственным URL, чтобы проверить,
	// что порядок восстанавливается по исходному индексу
	mockAI.On("GenerateImage", mock.Anything, promptMatcher("Рабочее место")).Return("https://img.example/0", nil).Once()
	mockAI.On("GenerateImage", mock.Anything, promptMatcher("за работой")).Return("https://img.example/1", nil).Once()
	mockAI.On("GenerateImage", mock.Anything, promptMatcher("Командная встреча")).Return("https://img.example/2", nil).Once()
	mockAI.On("GenerateImage", mock.Anything, promptMatcher("Результат труда")).Return("https://img.example/3", nil).Once()

	p := producer.NewImageBatchProducer(mockAI, nil)
	out := p.Produce(context.Background(), baristaImageInput(), nil)

	assert.False(t, out.Fallback)
	expected := make([]string, models.MaxImages)
	for i := range expected {
		expected[i] = fmt.Sprintf("https://img.example/%d", i)
	}
	assert.Equal(t, expected, out.Value)
}

func TestImageBatchProducer_Produce_FailedSlotGetsPlaceholder(t *testing.T) {
	mockAI := mocks.NewMockAIClient(t)
	// Все вызовы падают: каждый слот деградирует в плейсхолдер
	mockAI.On("GenerateImage", mock.Anything, mock.Anything).
		Return("", errors.New("image api down"))

	p := producer.NewImageBatchProducer(mockAI, nil)
	out := p.Produce(context.Background(), baristaImageInput(), nil)

	assert.True(t, out.Fallback)
	assert.Len(t, out.Value, models.MaxImages)
	for i, u := range out.Value {
		assert.Contains(t, u, "placehold.co", "slot %d must hold a placeholder", i)
	}
}

func TestImageBatchProducer_ProduceOne_SingleImage(t *testing.T) {
	mockAI := mocks.NewMockAIClient(t)
	mockAI.On("GenerateImage", mock.Anything, mock.Anything).
		Return("https://img.example/first", nil).Once()

	p := producer.NewImageBatchProducer(mockAI, nil)
	out := p.ProduceOne(context.Background(), baristaImageInput(), nil)

	assert.False(t, out.Fallback)
	assert.Equal(t, []string{"https://img.example/first"}, out.Value)
}

func TestImageBatchProducer_ProduceOne_FallbackOnFailure(t *testing.T) {
	mockAI := mocks.NewMockAIClient(t)
	// Две попытки на вызов, затем плейсхолдер
	mockAI.On("GenerateImage", mock.Anything, mock.Anything).
		Return("", errors.New("image api down")).Times(2)

	p := producer.NewImageBatchProducer(mockAI, nil)
	out := p.ProduceOne(context.Background(), baristaImageInput(), nil)

	assert.True(t, out.Fallback)
	assert.Len(t, out.Value, 1)
	assert.Contains(t, out.Value[0], "placehold.co")
}
