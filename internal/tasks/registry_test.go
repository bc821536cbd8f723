package tasks

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_BeginRejectsDuplicateRunning(t *testing.T) {
	r := NewRegistry()

	task, ok := r.Begin("barista")
	require.True(t, ok)
	require.NotNil(t, task)
	assert.Equal(t, StatusRunning, task.Status)
	assert.Equal(t, "barista", task.Key)

	// По тому же ключу работа уже идет
	dup, ok := r.Begin("barista")
	assert.False(t, ok)
	assert.Nil(t, dup)

	// Другой ключ не конфликтует
	_, ok = r.Begin("povar")
	assert.True(t, ok)
}

func TestRegistry_BeginAfterFinishStartsFresh(t *testing.T) {
	r := NewRegistry()

	first, ok := r.Begin("barista")
	require.True(t, ok)
	r.Complete("barista")

	second, ok := r.Begin("barista")
	require.True(t, ok)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, StatusRunning, second.Status)
}

func TestRegistry_UpdateProgressMonotonic(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Begin("barista")
	require.True(t, ok)

	r.Update("barista", 40, "Генерируем иллюстрации...")
	r.Update("barista", 25, "Изучаем рынок вакансий...")

	task, found := r.Get("barista")
	require.True(t, found)
	assert.Equal(t, 40, task.Progress, "progress must not go backwards")
	assert.Equal(t, "Изучаем рынок вакансий...", task.Message)
}

func TestRegistry_UpdateIgnoresFinishedAndUnknown(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Begin("barista")
	require.True(t, ok)
	r.Complete("barista")

	r.Update("barista", 10, "late update")
	r.Update("missing", 10, "no such task")

	task, found := r.Get("barista")
	require.True(t, found)
	assert.Equal(t, StatusCompleted, task.Status)
	assert.Equal(t, 100, task.Progress)
	assert.NotEqual(t, "late update", task.Message)
}

func TestRegistry_FailKeepsErrorMessage(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Begin("barista")
	require.True(t, ok)

	r.Fail("barista", errors.New("тайм-аут апстрима"))

	task, found := r.Get("barista")
	require.True(t, found)
	assert.Equal(t, StatusFailed, task.Status)
	assert.Equal(t, "тайм-аут апстрима", task.Error)
}

func TestRegistry_GetReturnsCopy(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Begin("barista")
	require.True(t, ok)

	task, found := r.Get("barista")
	require.True(t, found)
	task.Progress = 77

	fresh, _ := r.Get("barista")
	assert.Equal(t, 0, fresh.Progress, "mutating the returned copy must not touch the registry")
}

func TestRegistry_CleanupRemovesOnlyOldFinished(t *testing.T) {
	r := NewRegistry()

	_, ok := r.Begin("done")
	require.True(t, ok)
	r.Complete("done")

	_, ok = r.Begin("active")
	require.True(t, ok)

	// Нулевой возраст: под зачистку попадает все завершенное
	time.Sleep(time.Millisecond)
	r.Cleanup(0)

	_, found := r.Get("done")
	assert.False(t, found)
	_, found = r.Get("active")
	assert.True(t, found, "running tasks survive cleanup")
}
