package tasks

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status - статус фоновой задачи обогащения.
type Status string

// Возможные статусы задач.
const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Task - фоновое обогащение артефакта по ключу кеша.
type Task struct {
	ID        uuid.UUID `json:"id"`
	Key       string    `json:"key"`
	Status    Status    `json:"status"`
	Progress  int       `json:"progress"`
	Message   string    `json:"message,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Registry - реестр фоновых задач, по одной активной на ключ кеша.
// Только память процесса: история задач не переживает рестарт,
// сами артефакты при этом лежат в кеше.
type Registry struct {
	mu    sync.RWMutex
	tasks map[string]*Task
}

// NewRegistry создает пустой реестр.
func NewRegistry() *Registry {
	return &Registry{tasks: make(map[string]*Task)}
}

// Begin регистрирует задачу для ключа. Возвращает false, если по этому
// ключу уже идет работа - дубликат не запускается.
func (r *Registry) Begin(key string) (*Task, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.tasks[key]; ok && existing.Status == StatusRunning {
		return nil, false
	}

	now := time.Now().UTC()
	task := &Task{
		ID:        uuid.New(),
		Key:       key,
		Status:    StatusRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.tasks[key] = task
	return task, true
}

// Update обновляет прогресс работающей задачи.
func (r *Registry) Update(key string, progress int, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[key]
	if !ok || task.Status != StatusRunning {
		return
	}
	if progress > task.Progress {
		task.Progress = progress
	}
	task.Message = message
	task.UpdatedAt = time.Now().UTC()
}

// Complete помечает задачу завершенной.
func (r *Registry) Complete(key string) {
	r.finish(key, StatusCompleted, "")
}

// Fail помечает задачу проваленной.
func (r *Registry) Fail(key string, err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	r.finish(key, StatusFailed, msg)
}

func (r *Registry) finish(key string, status Status, errMsg string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[key]
	if !ok {
		return
	}
	task.Status = status
	task.Error = errMsg
	if status == StatusCompleted {
		task.Progress = 100
	}
	task.UpdatedAt = time.Now().UTC()
}

// Get возвращает копию задачи по ключу.
func (r *Registry) Get(key string) (Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.tasks[key]
	if !ok {
		return Task{}, false
	}
	return *task, true
}

// Cleanup удаляет завершенные задачи старше age.
func (r *Registry) Cleanup(age time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().UTC().Add(-age)
	for key, task := range r.tasks {
		if task.Status != StatusRunning && task.UpdatedAt.Before(cutoff) {
			delete(r.tasks, key)
		}
	}
}
