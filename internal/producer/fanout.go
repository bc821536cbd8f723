package producer

import (
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Settle запускает независимые задачи конкурентно и ждет завершения ВСЕХ,
// не прерываясь на сбоях отдельных задач (settle-all, не fail-fast).
// Каждая задача сама отвечает за подстановку своего fallback-значения.
func Settle(tasks ...func()) {
	var wg sync.WaitGroup
	for _, task := range tasks {
		wg.Add(1)
		go func(run func()) {
			defer wg.Done()
			run()
		}(task)
	}
	wg.Wait()
}

// Guarded оборачивает вычисление слота агрегата: если продюсер вопреки
// собственному fallback все же паникует или возвращает ошибку, слот
// получает документированное значение по умолчанию, и агрегат завершается.
func Guarded[T any](log *zap.Logger, name string, fallback T, fn func() (Outcome[T], error)) (out Outcome[T]) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("Producer panicked, substituting default value",
				zap.String("producer", name), zap.Any("panic", r))
			observeFallback(name)
			out = FallbackOutcome(fallback, fmt.Sprintf("panic: %v", r))
		}
	}()

	result, err := fn()
	if err != nil {
		log.Warn("Producer failed past its own fallback, substituting default value",
			zap.String("producer", name), zap.Error(err))
		observeFallback(name)
		return FallbackOutcome(fallback, err.Error())
	}
	if result.Fallback {
		log.Warn("Producer degraded to fallback",
			zap.String("producer", name), zap.String("reason", result.Reason))
		observeFallback(name)
	}
	return result
}
