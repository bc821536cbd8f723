package producer

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ProgressFunc - колбек прогресса (сообщение, процент 0-100).
// Проценты совещательные: продюсеры второй стадии работают конкурентно
// и их диапазоны перекрываются.
type ProgressFunc func(message string, percent int)

// NopProgress - заглушка для вызовов без отчета о прогрессе.
func NopProgress(string, int) {}

// Outcome - результат продюсера: успех либо fallback с причиной.
// Fallback не является ошибкой запроса - он только логируется,
// потому что каждый продюсер гарантирует осмысленное значение по умолчанию.
type Outcome[T any] struct {
	Value    T
	Fallback bool
	Reason   string
}

// Success оборачивает успешный результат.
func Success[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v}
}

// FallbackOutcome оборачивает значение по умолчанию с причиной деградации.
func FallbackOutcome[T any](v T, reason string) Outcome[T] {
	return Outcome[T]{Value: v, Fallback: true, Reason: reason}
}

var producerFallbacks = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "profession_producer_fallbacks_total",
		Help: "Total number of producer degradations resolved to fallback values.",
	},
	[]string{"producer"},
)

// observeFallback учитывает деградацию продюсера в метриках.
func observeFallback(producer string) {
	producerFallbacks.WithLabelValues(producer).Inc()
}
