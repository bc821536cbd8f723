package service

import "sync"

// Reporter - упорядоченный монотонный сток событий прогресса.
// Проценты не убывают в пределах одного запроса: продюсеры второй стадии
// работают конкурентно и могут прислать меньший процент позже - такой
// процент поднимается до уже достигнутого.
type Reporter struct {
	mu   sync.Mutex
	last int
	emit func(message string, percent int)
}

// NewReporter создает репортер поверх колбека emit (может быть nil).
func NewReporter(emit func(message string, percent int)) *Reporter {
	return &Reporter{emit: emit}
}

// Report публикует событие прогресса с монотонной фиксацией процента.
func (r *Reporter) Report(message string, percent int) {
	r.mu.Lock()
	if percent < r.last {
		percent = r.last
	}
	if percent > 100 {
		percent = 100
	}
	r.last = percent
	emit := r.emit
	r.mu.Unlock()

	if emit != nil {
		emit(message, percent)
	}
}

// Percent возвращает последний зафиксированный процент.
func (r *Reporter) Percent() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}
