package models

import (
	"errors"
	"fmt"
)

// Стандартные ошибки приложения.
var (
	// ErrNotFound - артефакт с таким ключом отсутствует в кеше.
	ErrNotFound = errors.New("артефакт не найден")

	// ErrValidation - некорректные поля запроса; не ретраится, частичный
	// артефакт не создается.
	ErrValidation = errors.New("некорректный запрос")

	// ErrConfiguration - отсутствует обязательный ключ/настройка для
	// внешнего API; поверхностная ошибка, без ретраев.
	ErrConfiguration = errors.New("ошибка конфигурации")

	// ErrUpstreamTerminal - структурное ограничение внешнего API
	// (например, региональная недоступность); ретраи бессмысленны.
	ErrUpstreamTerminal = errors.New("запрос отклонен внешним API")

	// ErrUpstreamTransient - прочие сбои внешнего API; ретраится,
	// наружу выходит только после исчерпания попыток.
	ErrUpstreamTransient = errors.New("временный сбой внешнего API")
)

// NewConfigurationError формирует ошибку конфигурации с указанием того,
// какая именно возможность недоступна (аудио, генерация текста и т.д.).
func NewConfigurationError(feature, key string) error {
	return fmt.Errorf("%w: для %s не задан %s", ErrConfiguration, feature, key)
}

// IsFatal сообщает, должна ли ошибка завершить запрос целиком.
// Деградация продюсеров второй стадии сюда не попадает - она
// разрешается в fallback-значения до выхода из продюсера.
func IsFatal(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrConfiguration) ||
		errors.Is(err, ErrUpstreamTerminal) ||
		errors.Is(err, ErrUpstreamTransient)
}
