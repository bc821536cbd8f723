package cache

import (
	"context"

	"profession-server/internal/models"
)

// Store - хранилище готовых артефактов по ключу кеша.
// Конкурентные записи одного ключа не синхронизируются: побеждает последняя.
type Store interface {
	// Exists проверяет наличие артефакта без чтения.
	Exists(ctx context.Context, key string) (bool, error)
	// Read возвращает артефакт или models.ErrNotFound.
	Read(ctx context.Context, key string) (*models.Profession, error)
	// Write сохраняет артефакт, создавая недостающую структуру хранилища.
	Write(ctx context.Context, key string, p *models.Profession) error
}
