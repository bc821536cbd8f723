package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"profession-server/internal/models"
)

// FileStore хранит каждый артефакт отдельным JSON-файлом <key>.json.
// Плоский кеш без TTL и вытеснения: первая запись живет, пока ее явно
// не перезапишет проход обогащения.
type FileStore struct {
	dir    string
	logger *zap.Logger
}

// NewFileStore создает файловое хранилище артефактов.
func NewFileStore(dir string, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{dir: dir, logger: logger.Named("FileStore")}
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Exists проверяет наличие файла артефакта.
func (s *FileStore) Exists(_ context.Context, key string) (bool, error) {
	_, err := os.Stat(s.path(key))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("ошибка проверки кеша %s: %w", key, err)
}

// Read читает артефакт из файла.
func (s *FileStore) Read(_ context.Context, key string) (*models.Profession, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка чтения кеша %s: %w", key, err)
	}

	var p models.Profession
	if err := json.Unmarshal(data, &p); err != nil {
		// Битый файл считаем отсутствующим, но логируем: генерация
		// перезапишет его свежим артефактом.
		s.logger.Warn("Corrupted cache entry, treating as miss",
			zap.String("key", key), zap.Error(err))
		return nil, models.ErrNotFound
	}
	return &p, nil
}

// Write сохраняет артефакт, создавая директорию кеша при необходимости.
func (s *FileStore) Write(_ context.Context, key string, p *models.Profession) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("ошибка создания директории кеша: %w", err)
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("ошибка сериализации артефакта %s: %w", key, err)
	}
	if err := os.WriteFile(s.path(key), data, 0o644); err != nil {
		return fmt.Errorf("ошибка записи кеша %s: %w", key, err)
	}

	s.logger.Debug("Artifact cached", zap.String("key", key), zap.Int("bytes", len(data)))
	return nil
}
