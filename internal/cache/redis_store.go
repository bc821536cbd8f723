package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"profession-server/internal/models"
)

const redisKeyPrefix = "profession:"

// RedisStore - альтернативный бэкенд кеша поверх Redis.
// Семантика та же, что у FileStore: JSON-значение на ключ, без TTL.
type RedisStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisStore создает хранилище артефактов в Redis и проверяет соединение.
func NewRedisStore(ctx context.Context, addr, password string, db int, logger *zap.Logger) (*RedisStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ошибка подключения к Redis %s: %w", addr, err)
	}
	return &RedisStore{client: client, logger: logger.Named("RedisStore")}, nil
}

// Exists проверяет наличие ключа.
func (s *RedisStore) Exists(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("ошибка проверки кеша %s: %w", key, err)
	}
	return n > 0, nil
}

// Read возвращает артефакт или models.ErrNotFound.
func (s *RedisStore) Read(ctx context.Context, key string) (*models.Profession, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка чтения кеша %s: %w", key, err)
	}

	var p models.Profession
	if err := json.Unmarshal(data, &p); err != nil {
		s.logger.Warn("Corrupted cache entry, treating as miss",
			zap.String("key", key), zap.Error(err))
		return nil, models.ErrNotFound
	}
	return &p, nil
}

// Write сохраняет артефакт без TTL; последняя запись побеждает.
func (s *RedisStore) Write(ctx context.Context, key string, p *models.Profession) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("ошибка сериализации артефакта %s: %w", key, err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+key, data, 0).Err(); err != nil {
		return fmt.Errorf("ошибка записи кеша %s: %w", key, err)
	}
	s.logger.Debug("Artifact cached", zap.String("key", key), zap.Int("bytes", len(data)))
	return nil
}

// Close закрывает соединение с Redis.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
