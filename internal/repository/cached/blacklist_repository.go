package cached

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/frontandrew/rental/internal/domain"
	"github.com/frontandrew/rental/internal/pkg/redis"
	"github.com/frontandrew/rental/internal/repository"
	"github.com/google/uuid"
)

const (
	blacklistCachePrefix = "blacklist:"
	blacklistCacheTTL    = 1 * time.Hour

	// Маркер отрицательного результата: паспорт проверяли, записи нет.
	// Без него каждый договор чистого клиента ходил бы в БД.
	blacklistCacheMiss = "-"
)

// BlacklistRepository добавляет кэширование к blacklist repository.
// Проверка паспорта выполняется при каждом создании договора,
// поэтому GetByPassport кэшируется, включая отрицательные ответы.
type BlacklistRepository struct {
	repo  repository.BlacklistRepository
	cache *redis.Client
}

// NewBlacklistRepository создает новый кэшируемый blacklist repository
func NewBlacklistRepository(repo repository.BlacklistRepository, cache *redis.Client) *BlacklistRepository {
	return &BlacklistRepository{
		repo:  repo,
		cache: cache,
	}
}

func cacheKey(ownerID uuid.UUID, passportID string) string {
	return blacklistCachePrefix + ownerID.String() + ":" + passportID
}

// GetByPassport возвращает запись владельца по номеру паспорта (с кэшированием)
func (r *BlacklistRepository) GetByPassport(ctx context.Context, ownerID uuid.UUID, passportID string) (*domain.BlacklistEntry, error) {
	key := cacheKey(ownerID, passportID)

	// 1. Проверяем кэш
	cached, err := r.cache.Get(ctx, key)
	if err == nil {
		if cached == blacklistCacheMiss {
			return nil, domain.ErrNotFound
		}

		var entry domain.BlacklistEntry
		if err := json.Unmarshal([]byte(cached), &entry); err == nil {
			return &entry, nil
		}
		// Битое значение в кэше - игнорируем и идем в БД
	}

	// 2. Cache miss - идем в БД
	entry, err := r.repo.GetByPassport(ctx, ownerID, passportID)
	if errors.Is(err, domain.ErrNotFound) {
		// Запоминаем и отсутствие записи
		_ = r.cache.Set(ctx, key, blacklistCacheMiss, blacklistCacheTTL)
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	// 3. Сохраняем результат в кэш, ошибка записи не критична
	if data, err := json.Marshal(entry); err == nil {
		_ = r.cache.Set(ctx, key, string(data), blacklistCacheTTL)
	}

	return entry, nil
}

// Create добавляет запись в blacklist и инвалидирует кэш
func (r *BlacklistRepository) Create(ctx context.Context, entry *domain.BlacklistEntry) error {
	if err := r.repo.Create(ctx, entry); err != nil {
		return err
	}

	_ = r.cache.Del(ctx, cacheKey(entry.OwnerID, entry.PassportID))

	return nil
}

// DeleteByPassport удаляет записи по номеру паспорта и инвалидирует кэш
func (r *BlacklistRepository) DeleteByPassport(ctx context.Context, ownerID uuid.UUID, passportID string) (int64, error) {
	deleted, err := r.repo.DeleteByPassport(ctx, ownerID, passportID)
	if err != nil {
		return 0, err
	}

	_ = r.cache.Del(ctx, cacheKey(ownerID, passportID))

	return deleted, nil
}

// List возвращает все записи владельца.
// Списки не кэшируем - используются только в админке.
func (r *BlacklistRepository) List(ctx context.Context, ownerID uuid.UUID) ([]*domain.BlacklistEntry, error) {
	return r.repo.List(ctx, ownerID)
}
