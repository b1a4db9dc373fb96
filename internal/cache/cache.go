package cache

import (
	"context"
	"time"
)

// BytesCache — минимальный контракт кэша "текущего состояния".
// Кэш best-effort: промах или ошибка не считаются фатальными.
type BytesCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
