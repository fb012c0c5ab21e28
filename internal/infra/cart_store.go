package infra

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"clubpos/internal/dto"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisCartStore keeps staged carts in Redis with a TTL, so an abandoned
// register session expires on its own. Keyed by (session token, caja).
type RedisCartStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisCartStore(rdb *redis.Client, ttl time.Duration) *RedisCartStore {
	return &RedisCartStore{rdb: rdb, ttl: ttl}
}

func cartKey(token string, cajaID uuid.UUID) string {
	return fmt.Sprintf("carro:%s:%s", token, cajaID)
}

func (s *RedisCartStore) Guardar(ctx context.Context, token string, cajaID uuid.UUID, carro *dto.Carro) error {
	data, err := json.Marshal(carro)
	if err != nil {
		return fmt.Errorf("cart store: marshal: %w", err)
	}
	return s.rdb.Set(ctx, cartKey(token, cajaID), data, s.ttl).Err()
}

func (s *RedisCartStore) Obtener(ctx context.Context, token string, cajaID uuid.UUID) (*dto.Carro, error) {
	data, err := s.rdb.Get(ctx, cartKey(token, cajaID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var carro dto.Carro
	if err := json.Unmarshal(data, &carro); err != nil {
		return nil, fmt.Errorf("cart store: unmarshal: %w", err)
	}
	return &carro, nil
}

func (s *RedisCartStore) Eliminar(ctx context.Context, token string, cajaID uuid.UUID) error {
	return s.rdb.Del(ctx, cartKey(token, cajaID)).Err()
}

// MemoryCartStore is the in-process fallback used by unit tests and local
// development without Redis. No TTL handling.
type MemoryCartStore struct {
	mu    sync.RWMutex
	carts map[string]*dto.Carro
}

func NewMemoryCartStore() *MemoryCartStore {
	return &MemoryCartStore{carts: make(map[string]*dto.Carro)}
}

func (s *MemoryCartStore) Guardar(_ context.Context, token string, cajaID uuid.UUID, carro *dto.Carro) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[cartKey(token, cajaID)] = carro
	return nil
}

func (s *MemoryCartStore) Obtener(_ context.Context, token string, cajaID uuid.UUID) (*dto.Carro, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.carts[cartKey(token, cajaID)], nil
}

func (s *MemoryCartStore) Eliminar(_ context.Context, token string, cajaID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, cartKey(token, cajaID))
	return nil
}
