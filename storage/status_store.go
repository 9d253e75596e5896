package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"restaurant-sync/models"
)

const statusKeyPrefix = "restaurant-sync:status:"

// RedisStatusStore keeps the last SyncStatus of each data-set as a JSON value in Redis.
type RedisStatusStore struct {
	client *redis.Client
}

// NewRedisStatusStore connects to addr and verifies the connection with PING.
func NewRedisStatusStore(ctx context.Context, addr, password string, db int) (*RedisStatusStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", addr, err)
	}
	return NewRedisStatusStoreFromClient(client), nil
}

// NewRedisStatusStoreFromClient wraps an existing client.
func NewRedisStatusStoreFromClient(client *redis.Client) *RedisStatusStore {
	return &RedisStatusStore{client: client}
}

func statusKey(dataset string) string { return statusKeyPrefix + dataset }

// SaveStatus stores status under its data-set key without expiry.
func (s *RedisStatusStore) SaveStatus(ctx context.Context, status *models.SyncStatus) error {
	b, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("redis: encode status: %w", err)
	}
	if err := s.client.Set(ctx, statusKey(status.Dataset), b, 0).Err(); err != nil {
		return fmt.Errorf("redis: save status %s: %w", status.Dataset, err)
	}
	return nil
}

// LoadStatus returns nil, nil when the key does not exist.
func (s *RedisStatusStore) LoadStatus(ctx context.Context, dataset string) (*models.SyncStatus, error) {
	val, err := s.client.Get(ctx, statusKey(dataset)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis: load status %s: %w", dataset, err)
	}

	var status models.SyncStatus
	if err := json.Unmarshal(val, &status); err != nil {
		return nil, fmt.Errorf("redis: decode status %s: %w", dataset, err)
	}
	return &status, nil
}

func (s *RedisStatusStore) Close() error {
	return s.client.Close()
}

// MemoryStatusStore is the in-process StatusStore used when Redis is not configured.
type MemoryStatusStore struct {
	mu       sync.RWMutex
	statuses map[string]models.SyncStatus
}

func NewMemoryStatusStore() *MemoryStatusStore {
	return &MemoryStatusStore{statuses: make(map[string]models.SyncStatus)}
}

func (m *MemoryStatusStore) SaveStatus(_ context.Context, status *models.SyncStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[status.Dataset] = *status
	return nil
}

func (m *MemoryStatusStore) LoadStatus(_ context.Context, dataset string) (*models.SyncStatus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	status, ok := m.statuses[dataset]
	if !ok {
		return nil, nil
	}
	return &status, nil
}

func (m *MemoryStatusStore) Close() error { return nil }
