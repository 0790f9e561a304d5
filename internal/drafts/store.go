package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/BruksfildServices01/barber-booking/internal/booking"
)

const draftPrefix = "booking:draft:"

var ErrNotFound = errors.New("draft not found")

// Store keeps booking drafts between requests.
type Store interface {
	Save(ctx context.Context, snap booking.Snapshot, ttl time.Duration) error
	Load(ctx context.Context, id string) (booking.Snapshot, error)
	Delete(ctx context.Context, id string) error
}

// ===============================
// Redis
// ===============================

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Save(ctx context.Context, snap booking.Snapshot, ttl time.Duration) error {
	b, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	return s.client.Set(ctx, draftPrefix+snap.ID, b, ttl).Err()
}

func (s *RedisStore) Load(ctx context.Context, id string) (booking.Snapshot, error) {
	data, err := s.client.Get(ctx, draftPrefix+id).Bytes()
	if err == redis.Nil {
		return booking.Snapshot{}, ErrNotFound
	}
	if err != nil {
		return booking.Snapshot{}, err
	}

	var snap booking.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return booking.Snapshot{}, fmt.Errorf("decode draft %s: %w", id, err)
	}
	return snap, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, draftPrefix+id).Err()
}

// ===============================
// Memory
// ===============================

// MemoryStore is used when no Redis is configured. Drafts do not survive
// a restart.
type MemoryStore struct {
	mu    sync.Mutex
	now   func() time.Time
	items map[string]memoryItem
}

type memoryItem struct {
	snap      booking.Snapshot
	expiresAt time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now, items: map[string]memoryItem{}}
}

func (s *MemoryStore) Save(_ context.Context, snap booking.Snapshot, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := memoryItem{snap: snap}
	if ttl > 0 {
		item.expiresAt = s.now().Add(ttl)
	}
	s.items[snap.ID] = item
	return nil
}

func (s *MemoryStore) Load(_ context.Context, id string) (booking.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return booking.Snapshot{}, ErrNotFound
	}
	if !item.expiresAt.IsZero() && !s.now().Before(item.expiresAt) {
		delete(s.items, id)
		return booking.Snapshot{}, ErrNotFound
	}
	return item.snap, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}
