package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sangkips/posadmin-api/internal/config"
	"github.com/sangkips/posadmin-api/internal/domain/entity"
	domainRepo "github.com/sangkips/posadmin-api/internal/domain/repository"
)

const draftKeyPrefix = "pos:draft:"

var _ domainRepo.DraftStore = (*RedisDraftStore)(nil)

// RedisDraftStore keeps drafts in Redis so they survive restarts and are
// shared between API instances.
type RedisDraftStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisDraftStore creates a Redis-backed draft store
func NewRedisDraftStore(cfg config.RedisConfig, ttl time.Duration) *RedisDraftStore {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisDraftStoreWithClient(client, ttl)
}

// NewRedisDraftStoreWithClient wraps an existing client
func NewRedisDraftStoreWithClient(client *redis.Client, ttl time.Duration) *RedisDraftStore {
	if ttl <= 0 {
		ttl = DefaultDraftTTL
	}
	return &RedisDraftStore{client: client, ttl: ttl}
}

// Ping checks the Redis connection
func (s *RedisDraftStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the underlying client
func (s *RedisDraftStore) Close() error {
	return s.client.Close()
}

// Get reads the draft and refreshes its TTL in one round trip
func (s *RedisDraftStore) Get(ctx context.Context, id uuid.UUID) (*entity.SaleDraft, error) {
	data, err := s.client.GetEx(ctx, draftKey(id), s.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var draft entity.SaleDraft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

// Save writes the draft as JSON with a fresh TTL
func (s *RedisDraftStore) Save(ctx context.Context, draft *entity.SaleDraft) error {
	payload, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, draftKey(draft.ID), payload, s.ttl).Err()
}

// Delete removes the draft key
func (s *RedisDraftStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.client.Del(ctx, draftKey(id)).Err()
}

func draftKey(id uuid.UUID) string {
	return draftKeyPrefix + id.String()
}
