package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisDraftStore keeps drafts as JSON documents that expire after ttl of
// inactivity.
type RedisDraftStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDraftStore(client *redis.Client, ttl time.Duration) *RedisDraftStore {
	return &RedisDraftStore{client: client, ttl: ttl}
}

func DraftKey(doctorID uuid.UUID, scope Scope) string {
	return fmt.Sprintf("draft:%s:%s", doctorID, scope)
}

func (s *RedisDraftStore) Get(ctx context.Context, doctorID uuid.UUID, scope Scope) (*Draft, error) {
	raw, err := s.client.Get(ctx, DraftKey(doctorID, scope)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrDraftNotFound
		}
		return nil, fmt.Errorf("get draft: %w", err)
	}

	var d Draft
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	return &d, nil
}

func (s *RedisDraftStore) Put(ctx context.Context, d *Draft) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	if err := s.client.Set(ctx, DraftKey(d.DoctorID, d.Scope), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("put draft: %w", err)
	}
	return nil
}

func (s *RedisDraftStore) Delete(ctx context.Context, doctorID uuid.UUID, scope Scope) error {
	if err := s.client.Del(ctx, DraftKey(doctorID, scope)).Err(); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}
