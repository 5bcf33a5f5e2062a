package cache

import (
	"context"
	"fmt"
	"time"

	"borrowbot/models"

	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// PriceKey is the hash other processes read the TON price from
const PriceKey = "config:ton_price"

const (
	fieldValue     = "value"
	fieldUpdatedAt = "updated_at"
)

// RedisPriceStore persists the price snapshot as a Redis hash
type RedisPriceStore struct {
	client goredis.Cmdable
	key    string
}

// NewRedisPriceStore creates a price store on client
func NewRedisPriceStore(client goredis.Cmdable) *RedisPriceStore {
	return &RedisPriceStore{client: client, key: PriceKey}
}

// SavePrice overwrites the stored snapshot
func (s *RedisPriceStore) SavePrice(ctx context.Context, snapshot models.PriceSnapshot) error {
	err := s.client.HSet(ctx, s.key,
		fieldValue, snapshot.Value.String(),
		fieldUpdatedAt, snapshot.UpdatedAt.UTC().Format(time.RFC3339),
	).Err()
	if err != nil {
		return fmt.Errorf("failed to save price: %w", err)
	}
	return nil
}

// LoadPrice returns the stored snapshot, or nil if none was ever saved
func (s *RedisPriceStore) LoadPrice(ctx context.Context) (*models.PriceSnapshot, error) {
	fields, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load price: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}

	value, err := decimal.NewFromString(fields[fieldValue])
	if err != nil {
		return nil, fmt.Errorf("invalid stored price %q: %w", fields[fieldValue], err)
	}

	snapshot := &models.PriceSnapshot{Value: value}
	if raw, ok := fields[fieldUpdatedAt]; ok {
		updatedAt, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("invalid stored price timestamp %q: %w", raw, err)
		}
		snapshot.UpdatedAt = updatedAt
	}
	return snapshot, nil
}
