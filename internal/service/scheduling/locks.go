package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SlotLocker serializes bookings on a (professional, date) partition. It
// narrows the cross-request race window; it does not make the two-pass
// protocol transactional.
type SlotLocker interface {
	Acquire(ctx context.Context, keys []string, ttl time.Duration) (release func(), acquired bool, err error)
}

// LockKey builds the partition key for one professional-day.
func LockKey(professionalID uuid.UUID, day time.Time) string {
	return fmt.Sprintf("slotlock:%s:%s", professionalID, day.Format("2006-01-02"))
}

// RedisSlotLocker takes advisory locks via SETNX with a TTL so a crashed
// holder cannot wedge the partition.
type RedisSlotLocker struct {
	client *redis.Client
}

func NewRedisSlotLocker(client *redis.Client) *RedisSlotLocker {
	return &RedisSlotLocker{client: client}
}

func (l *RedisSlotLocker) Acquire(ctx context.Context, keys []string, ttl time.Duration) (func(), bool, error) {
	token := uuid.New().String()
	var held []string

	releaseHeld := func() {
		for _, key := range held {
			l.client.Del(context.Background(), key)
		}
	}

	for _, key := range keys {
		ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			releaseHeld()
			return nil, false, fmt.Errorf("failed to acquire slot lock %s: %w", key, err)
		}
		if !ok {
			releaseHeld()
			return nil, false, nil
		}
		held = append(held, key)
	}

	return releaseHeld, true, nil
}
