package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only if it still holds the caller's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// SlotLocker hands out short-lived exclusive reservations on parking slots.
type SlotLocker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSlotLocker returns locker whose reservations expire after ttl.
func NewSlotLocker(client *redis.Client, ttl time.Duration) *SlotLocker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &SlotLocker{client: client, ttl: ttl}
}

func (l *SlotLocker) key(slotID int64) string {
	return fmt.Sprintf("parking:slots:lock:%d", slotID)
}

// Acquire reserves the slot. ok is false when someone else holds it.
func (l *SlotLocker) Acquire(ctx context.Context, slotID int64) (token string, ok bool, err error) {
	token = uuid.NewString()
	ok, err = l.client.SetNX(ctx, l.key(slotID), token, l.ttl).Result()
	if err != nil {
		return "", false, err
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

// Release frees the reservation if token still owns it.
func (l *SlotLocker) Release(ctx context.Context, slotID int64, token string) error {
	return releaseScript.Run(ctx, l.client, []string{l.key(slotID)}, token).Err()
}
