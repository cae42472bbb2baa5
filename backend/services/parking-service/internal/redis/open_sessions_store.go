package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const openSessionsIndexKey = "parking:sessions:open"

// OpenSession is the part of a running session the live feed needs.
type OpenSession struct {
	SessionID        int64     `json:"session_id"`
	SlotID           *int64    `json:"slot_id,omitempty"`
	CarID            *int64    `json:"car_id,omitempty"`
	EntryTime        time.Time `json:"entry_time"`
	ParkingRequested bool      `json:"parking_requested"`
	ServiceIDs       []int     `json:"service_ids"`
	RateVersion      int64     `json:"rate_version"`
}

// Store caches open sessions. Entries never expire: a session stays open for as long
// as it takes, and Delete or Replace evicts it.
type Store struct {
	client *redis.Client
}

// NewStore returns redis-backed store.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) key(sessionID int64) string {
	return fmt.Sprintf("parking:sessions:open:%d", sessionID)
}

// Save caches session and adds it to the open index.
func (s *Store) Save(ctx context.Context, session OpenSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(session.SessionID), data, 0)
	pipe.SAdd(ctx, openSessionsIndexKey, session.SessionID)
	_, err = pipe.Exec(ctx)
	return err
}

// Delete removes cached session.
func (s *Store) Delete(ctx context.Context, sessionID int64) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.key(sessionID))
	pipe.SRem(ctx, openSessionsIndexKey, sessionID)
	_, err := pipe.Exec(ctx)
	return err
}

// List returns all cached open sessions. Index members without an entry are pruned.
func (s *Store) List(ctx context.Context) ([]OpenSession, error) {
	members, err := s.client.SMembers(ctx, openSessionsIndexKey).Result()
	if err != nil {
		return nil, err
	}
	if len(members) == 0 {
		return []OpenSession{}, nil
	}

	keys := make([]string, 0, len(members))
	ids := make([]int64, 0, len(members))
	for _, member := range members {
		id, err := strconv.ParseInt(member, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
		keys = append(keys, s.key(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	sessions := make([]OpenSession, 0, len(values))
	var stale []any
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		var session OpenSession
		if err := json.Unmarshal([]byte(raw), &session); err != nil {
			stale = append(stale, ids[i])
			continue
		}
		sessions = append(sessions, session)
	}

	if len(stale) > 0 {
		if err := s.client.SRem(ctx, openSessionsIndexKey, stale...).Err(); err != nil {
			return nil, err
		}
	}
	return sessions, nil
}

// Replace drops the whole cache and stores sessions in its place.
func (s *Store) Replace(ctx context.Context, sessions []OpenSession) error {
	members, err := s.client.SMembers(ctx, openSessionsIndexKey).Result()
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	for _, member := range members {
		pipe.Del(ctx, "parking:sessions:open:"+member)
	}
	pipe.Del(ctx, openSessionsIndexKey)
	for _, session := range sessions {
		data, err := json.Marshal(session)
		if err != nil {
			return err
		}
		pipe.Set(ctx, s.key(session.SessionID), data, 0)
		pipe.SAdd(ctx, openSessionsIndexKey, session.SessionID)
	}
	_, err = pipe.Exec(ctx)
	return err
}
