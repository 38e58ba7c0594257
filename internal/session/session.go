// Package session implements Redis-backed cookie sessions.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lireddit/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const (
	// KeyPrefix namespaces session records in Redis.
	KeyPrefix = "sess:"
	// MaxAge is both the cookie max-age and the Redis TTL.
	MaxAge = 10 * 365 * 24 * time.Hour
)

// Data is the JSON payload stored per session.
type Data struct {
	UserID *uint `json:"userId,omitempty"`
}

// Session is the server-side state bound to one qid cookie. An empty ID means
// the client has no stored session yet.
type Session struct {
	ID   string
	Data Data
}

// UserID returns the authenticated user id, if any.
func (s *Session) UserID() (uint, bool) {
	if s == nil || s.Data.UserID == nil {
		return 0, false
	}
	return *s.Data.UserID, true
}

// Store persists session data.
type Store interface {
	Load(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, sess *Session) error
	Delete(ctx context.Context, id string) error
}

// RedisStore keeps sessions as JSON strings. Reads do not extend the TTL.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore returns a store using MaxAge as the key TTL.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: MaxAge}
}

func key(id string) string {
	return KeyPrefix + id
}

// Load returns an empty session (ID cleared) when the key does not exist.
func (s *RedisStore) Load(ctx context.Context, id string) (*Session, error) {
	val, err := s.rdb.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return &Session{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	sess := &Session{ID: id}
	if err := json.Unmarshal(val, &sess.Data); err != nil {
		middleware.Logger.WarnContext(ctx, "Discarding unreadable session", "error", err)
		return &Session{}, nil
	}
	return sess, nil
}

func (s *RedisStore) Save(ctx context.Context, sess *Session) error {
	if sess.ID == "" {
		return errors.New("save session: empty id")
	}
	payload, err := json.Marshal(sess.Data)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.rdb.Set(ctx, key(sess.ID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	middleware.SessionWrites.WithLabelValues("save").Inc()
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	middleware.SessionWrites.WithLabelValues("delete").Inc()
	return nil
}
