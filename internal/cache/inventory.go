package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	UserKeyPrefix = "user:%d"
	PostKeyPrefix = "post:%d"
)

const (
	UserTTL = 5 * time.Minute
	PostTTL = 30 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func PostKey(postID uint) string {
	return fmt.Sprintf(PostKeyPrefix, postID)
}

// fenceTTL outlives any fetch, so a fence never expires between the read of
// its version and the write-back that checks it.
const fenceTTL = time.Hour

func fenceKey(key string) string {
	return key + ":v"
}

// Aside tries Redis first; on a miss it calls fetch, which must populate
// dest, and stores the result with ttl. Cache failures fall through to fetch.
// The write-back is skipped when key was invalidated while fetch ran, so a
// row read just before a delete is not cached after it.
func Aside(ctx context.Context, key string, dest any, ttl time.Duration, fetch func() error) error {
	var version int64
	if client != nil {
		if raw, err := client.Get(ctx, key).Bytes(); err == nil && json.Unmarshal(raw, dest) == nil {
			return nil
		}
		version, _ = client.Get(ctx, fenceKey(key)).Int64()
	}

	if err := fetch(); err != nil {
		return err
	}

	if client != nil {
		if b, err := json.Marshal(dest); err == nil {
			store(ctx, key, b, ttl, version)
		}
	}
	return nil
}

// store writes value under key only while the fence still holds version.
func store(ctx context.Context, key string, value []byte, ttl time.Duration, version int64) {
	fence := fenceKey(key)
	_ = client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, fence).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, key, value, ttl)
			return nil
		})
		return err
	}, fence)
}

// Invalidate drops key and bumps its fence so in-flight Aside calls do not
// repopulate it.
func Invalidate(ctx context.Context, key string) {
	if client == nil {
		return
	}
	fence := fenceKey(key)
	_, _ = client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, fence)
		p.Expire(ctx, fence, fenceTTL)
		p.Del(ctx, key)
		return nil
	})
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidatePost(ctx context.Context, postID uint) {
	Invalidate(ctx, PostKey(postID))
}
