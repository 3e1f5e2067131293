package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	lsredis "LSProject/service/storage/redis"
)

var ctx = context.Background()

func rdb() *redis.Client { return lsredis.GetRedis() }

// presence key: ls:presence:<user>
// Value: gateway node id, TTL controls the online validity period
func presenceKey(user string) string { return "ls:presence:" + user }

// PresenceOnline sets the user as online and renews the TTL
func PresenceOnline(user, gatewayID string, ttl time.Duration) error {
	return rdb().Set(ctx, presenceKey(user), gatewayID, ttl).Err()
}

// PresenceOffline actively sets the user offline (deletes the key)
func PresenceOffline(user string) error {
	return rdb().Del(ctx, presenceKey(user)).Err()
}

// PresenceLookup checks whether the user is online
func PresenceLookup(user string) (gatewayID string, online bool, err error) {
	val, err := rdb().Get(ctx, presenceKey(user)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// —— Unread counters: one hash per user, field = conversation id ——

func unreadKey(user string) string { return "ls:unread:" + user }

// UnreadIncr bumps the unread counter for a conversation the user is not viewing
func UnreadIncr(user, conversationID string) error {
	return rdb().HIncrBy(ctx, unreadKey(user), conversationID, 1).Err()
}

// UnreadClear resets the counter when the user opens the conversation
func UnreadClear(user, conversationID string) error {
	return rdb().HDel(ctx, unreadKey(user), conversationID).Err()
}

// UnreadAll returns all per-conversation unread counts for the sidebar
func UnreadAll(user string) (map[string]int64, error) {
	vals, err := rdb().HGetAll(ctx, unreadKey(user)).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(vals))
	for k, v := range vals {
		var n int64
		_, _ = fmt.Sscanf(v, "%d", &n)
		out[k] = n
	}
	return out, nil
}

// RedisUnread adapts the unread helpers to the chat service interface.
type RedisUnread struct{}

func (RedisUnread) Incr(user, chatID string) error  { return UnreadIncr(user, chatID) }
func (RedisUnread) Clear(user, chatID string) error { return UnreadClear(user, chatID) }

func (RedisUnread) All(user string) (map[string]int64, error) { return UnreadAll(user) }

// —— Like-count cache: avoid recounting on every feed render ——

func likeCountKey(postID string) string { return "ls:likes:" + postID }

// LikeCountAdjust applies the toggle delta (+1 / -1); expires so the
// database stays the source of truth.
func LikeCountAdjust(postID string, delta int64) error {
	pipe := rdb().TxPipeline()
	pipe.IncrBy(ctx, likeCountKey(postID), delta)
	pipe.Expire(ctx, likeCountKey(postID), 24*time.Hour)
	_, err := pipe.Exec(ctx)
	return err
}

// LikeCountGet returns the cached count; miss = -1 (caller falls back to DB)
func LikeCountGet(postID string) (int64, error) {
	n, err := rdb().Get(ctx, likeCountKey(postID)).Int64()
	if errors.Is(err, redis.Nil) {
		return -1, nil
	}
	return n, err
}

// RedisLikeCache adapts the like-count helpers to the feed service interface.
type RedisLikeCache struct{}

func (RedisLikeCache) Adjust(postID string, delta int64) error { return LikeCountAdjust(postID, delta) }
func (RedisLikeCache) Get(postID string) (int64, error)        { return LikeCountGet(postID) }
