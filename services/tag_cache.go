package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"notero/model"
)

// TagCacheTTL is deliberately short: the cache only exists to absorb bursts
// of identical tag reads, not to serve stale tags for long.
const TagCacheTTL = 10 * time.Second

// TagCache is a redis-backed, short-TTL cache of tag documents sitting in
// front of the tag store's reads.
type TagCache struct {
	client *redis.Client
}

// NewTagCache connects to redis and verifies the connection. The cache is
// optional infrastructure; callers that get an error here run without it.
func NewTagCache(redisURL string) (*TagCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &TagCache{client: client}, nil
}

func tagKey(uid string) string {
	return "tag:" + uid
}

// GetTag returns the cached tag or nil on a miss.
func (tc *TagCache) GetTag(ctx context.Context, uid string) (*model.Tag, error) {
	data, err := tc.client.Get(ctx, tagKey(uid)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tag from cache: %w", err)
	}

	var tag model.Tag
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached tag: %w", err)
	}
	return &tag, nil
}

// SetTag stores the tag for TagCacheTTL.
func (tc *TagCache) SetTag(ctx context.Context, tag *model.Tag) error {
	if tag == nil {
		return fmt.Errorf("cannot cache nil tag")
	}

	data, err := json.Marshal(tag)
	if err != nil {
		return fmt.Errorf("failed to marshal tag: %w", err)
	}

	if err := tc.client.Set(ctx, tagKey(tag.UID), data, TagCacheTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache tag: %w", err)
	}
	return nil
}

// InvalidateTag drops a cached entry, used after writes that change a tag.
func (tc *TagCache) InvalidateTag(ctx context.Context, uid string) error {
	return tc.client.Del(ctx, tagKey(uid)).Err()
}

// Close releases the redis connection.
func (tc *TagCache) Close() error {
	return tc.client.Close()
}
