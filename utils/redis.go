package utils

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// claimTTL outlives the day a claim belongs to, whatever the timezone.
const claimTTL = 48 * time.Hour

func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(strings.TrimSpace(url))
	if err != nil {
		return nil, fmt.Errorf("NewRedisClient: failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("NewRedisClient: redis connection failed: %w", err)
	}
	return client, nil
}

// RedisClaims reserves (date, username) keys with SETNX so several bot
// processes share one submission guard.
type RedisClaims struct {
	client *redis.Client
}

func NewRedisClaims(client *redis.Client) *RedisClaims {
	return &RedisClaims{client: client}
}

func ClaimKey(date, username string) string {
	return fmt.Sprintf("standup_claim:%s:%s", date, username)
}

func (r *RedisClaims) Claim(ctx context.Context, date, username string) (bool, error) {
	ok, err := r.client.SetNX(ctx, ClaimKey(date, username), time.Now().UTC().Format(time.RFC3339), claimTTL).Result()
	if err != nil {
		return false, fmt.Errorf("Claim: failed to set %s: %w", ClaimKey(date, username), err)
	}
	return ok, nil
}

func (r *RedisClaims) Release(ctx context.Context, date, username string) error {
	if err := r.client.Del(ctx, ClaimKey(date, username)).Err(); err != nil {
		return fmt.Errorf("Release: failed to delete %s: %w", ClaimKey(date, username), err)
	}
	return nil
}
