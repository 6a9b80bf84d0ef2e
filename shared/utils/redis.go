package utils

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-redis/redis/v8"
)

var (
	// RedisClient is the shared Redis client, nil when Redis is not configured
	RedisClient *redis.Client
	ctx         = context.Background()
)

// fingerprintTTL bounds how long a skip decision can outlive the analysis
// that produced it.
const fingerprintTTL = 24 * time.Hour

// InitRedis initializes the Redis client
func InitRedis() error {
	redisHost := os.Getenv("REDIS_HOST")
	if redisHost == "" {
		redisHost = "localhost"
	}

	redisPort := os.Getenv("REDIS_PORT")
	if redisPort == "" {
		redisPort = "6379"
	}

	addr := fmt.Sprintf("%s:%s", redisHost, redisPort)

	RedisClient = redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     "",
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	if _, err := RedisClient.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	return nil
}

// fingerprintKey builds the cache key for a contract's last analyzed fingerprint
func fingerprintKey(tenantID, contractID string) string {
	return fmt.Sprintf("analysis:last:%s:%s", tenantID, contractID)
}

// CacheLastFingerprint records the content fingerprint of the most recent
// analysis for a contract. Cache failures are non-critical; the caller may
// ignore the error.
func CacheLastFingerprint(tenantID, contractID, fingerprint string) error {
	if RedisClient == nil {
		return fmt.Errorf("Redis client not initialized")
	}
	return RedisClient.Set(ctx, fingerprintKey(tenantID, contractID), fingerprint, fingerprintTTL).Err()
}

// GetLastFingerprint returns the cached fingerprint for a contract, or ""
// when none is cached. Used to skip re-analysis of unchanged contract text.
func GetLastFingerprint(tenantID, contractID string) string {
	if RedisClient == nil {
		return ""
	}
	val, err := RedisClient.Get(ctx, fingerprintKey(tenantID, contractID)).Result()
	if err != nil {
		return ""
	}
	return val
}

// GetRedisClient returns the Redis client instance (for advanced operations)
func GetRedisClient() *redis.Client {
	return RedisClient
}

// CloseRedis closes the Redis connection
func CloseRedis() error {
	if RedisClient != nil {
		return RedisClient.Close()
	}
	return nil
}
