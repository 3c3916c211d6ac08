package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aquaflow/aquaflow-backend/internal/models"
)

var RedisClient *redis.Client

// InitRedis initializes the Redis client. An empty URL leaves the cache
// disabled; every helper then becomes a no-op or a miss.
func InitRedis(redisURL string) error {
	if redisURL == "" {
		return nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	RedisClient = redis.NewClient(opt)

	ctx := context.Background()
	if _, err := RedisClient.Ping(ctx).Result(); err != nil {
		RedisClient = nil
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return nil
}

// CacheDriverLocation stores the newest location sample for a driver.
func CacheDriverLocation(ctx context.Context, location *models.DriverLocation) error {
	if RedisClient == nil {
		return nil
	}

	data, err := json.Marshal(location)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("driver:location:%d", location.DriverID)
	return RedisClient.Set(ctx, key, data, time.Hour).Err()
}

// GetCachedDriverLocation retrieves the newest cached sample for a driver.
// A miss or a disabled cache returns (nil, nil); callers fall back to storage.
func GetCachedDriverLocation(ctx context.Context, driverID uint) (*models.DriverLocation, error) {
	if RedisClient == nil {
		return nil, nil
	}

	key := fmt.Sprintf("driver:location:%d", driverID)
	data, err := RedisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, err
	}

	var location models.DriverLocation
	if err := json.Unmarshal([]byte(data), &location); err != nil {
		return nil, err
	}

	return &location, nil
}
