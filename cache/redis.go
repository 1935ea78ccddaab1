package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/chaos-io/bgcut/config"
	"github.com/chaos-io/bgcut/model"
	"github.com/chaos-io/bgcut/util"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "bgcut:result:"

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(cfg *config.RedisConfig) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &RedisCache{
		client: client,
		ttl:    cfg.TTL,
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Key 由输入图片 md5 和处理参数组成
func Key(md5, settingsKey string) string {
	return md5 + ":" + settingsKey
}

// GetResult 读取缓存，未命中时返回 nil, nil
func (c *RedisCache) GetResult(ctx context.Context, key string) (*model.RemoveResult, error) {
	data, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var result model.RemoveResult
	if err := json.Unmarshal(data, &result); err != nil {
		util.Logger.Error("failed to unmarshal cached result",
			zap.String("key", key), zap.Error(err))
		return nil, err
	}

	return &result, nil
}

func (c *RedisCache) SetResult(ctx context.Context, key string, result *model.RemoveResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, keyPrefix+key, data, c.ttl).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
