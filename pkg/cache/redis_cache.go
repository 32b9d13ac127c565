package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisCache 基于Redis的TTL缓存
//
// 只做带过期时间的读穿透缓存，不承担正确性职责：
// 所有写路径必须显式调用Delete/DeletePrefix失效相关键，
// 不允许依赖TTL自然过期。
type RedisCache struct {
	client *redis.Client
	prefix string
}

// Config Redis配置
type Config struct {
	Host     string
	Port     int
	Password string
	DB       int
	Prefix   string
}

// ErrCacheMiss 缓存未命中
var ErrCacheMiss = redis.Nil

// NewRedisCache 创建Redis缓存实例
func NewRedisCache(config *Config) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", config.Host, config.Port),
		Password: config.Password,
		DB:       config.DB,
	})

	prefix := config.Prefix
	if prefix == "" {
		prefix = "ghgp:cache"
	}

	return &RedisCache{
		client: client,
		prefix: prefix,
	}
}

// Close 关闭Redis连接
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Ping 测试Redis连接
func (c *RedisCache) Ping() error {
	ctx := context.Background()
	return c.client.Ping(ctx).Err()
}

// key 拼接完整缓存键
func (c *RedisCache) key(k string) string {
	return c.prefix + ":" + k
}

// Set 写入缓存（JSON序列化），ttl为过期时间
func (c *RedisCache) Set(key string, value interface{}, ttl time.Duration) error {
	ctx := context.Background()

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("序列化缓存值失败: %v", err)
	}

	return c.client.Set(ctx, c.key(key), data, ttl).Err()
}

// Get 读取缓存并反序列化到dest，未命中返回ErrCacheMiss
func (c *RedisCache) Get(key string, dest interface{}) error {
	ctx := context.Background()

	data, err := c.client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		return err
	}

	return json.Unmarshal(data, dest)
}

// Delete 删除指定缓存键（写路径失效用）
func (c *RedisCache) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	ctx := context.Background()
	fullKeys := make([]string, 0, len(keys))
	for _, k := range keys {
		fullKeys = append(fullKeys, c.key(k))
	}
	return c.client.Del(ctx, fullKeys...).Err()
}

// DeletePrefix 按前缀批量失效，如 "summary:3:" 失效某公司全部汇总
func (c *RedisCache) DeletePrefix(prefix string) error {
	ctx := context.Background()

	var cursor uint64
	pattern := c.key(prefix) + "*"
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return nil
}
