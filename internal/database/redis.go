package database

import (
	"ghgp/pkg/cache"
	"ghgp/pkg/config"
	"sync"
)

var (
	redisCacheInstance *cache.RedisCache
	redisCacheOnce     sync.Once
)

// GetCache 获取Redis缓存的单例实例
func GetCache() *cache.RedisCache {
	redisCacheOnce.Do(func() {
		cfg := config.GetConfig()
		redisCacheInstance = cache.NewRedisCache(&cache.Config{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
	})
	return redisCacheInstance
}

// CloseCache 关闭Redis连接
func CloseCache() error {
	if redisCacheInstance != nil {
		return redisCacheInstance.Close()
	}
	return nil
}
