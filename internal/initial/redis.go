package initial

import (
	"context"
	"fmt"
	"time"

	"WrapDesk/internal/config"
	pkgRedis "WrapDesk/pkg/redis"
	"WrapDesk/pkg/zlog"

	"github.com/redis/go-redis/v9"
)

// InitRedis 建立 Redis 连接，未启用或连接失败时统计缓存自动退化为直查数据库
func InitRedis() {
	conf := config.GetConfig()
	if !conf.RedisConfig.Enabled {
		zlog.Info("Redis 未启用，统计缓存退化为直查")
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", conf.RedisConfig.Host, conf.RedisConfig.Port),
		Password:     conf.RedisConfig.Password,
		DB:           conf.RedisConfig.DB,
		PoolSize:     conf.RedisConfig.PoolSize,
		MinIdleConns: conf.RedisConfig.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		zlog.Error("Redis 连接失败: " + err.Error())
		return
	}

	pkgRedis.SetClient(client)
	zlog.Info("Redis 连接成功")
}
