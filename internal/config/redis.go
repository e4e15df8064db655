package config

import (
	"sync"
	"time"

	"github.com/spf13/viper"
)

// RedisConfig is optional: an empty Addr disables the report cache.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	ReportTTL time.Duration
}

var (
	redisConfig *RedisConfig
	redisOnce   sync.Once
)

func LoadRedisConfig() *RedisConfig {
	redisOnce.Do(func() {
		redisConfig = newRedisConfig(environment())
	})
	return redisConfig
}

func newRedisConfig(v *viper.Viper) *RedisConfig {
	return &RedisConfig{
		Addr:      v.GetString("redis_addr"),
		Password:  v.GetString("redis_password"),
		DB:        v.GetInt("redis_db"),
		ReportTTL: v.GetDuration("redis_report_ttl"),
	}
}
