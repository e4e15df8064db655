package config

import (
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

var (
	env     *viper.Viper
	envOnce sync.Once
)

// environment returns the process-wide viper instance. Values come from
// configs/config.yaml when present and are overridden by environment variables.
func environment() *viper.Viper {
	envOnce.Do(func() {
		env = viper.New()
		env.SetConfigName("config")
		env.SetConfigType("yaml")
		env.AddConfigPath("./configs")
		env.AddConfigPath(".")
		env.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
		env.AutomaticEnv()
		setDefaults(env)

		if err := env.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				log.Printf("Warning: could not read config file: %v", err)
			}
		}
	})
	return env
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "plan-analyzer")
	v.SetDefault("app_env", "development")
	v.SetDefault("app_port", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("max_upload_bytes", 15*1024*1024)

	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_sslmode", "disable")
	v.SetDefault("db_timezone", "UTC")

	v.SetDefault("llm_provider", "gemini")
	v.SetDefault("llm_temperature", 0.3)
	v.SetDefault("llm_max_tokens", 1500)

	v.SetDefault("gemini_model", "gemini-2.5-flash")
	v.SetDefault("gemini_timeout", 90*time.Second)

	v.SetDefault("openrouter_base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("openrouter_model", "openai/gpt-4o-mini")
	v.SetDefault("openrouter_timeout", 90*time.Second)

	v.SetDefault("storage_endpoint", "localhost:9000")
	v.SetDefault("storage_bucket", "lancement")
	v.SetDefault("storage_use_ssl", false)

	v.SetDefault("redis_db", 0)
	v.SetDefault("redis_report_ttl", 24*time.Hour)

	v.SetDefault("worker_count", 4)
	v.SetDefault("worker_queue_size", 128)
	v.SetDefault("worker_process_timeout", 5*time.Minute)
	v.SetDefault("fetch_timeout", 30*time.Second)
}
