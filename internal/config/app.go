package config

import (
	"sync"

	"github.com/spf13/viper"
)

type AppConfig struct {
	Name           string
	Env            string
	Port           string
	BaseURL        string
	LogLevel       string
	LogFormat      string
	MaxUploadBytes int64
}

var (
	appConfig *AppConfig
	appOnce   sync.Once
)

func LoadAppConfig() *AppConfig {
	appOnce.Do(func() {
		appConfig = newAppConfig(environment())
	})
	return appConfig
}

func newAppConfig(v *viper.Viper) *AppConfig {
	return &AppConfig{
		Name:           v.GetString("app_name"),
		Env:            v.GetString("app_env"),
		Port:           v.GetString("app_port"),
		BaseURL:        v.GetString("app_url"),
		LogLevel:       v.GetString("log_level"),
		LogFormat:      v.GetString("log_format"),
		MaxUploadBytes: v.GetInt64("max_upload_bytes"),
	}
}

func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}
