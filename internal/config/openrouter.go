package config

import (
	"sync"
	"time"

	"github.com/spf13/viper"
)

type OpenRouterConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

var (
	openRouterConfig *OpenRouterConfig
	openRouterOnce   sync.Once
)

func LoadOpenRouterConfig() *OpenRouterConfig {
	openRouterOnce.Do(func() {
		openRouterConfig = newOpenRouterConfig(environment())
	})
	return openRouterConfig
}

func newOpenRouterConfig(v *viper.Viper) *OpenRouterConfig {
	return &OpenRouterConfig{
		APIKey:  v.GetString("openrouter_api_key"),
		BaseURL: v.GetString("openrouter_base_url"),
		Model:   v.GetString("openrouter_model"),
		Timeout: v.GetDuration("openrouter_timeout"),
	}
}
