package config

import (
	"sync"
	"time"

	"github.com/spf13/viper"
)

type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

var (
	geminiConfig *GeminiConfig
	geminiOnce   sync.Once
)

func LoadGeminiConfig() *GeminiConfig {
	geminiOnce.Do(func() {
		geminiConfig = newGeminiConfig(environment())
	})
	return geminiConfig
}

func newGeminiConfig(v *viper.Viper) *GeminiConfig {
	return &GeminiConfig{
		APIKey:  v.GetString("gemini_api_key"),
		Model:   v.GetString("gemini_model"),
		Timeout: v.GetDuration("gemini_timeout"),
	}
}
