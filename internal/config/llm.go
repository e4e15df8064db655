package config

import (
	"sync"

	"github.com/spf13/viper"
)

// LLMConfig selects the model provider and the sampling settings shared by all providers.
type LLMConfig struct {
	Provider    string
	Temperature float32
	MaxTokens   int
}

var (
	llmConfig *LLMConfig
	llmOnce   sync.Once
)

func LoadLLMConfig() *LLMConfig {
	llmOnce.Do(func() {
		llmConfig = newLLMConfig(environment())
	})
	return llmConfig
}

func newLLMConfig(v *viper.Viper) *LLMConfig {
	return &LLMConfig{
		Provider:    v.GetString("llm_provider"),
		Temperature: float32(v.GetFloat64("llm_temperature")),
		MaxTokens:   v.GetInt("llm_max_tokens"),
	}
}
