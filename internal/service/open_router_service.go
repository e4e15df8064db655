package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fadilmartias/plan-analyzer/internal/config"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// OpenRouterService talks to any OpenAI compatible chat completions endpoint.
type OpenRouterService struct {
	client *resty.Client
	model  string
	logger *zap.Logger
}

func NewOpenRouterService(cfg *config.OpenRouterConfig, logger *zap.Logger) (*OpenRouterService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENROUTER_API_KEY not set")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(timeout).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json")

	return &OpenRouterService{
		client: client,
		model:  cfg.Model,
		logger: logger,
	}, nil
}

func (s *OpenRouterService) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	messages := make([]map[string]string, 0, 2)
	if req.System != "" {
		messages = append(messages, map[string]string{"role": "system", "content": req.System})
	}
	messages = append(messages, map[string]string{"role": "user", "content": req.User})

	body := map[string]any{
		"model":       s.model,
		"messages":    messages,
		"temperature": req.Temperature,
	}
	if req.MaxTokens > 0 {
		body["max_tokens"] = req.MaxTokens
	}
	if req.JSON {
		body["response_format"] = map[string]string{"type": "json_object"}
	}

	start := time.Now()
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(body).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("chat completion request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("chat completion failed: status %d: %s",
			resp.StatusCode(), gjson.Get(resp.String(), "error.message").String())
	}

	text := gjson.Get(resp.String(), "choices.0.message.content").String()
	if text == "" {
		return "", fmt.Errorf("no response from LLM")
	}

	s.logger.Debug("openrouter completion",
		zap.String("model", s.model),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int64("total_tokens", gjson.Get(resp.String(), "usage.total_tokens").Int()),
	)
	return text, nil
}
