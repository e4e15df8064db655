package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fadilmartias/plan-analyzer/internal/config"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

type GeminiService struct {
	Client         *genai.Client
	Model          string
	RequestTimeout time.Duration
	logger         *zap.Logger
}

func NewGeminiService(ctx context.Context, cfg *config.GeminiConfig, logger *zap.Logger) (*GeminiService, error) {
	return newGeminiService(ctx, cfg, genai.HTTPOptions{}, logger)
}

func newGeminiService(ctx context.Context, cfg *config.GeminiConfig, httpOptions genai.HTTPOptions, logger *zap.Logger) (*GeminiService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: httpOptions,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}

	return &GeminiService{
		Client:         client,
		Model:          model,
		RequestTimeout: timeout,
		logger:         logger,
	}, nil
}

func (s *GeminiService) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if strings.TrimSpace(req.User) == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.RequestTimeout)
	defer cancel()

	genConfig := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(req.Temperature),
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if req.System != "" {
		genConfig.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.JSON {
		genConfig.ResponseMIMEType = "application/json"
	}

	start := time.Now()
	result, err := s.Client.Models.GenerateContent(timeoutCtx, s.Model, genai.Text(req.User), genConfig)
	if err != nil {
		return "", fmt.Errorf("generate content failed: %w", err)
	}
	if err := s.validateGenerateResponse(result); err != nil {
		return "", fmt.Errorf("invalid response: %w", err)
	}

	s.logger.Debug("gemini completion",
		zap.String("model", s.Model),
		zap.Duration("elapsed", time.Since(start)),
	)
	return result.Text(), nil
}

func (s *GeminiService) validateGenerateResponse(resp *genai.GenerateContentResponse) error {
	if resp == nil {
		return fmt.Errorf("response is nil")
	}

	if len(resp.Candidates) == 0 {
		return fmt.Errorf("no candidates in response")
	}

	if resp.Candidates[0].Content == nil {
		return fmt.Errorf("candidate content is nil")
	}

	if len(resp.Candidates[0].Content.Parts) == 0 {
		return fmt.Errorf("no parts in content")
	}

	return nil
}
