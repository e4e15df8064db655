// Package evaluator grades business plans with a generative model and
// normalizes the reply into a stable Evaluation.
package evaluator

import (
	"context"
	"time"

	"github.com/fadilmartias/plan-analyzer/internal/service"
	"go.uber.org/zap"
)

type Evaluator struct {
	llm         service.LLMServiceInterface
	logger      *zap.Logger
	temperature float32
	maxTokens   int
}

type Option func(*Evaluator)

func WithTemperature(t float32) Option {
	return func(e *Evaluator) {
		if t >= 0 {
			e.temperature = t
		}
	}
}

func WithMaxTokens(n int) Option {
	return func(e *Evaluator) {
		if n > 0 {
			e.maxTokens = n
		}
	}
}

func New(llm service.LLMServiceInterface, logger *zap.Logger, opts ...Option) *Evaluator {
	e := &Evaluator{
		llm:         llm,
		logger:      logger,
		temperature: 0.3,
		maxTokens:   1500,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Evaluate never fails: model errors and unusable replies produce the
// fallback Evaluation.
func (e *Evaluator) Evaluate(ctx context.Context, text, studentName, projectTitle string) Evaluation {
	log := e.logger.With(zap.String("student", studentName), zap.String("project", projectTitle))
	start := time.Now()

	reply, err := e.llm.Complete(ctx, service.CompletionRequest{
		System:      systemPrompt,
		User:        buildUserPrompt(text, studentName, projectTitle),
		Temperature: e.temperature,
		MaxTokens:   e.maxTokens,
		JSON:        true,
	})
	if err != nil {
		log.Warn("model call failed, using fallback evaluation", zap.Error(err))
		return FallbackEvaluation()
	}

	ev, err := Normalize(reply)
	if err != nil {
		log.Warn("model reply unusable, using fallback evaluation", zap.Error(err), zap.Int("reply_len", len(reply)))
		return FallbackEvaluation()
	}

	log.Info("plan evaluated",
		zap.Bool("document_valid", ev.DocumentValid),
		zap.Int("score_global", ev.ScoreGlobal),
		zap.Duration("elapsed", time.Since(start)),
	)
	return ev
}
