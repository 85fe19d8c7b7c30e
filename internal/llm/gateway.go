// Package llm wraps single calls to the text-generation provider.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Rohit-Gupta-126/aeromind/internal/config"
	"github.com/Rohit-Gupta-126/aeromind/internal/logging"
	"github.com/Rohit-Gupta-126/aeromind/internal/metrics"
)

const systemInstruction = "You are a careful aerospace engineering assistant. " +
	"Be conservative, factual, and clear. " +
	"If information is uncertain, say so explicitly."

// Gateway issues one generation call per Generate with fixed sampling
// parameters. It never retries.
type Gateway struct {
	model       llms.Model
	temperature float64
	maxTokens   int
	timeout     time.Duration
	limiter     *rate.Limiter
	logger      *zap.Logger
}

// NewGemini creates the Gemini client used for both generation and embeddings.
func NewGemini(ctx context.Context, cfg config.LLMConfig) (*googleai.GoogleAI, error) {
	client, err := googleai.New(ctx,
		googleai.WithAPIKey(cfg.APIKey),
		googleai.WithDefaultModel(cfg.Model),
		googleai.WithDefaultEmbeddingModel(cfg.EmbeddingModel),
	)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return client, nil
}

// New returns a Gateway over model. A zero RequestsPerMinute disables
// client-side rate limiting.
func New(model llms.Model, cfg config.LLMConfig, logger *zap.Logger) *Gateway {
	g := &Gateway{
		model:       model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxOutputTokens,
		timeout:     cfg.Timeout,
		logger:      logging.OrNop(logger).Named("llm"),
	}
	if cfg.RequestsPerMinute > 0 {
		g.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}
	return g
}

// Generate returns the model's text for prompt. Failures are always a
// *GenerationError whose message is safe to show as a degraded answer.
func (g *Gateway) Generate(ctx context.Context, prompt string) (string, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", g.fail(fmt.Errorf("rate limiter: %w", err))
		}
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := g.model.GenerateContent(ctx,
		[]llms.MessageContent{
			llms.TextParts(llms.ChatMessageTypeSystem, systemInstruction),
			llms.TextParts(llms.ChatMessageTypeHuman, prompt),
		},
		llms.WithTemperature(g.temperature),
		llms.WithMaxTokens(g.maxTokens),
	)
	metrics.LLMCallDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return "", g.fail(err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", g.fail(ErrEmptyResponse)
	}

	metrics.LLMCallsTotal.WithLabelValues("success").Inc()
	return resp.Choices[0].Content, nil
}

func (g *Gateway) fail(err error) *GenerationError {
	gerr := classify(err)
	metrics.LLMCallsTotal.WithLabelValues(gerr.Kind.String()).Inc()
	if gerr.Kind == KindQuotaExceeded {
		g.logger.Error("generation quota exceeded", zap.Error(err))
	} else {
		g.logger.Warn("generation failed", zap.Error(err))
	}
	return gerr
}
