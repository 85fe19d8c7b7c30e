package graph

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Rohit-Gupta-126/aeromind/internal/logging"
)

// NotFoundAnswer is the answer when retrieval finds no documents.
const NotFoundAnswer = "Information not found in documents."

// EngineeringAgent answers from retrieved document context only.
type EngineeringAgent struct {
	retriever ContextRetriever
	gen       Generator
	topK      int
	logger    *zap.Logger
}

func NewEngineeringAgent(retriever ContextRetriever, gen Generator, topK int, logger *zap.Logger) *EngineeringAgent {
	return &EngineeringAgent{
		retriever: retriever,
		gen:       gen,
		topK:      topK,
		logger:    logging.OrNop(logger).Named("engineering"),
	}
}

// Answer retrieves context and asks for a JSON answer grounded in it. No
// generation call is made when retrieval returns no sources.
func (a *EngineeringAgent) Answer(ctx context.Context, req Request) AgentResult {
	docContext, sources := a.retriever.Retrieve(ctx, req.Question, a.topK)
	if len(sources) == 0 {
		return AgentResult{
			Answer:     NotFoundAnswer,
			Confidence: ConfidenceNoDocuments,
			Sources:    []string{},
			Context:    docContext,
		}
	}

	reply, err := a.gen.Generate(ctx, fmt.Sprintf(engineeringPrompt, docContext, req.Question))
	if err != nil {
		a.logger.Error("answer generation failed", zap.String("question", req.Question), zap.Error(err))
		return AgentResult{
			Answer:     err.Error(),
			Confidence: ConfidenceGenerationFailed,
			Sources:    sources,
			Context:    docContext,
			Degraded:   true,
		}
	}

	return AgentResult{
		Answer:     stripFence(reply),
		Confidence: ConfidenceGrounded,
		Sources:    sources,
		Context:    docContext,
	}
}

// stripFence returns the body of the first fenced block, preferring a json
// fence. Text without a fence is returned unchanged.
func stripFence(s string) string {
	for _, open := range []string{"```json", "```"} {
		_, rest, ok := strings.Cut(s, open)
		if !ok {
			continue
		}
		body, _, _ := strings.Cut(rest, "```")
		return strings.TrimSpace(body)
	}
	return s
}
