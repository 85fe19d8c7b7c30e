package graph

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Rohit-Gupta-126/aeromind/internal/logging"
)

const (
	noAnswer            = "No answer generated."
	generationSkipNotes = "Answer generation failed; nothing to verify."
)

// AnswerFormatter renders an agent answer for display.
type AnswerFormatter interface {
	Format(answer string) string
}

// Workflow runs one question through routing, answering and verification.
type Workflow struct {
	router    *Router
	verifier  *Verifier
	formatter AnswerFormatter
	logger    *zap.Logger
}

func NewWorkflow(router *Router, verifier *Verifier, formatter AnswerFormatter, logger *zap.Logger) *Workflow {
	return &Workflow{
		router:    router,
		verifier:  verifier,
		formatter: formatter,
		logger:    logging.OrNop(logger).Named("workflow"),
	}
}

// Run answers question. It always returns a response; failures along the
// way lower the confidence instead of aborting.
func (w *Workflow) Run(ctx context.Context, question string) Response {
	start := time.Now()
	req := Request{Question: question}
	routed := w.router.Route(ctx, req)
	outcome := w.verify(ctx, routed)
	resp := w.respond(outcome)

	w.logger.Info("workflow complete",
		zap.String("question", question),
		zap.String("route", resp.RouteSelected),
		zap.String("confidence", resp.Confidence),
		zap.Duration("duration", time.Since(start)))
	return resp
}

// verify runs the verifier for answered engineering questions and derives
// the final confidence.
func (w *Workflow) verify(ctx context.Context, routed Routed) Outcome {
	outcome := Outcome{Routed: routed, Confidence: routed.Result.Confidence}
	if routed.Route != RouteEngineering || routed.Result.Answer == "" {
		return outcome
	}

	var v Verification
	if routed.Result.Degraded {
		v = Verification{Status: StatusSkipped, Notes: generationSkipNotes}
	} else {
		v = w.verifier.Verify(ctx, routed.Result.Answer, routed.Result.Context)
	}
	outcome.Verification = &v
	outcome.Confidence = FinalConfidence(routed.Result.Confidence, &v)
	return outcome
}

func (w *Workflow) respond(o Outcome) Response {
	resp := Response{
		Question:      o.Question,
		RouteSelected: o.Route.String(),
		Answer:        noAnswer,
		Confidence:    o.Confidence,
		Sources:       o.Result.Sources,
	}
	if o.Result.Answer != "" {
		resp.Answer = w.formatter.Format(o.Result.Answer)
	}
	if resp.Confidence == "" {
		resp.Confidence = ConfidenceLow
	}
	if resp.Sources == nil {
		resp.Sources = []string{}
	}
	if o.Verification != nil {
		status, notes := string(o.Verification.Status), o.Verification.Notes
		resp.VerificationStatus = &status
		resp.VerificationNotes = &notes
	}
	return resp
}
