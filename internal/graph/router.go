package graph

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Rohit-Gupta-126/aeromind/internal/logging"
	"github.com/Rohit-Gupta-126/aeromind/internal/metrics"
)

// RefusalAnswer is returned for questions outside the supported domains.
const RefusalAnswer = "I can only answer aerospace engineering and safety questions."

// Agent answers a routed request.
type Agent interface {
	Answer(ctx context.Context, req Request) AgentResult
}

// Router classifies a question with one generation call and dispatches it
// to the matching agent. It never fails a request.
type Router struct {
	gen         Generator
	engineering Agent
	safety      Agent
	logger      *zap.Logger
}

func NewRouter(gen Generator, engineering, safety Agent, logger *zap.Logger) *Router {
	return &Router{
		gen:         gen,
		engineering: engineering,
		safety:      safety,
		logger:      logging.OrNop(logger).Named("router"),
	}
}

// Classify returns the route for question. Gateway failures and unknown
// labels both become RouteUnsupported.
func (r *Router) Classify(ctx context.Context, question string) Route {
	reply, err := r.gen.Generate(ctx, fmt.Sprintf(routerPrompt, question))
	if err != nil {
		r.logger.Error("router LLM failed", zap.String("question", question), zap.Error(err))
		return RouteUnsupported
	}

	route := ParseRoute(reply)
	if route == RouteUnclassified {
		r.logger.Warn("invalid route returned by LLM, defaulting to unsupported",
			zap.String("reply", reply))
		return RouteUnsupported
	}
	return route
}

// Route classifies req and runs the selected agent.
func (r *Router) Route(ctx context.Context, req Request) Routed {
	route := r.Classify(ctx, req.Question)
	r.logger.Info("routing query", zap.String("question", req.Question), zap.String("route", route.String()))
	metrics.RoutesTotal.WithLabelValues(route.String()).Inc()

	routed := Routed{Request: req, Route: route}
	switch route {
	case RouteEngineering:
		routed.Result = r.engineering.Answer(ctx, req)
	case RouteSafety:
		routed.Result = r.safety.Answer(ctx, req)
	case RouteUnsupported, RouteUnclassified:
		routed.Route = RouteUnsupported
		routed.Result = AgentResult{Answer: RefusalAnswer, Confidence: ConfidenceLow, Sources: []string{}}
	}
	return routed
}
