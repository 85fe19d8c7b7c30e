package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseRoute(t *testing.T) {
	tests := []struct {
		reply string
		want  Route
	}{
		{"engineering", RouteEngineering},
		{"  Safety\n", RouteSafety},
		{"UNSUPPORTED", RouteUnsupported},
		{"engineering.", RouteUnclassified},
		{"The category is engineering", RouteUnclassified},
		{"", RouteUnclassified},
		{"Error: AI Model quota exceeded. Please try again later.", RouteUnclassified},
	}
	for _, tt := range tests {
		t.Run("Should parse "+tt.reply, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseRoute(tt.reply))
		})
	}
}

func TestRoute_String(t *testing.T) {
	assert.Equal(t, "engineering", RouteEngineering.String())
	assert.Equal(t, "safety", RouteSafety.String())
	assert.Equal(t, "unsupported", RouteUnsupported.String())
	assert.Equal(t, "unknown", RouteUnclassified.String())
}

func newObservedRouter(gen Generator, eng Agent) (*Router, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.InfoLevel)
	return NewRouter(gen, eng, SafetyAgent{}, zap.New(core)), logs
}

func TestRouter_Route(t *testing.T) {
	ctx := context.Background()

	t.Run("Should dispatch engineering questions to the engineering agent", func(t *testing.T) {
		gen := &scriptedGenerator{route: "Engineering\n", answer: `{"summary":"ok"}`}
		eng := NewEngineeringAgent(&stubRetriever{context: "ctx", sources: []string{"a.pdf"}}, gen, 3, nil)
		r, _ := newObservedRouter(gen, eng)

		routed := r.Route(ctx, Request{Question: "What is specific impulse?"})
		assert.Equal(t, RouteEngineering, routed.Route)
		assert.Equal(t, ConfidenceGrounded, routed.Result.Confidence)
		assert.Equal(t, 2, gen.calls())
	})

	t.Run("Should answer safety questions with the stub", func(t *testing.T) {
		gen := &scriptedGenerator{route: "safety"}
		r, _ := newObservedRouter(gen, nil)

		routed := r.Route(ctx, Request{Question: "What PPE is required for hydrazine?"})
		assert.Equal(t, RouteSafety, routed.Route)
		assert.Equal(t, safetyStubAnswer, routed.Result.Answer)
		assert.Equal(t, ConfidenceLow, routed.Result.Confidence)
		assert.Empty(t, routed.Result.Sources)
		assert.Equal(t, 1, gen.calls())
	})

	t.Run("Should refuse unsupported questions without another call", func(t *testing.T) {
		gen := &scriptedGenerator{route: "unsupported"}
		r, _ := newObservedRouter(gen, nil)

		routed := r.Route(ctx, Request{Question: "What's the capital of France?"})
		assert.Equal(t, RouteUnsupported, routed.Route)
		assert.Equal(t, RefusalAnswer, routed.Result.Answer)
		assert.Equal(t, ConfidenceLow, routed.Result.Confidence)
		assert.Equal(t, 1, gen.calls())
	})

	t.Run("Should normalize unknown labels with a warning", func(t *testing.T) {
		gen := &scriptedGenerator{route: "propulsion"}
		r, logs := newObservedRouter(gen, nil)

		routed := r.Route(ctx, Request{Question: "q"})
		assert.Equal(t, RouteUnsupported, routed.Route)
		assert.Equal(t, RefusalAnswer, routed.Result.Answer)
		assert.Equal(t, 1, logs.FilterLevelExact(zapcore.WarnLevel).Len())
	})

	t.Run("Should normalize gateway failures with an error log", func(t *testing.T) {
		gen := &scriptedGenerator{routeErr: errors.New("Error generating response: timeout")}
		r, logs := newObservedRouter(gen, nil)

		routed := r.Route(ctx, Request{Question: "q"})
		assert.Equal(t, RouteUnsupported, routed.Route)
		assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
	})
}
