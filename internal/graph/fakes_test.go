package graph

import (
	"context"
	"strings"
)

// scriptedGenerator answers each prompt kind with a fixed reply or error.
type scriptedGenerator struct {
	route      string
	routeErr   error
	answer     string
	answerErr  error
	verdict    string
	verdictErr error

	prompts []string
}

func (g *scriptedGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	switch {
	case strings.Contains(prompt, "query router"):
		return g.route, g.routeErr
	case strings.Contains(prompt, "strict technical verifier"):
		return g.verdict, g.verdictErr
	default:
		return g.answer, g.answerErr
	}
}

func (g *scriptedGenerator) calls() int { return len(g.prompts) }

type stubRetriever struct {
	context string
	sources []string
	gotK    int
}

func (r *stubRetriever) Retrieve(_ context.Context, _ string, k int) (string, []string) {
	r.gotK = k
	if r.sources == nil {
		return r.context, []string{}
	}
	return r.context, r.sources
}

type identityFormatter struct{}

func (identityFormatter) Format(s string) string { return s }
