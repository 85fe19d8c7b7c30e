package graph

import "context"

const safetyStubAnswer = "Safety agent is not yet implemented. Please check back later."

// SafetyAgent is a placeholder that never consults documents.
type SafetyAgent struct{}

func (SafetyAgent) Answer(context.Context, Request) AgentResult {
	return AgentResult{Answer: safetyStubAnswer, Confidence: ConfidenceLow, Sources: []string{}}
}
