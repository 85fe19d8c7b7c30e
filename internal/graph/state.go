// Package graph runs the question answering workflow: routing, domain
// agents, verification and confidence aggregation.
package graph

import "context"

// Generator is a single text generation call. Errors carry user-facing text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ContextRetriever returns joined chunk context and its sources, or empty
// values when nothing could be retrieved.
type ContextRetriever interface {
	Retrieve(ctx context.Context, query string, k int) (string, []string)
}

// Request is the first workflow stage.
type Request struct {
	Question string
}

// AgentResult is what a domain agent produces for a request.
type AgentResult struct {
	Answer     string
	Confidence string
	Sources    []string
	Context    string
	// Degraded is set when generation failed and Answer holds the failure text.
	Degraded bool
}

// Routed is a request after routing and agent dispatch. Route is never
// RouteUnclassified.
type Routed struct {
	Request
	Route  Route
	Result AgentResult
}

type VerificationStatus string

const (
	StatusPass    VerificationStatus = "PASS"
	StatusPartial VerificationStatus = "PARTIAL"
	StatusFail    VerificationStatus = "FAIL"
	StatusError   VerificationStatus = "ERROR"
	StatusSkipped VerificationStatus = "SKIPPED"
)

type Verification struct {
	Status VerificationStatus
	Notes  string
}

// Outcome is the final workflow stage. Verification is nil when the
// verifier did not run.
type Outcome struct {
	Routed
	Verification *Verification
	Confidence   string
}

// Response is the externally visible answer to a question.
type Response struct {
	Question           string   `json:"question"`
	RouteSelected      string   `json:"route_selected"`
	Answer             string   `json:"answer"`
	Confidence         string   `json:"confidence"`
	Sources            []string `json:"sources"`
	VerificationStatus *string  `json:"verification_status"`
	VerificationNotes  *string  `json:"verification_notes"`
}
