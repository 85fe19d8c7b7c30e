package graph

const (
	ConfidenceLow              = "LOW"
	ConfidenceNoDocuments      = "LOW (no documents)"
	ConfidenceGenerationFailed = "LOW (generation failed)"
	ConfidenceGrounded         = "MEDIUM (document grounded)"
	ConfidenceVerified         = "HIGH (verified)"
	ConfidencePartial          = "MEDIUM (partial verification)"
	ConfidenceVerifyFailed     = "LOW (verification failed)"
)

// FinalConfidence derives the response confidence from the agent's label
// and the verification result. Statuses other than PASS, PARTIAL and FAIL
// keep the agent's label.
func FinalConfidence(agent string, v *Verification) string {
	if v == nil {
		return agent
	}
	switch v.Status {
	case StatusPass:
		return ConfidenceVerified
	case StatusPartial:
		return ConfidencePartial
	case StatusFail:
		return ConfidenceVerifyFailed
	default:
		return agent
	}
}
