package graph

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Rohit-Gupta-126/aeromind/internal/logging"
	"github.com/Rohit-Gupta-126/aeromind/internal/metrics"
)

const (
	skippedNotes      = "No answer or context to verify."
	verifyFailedNotes = "Verification process failed."
)

// Verifier asks the model whether an answer is supported by its context.
type Verifier struct {
	gen    Generator
	logger *zap.Logger
}

func NewVerifier(gen Generator, logger *zap.Logger) *Verifier {
	return &Verifier{gen: gen, logger: logging.OrNop(logger).Named("verifier")}
}

// Verify judges answer against docContext. It makes no generation call when
// either is empty.
func (v *Verifier) Verify(ctx context.Context, answer, docContext string) Verification {
	if answer == "" || docContext == "" {
		v.logger.Info("skipping verification: no answer or context")
		return v.record(Verification{Status: StatusSkipped, Notes: skippedNotes})
	}

	reply, err := v.gen.Generate(ctx, fmt.Sprintf(verifierPrompt, docContext, answer))
	if err != nil {
		v.logger.Error("verifier LLM failed", zap.Error(err))
		return v.record(Verification{Status: StatusError, Notes: verifyFailedNotes})
	}

	result := parseVerdict(reply)
	if result.Status != StatusPass {
		v.logger.Warn("verification failed or partial",
			zap.String("status", string(result.Status)),
			zap.String("notes", result.Notes))
	} else {
		v.logger.Info("verification passed")
	}
	return v.record(result)
}

func (v *Verifier) record(result Verification) Verification {
	label := string(result.Status)
	switch result.Status {
	case StatusPass, StatusPartial, StatusFail, StatusError, StatusSkipped:
	default:
		label = "OTHER"
	}
	metrics.VerificationsTotal.WithLabelValues(label).Inc()
	return result
}

// parseVerdict reads the first Status: and Notes: lines of reply. Labels must
// start their line; indented labels are ignored. Without a Status: line the
// verdict is FAIL and the notes are the whole reply.
func parseVerdict(reply string) Verification {
	var (
		status   string
		notes    string
		hasState bool
		hasNotes bool
	)
	for _, line := range strings.Split(strings.TrimSpace(reply), "\n") {
		line = strings.TrimRight(line, "\r")
		if v, ok := strings.CutPrefix(line, "Status:"); ok && !hasState {
			status, hasState = strings.TrimSpace(v), true
		}
		if v, ok := strings.CutPrefix(line, "Notes:"); ok && !hasNotes {
			notes, hasNotes = strings.TrimSpace(v), true
		}
	}
	if !hasState {
		return Verification{Status: StatusFail, Notes: reply}
	}
	if !hasNotes {
		notes = reply
	}
	return Verification{Status: VerificationStatus(status), Notes: notes}
}
