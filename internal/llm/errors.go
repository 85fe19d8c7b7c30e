package llm

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Kind classifies a failed generation call.
type Kind int

const (
	KindOther Kind = iota
	KindQuotaExceeded
)

func (k Kind) String() string {
	if k == KindQuotaExceeded {
		return "quota_exceeded"
	}
	return "error"
}

// QuotaExceededMessage is the text reported when the provider quota is exhausted.
const QuotaExceededMessage = "Error: AI Model quota exceeded. Please try again later."

// ErrEmptyResponse is returned when the provider answers without any choice.
var ErrEmptyResponse = errors.New("no content in generation response")

// GenerationError is the only error type returned by Gateway.Generate.
// Its message is the user-facing degraded answer text.
type GenerationError struct {
	Kind Kind
	Err  error
}

func (e *GenerationError) Error() string {
	if e.Kind == KindQuotaExceeded {
		return QuotaExceededMessage
	}
	return fmt.Sprintf("Error generating response: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// IsQuotaExceeded reports whether err is a quota-exhaustion generation failure.
func IsQuotaExceeded(err error) bool {
	var gerr *GenerationError
	return errors.As(err, &gerr) && gerr.Kind == KindQuotaExceeded
}

func classify(err error) *GenerationError {
	var gerr *GenerationError
	if errors.As(err, &gerr) {
		return gerr
	}
	if quotaExhausted(err) {
		return &GenerationError{Kind: KindQuotaExceeded, Err: err}
	}
	return &GenerationError{Kind: KindOther, Err: err}
}

func quotaExhausted(err error) bool {
	if status.Code(err) == codes.ResourceExhausted {
		return true
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return true
	}
	msg := strings.ToUpper(err.Error())
	return strings.Contains(msg, "RESOURCE_EXHAUSTED") || strings.Contains(msg, "RESOURCEEXHAUSTED")
}
