package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// GenerationClient defines the capability to compose an answer from a system
// prompt, the user question, and the bounded context fragments.
type GenerationClient interface {
	Generate(ctx context.Context, systemPrompt, userMessage string, contextChunks []string, temperature float64) (string, error)
	Version() string
}

// GatewayErrorKind classifies gateway failures so the orchestrator can branch
// on a closed set instead of inspecting message text.
type GatewayErrorKind string

const (
	GatewayErrorRateLimited GatewayErrorKind = "rate_limited"
	GatewayErrorAuth        GatewayErrorKind = "auth"
	GatewayErrorBadResponse GatewayErrorKind = "bad_response"
	GatewayErrorUnavailable GatewayErrorKind = "unavailable"
)

// GatewayError wraps a failure from an external gateway with its classification.
type GatewayError struct {
	Kind GatewayErrorKind
	Op   string
	Err  error
}

// NewGatewayError builds a classified gateway error for the given operation.
func NewGatewayError(kind GatewayErrorKind, op string, err error) *GatewayError {
	return &GatewayError{Kind: kind, Op: op, Err: err}
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

var rateLimitMarkers = []string{"rate limit", "límite de tasa"}

// IsRateLimited reports whether err represents throttling by a gateway.
// The structured kind wins; the case-insensitive message match is kept so
// errors raised outside our adapters still classify correctly.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	var gwErr *GatewayError
	if errors.As(err, &gwErr) && gwErr.Kind == GatewayErrorRateLimited {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range rateLimitMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
