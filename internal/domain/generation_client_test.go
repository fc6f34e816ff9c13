package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsRateLimited_StructuredKind(t *testing.T) {
	err := NewGatewayError(GatewayErrorRateLimited, "azopenai.generate", errors.New("429 too many requests"))
	assert.True(t, IsRateLimited(err))
}

func TestIsRateLimited_WrappedStructuredKind(t *testing.T) {
	inner := NewGatewayError(GatewayErrorRateLimited, "azopenai.generate", errors.New("quota exhausted"))
	err := fmt.Errorf("pipeline failed: %w", inner)
	assert.True(t, IsRateLimited(err))
}

func TestIsRateLimited_MessageMatch(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"english marker", errors.New("Rate Limit exceeded, retry later"), true},
		{"spanish marker", errors.New("Límite de tasa alcanzado. Espera un momento."), true},
		{"mixed case", errors.New("RATE LIMIT reached"), true},
		{"other failure", errors.New("connection refused"), false},
		{"structured non rate limit", NewGatewayError(GatewayErrorAuth, "azsearch.search", errors.New("403 forbidden")), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsRateLimited(tc.err))
		})
	}
}

func TestIsRateLimited_NilError(t *testing.T) {
	assert.False(t, IsRateLimited(nil))
}

func TestGatewayError_Unwrap(t *testing.T) {
	inner := errors.New("boom")
	err := NewGatewayError(GatewayErrorUnavailable, "azsearch.search", inner)
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "azsearch.search")
	assert.Contains(t, err.Error(), "boom")
}
