package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextLogger_WithContextAddsScopedFields(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))
	cl := NewContextLoggerFrom("test-service", base)

	ctx := WithRequestID(context.Background(), "req-123")
	ctx = WithPipelineStage(ctx, "search")
	cl.WithContext(ctx).Info("searching")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "test-service", record["service"])
	assert.Equal(t, "req-123", record[string(RequestIDKey)])
	assert.Equal(t, "search", record[string(PipelineStageKey)])
}

func TestContextLogger_BareContextLogsServiceOnly(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))
	cl := NewContextLoggerFrom("test-service", base)

	cl.WithContext(context.Background()).Info("plain")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "test-service", record["service"])
	assert.NotContains(t, record, string(RequestIDKey))
	assert.NotContains(t, record, string(PipelineStageKey))
}

func TestNewContextLoggerFrom_SharesSuppliedHandler(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))
	cl := NewContextLoggerFrom("test-service", base)

	// Pipeline records must land on the process handler chain rather than
	// a private stdout handler, so OTLP export covers them too.
	cl.WithContext(context.Background()).Info("routed")
	assert.Contains(t, buf.String(), "routed")
}

func TestNewContextLoggerFrom_NilFallsBack(t *testing.T) {
	cl := NewContextLoggerFrom("test-service", nil)
	require.NotNil(t, cl)
	require.NotNil(t, cl.WithContext(context.Background()))
}
