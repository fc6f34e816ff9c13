package azopenai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"manuals-rag/internal/domain"
)

// Client generates answers through an Azure OpenAI chat deployment.
type Client struct {
	client     *openai.Client
	deployment string
	limiter    *rate.Limiter
}

// NewClient builds a generation client bound to a single deployment.
// requestsPerSecond throttles outbound calls client-side so concurrent chat
// sessions queue instead of tripping the service quota; there are no retries.
func NewClient(endpoint, apiKey, deployment string, requestsPerSecond float64, httpClient *http.Client) *Client {
	cfg := openai.DefaultAzureConfig(apiKey, endpoint)
	cfg.AzureModelMapperFunc = func(model string) string {
		return deployment
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}

	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}

	return &Client{
		client:     openai.NewClientWithConfig(cfg),
		deployment: deployment,
		limiter:    rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// Generate sends the system prompt, the context fragments, and the question
// to the chat deployment and returns the assistant message.
func (c *Client) Generate(ctx context.Context, systemPrompt, userMessage string, contextChunks []string, temperature float64) (string, error) {
	const op = "azopenai.generate"

	if err := c.limiter.Wait(ctx); err != nil {
		return "", domain.NewGatewayError(domain.GatewayErrorUnavailable, op, fmt.Errorf("throttle wait interrupted: %w", err))
	}

	// The request struct marshals a zero temperature as absent, which would
	// make the service fall back to its own default. go-openai documents
	// math.SmallestNonzeroFloat32 as the stand-in for an explicit 0.
	wireTemperature := float32(temperature)
	if wireTemperature == 0 {
		wireTemperature = math.SmallestNonzeroFloat32
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.deployment,
		Temperature: wireTemperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildUserMessage(userMessage, contextChunks)},
		},
	})
	if err != nil {
		return "", classify(op, err)
	}
	if len(resp.Choices) == 0 {
		return "", domain.NewGatewayError(domain.GatewayErrorBadResponse, op, errors.New("chat completion returned no choices"))
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Version returns the wrapped deployment name.
func (c *Client) Version() string {
	return c.deployment
}

// buildUserMessage embeds the numbered manual fragments ahead of the question
// so the model answers against the supplied context only.
func buildUserMessage(question string, contextChunks []string) string {
	var sb strings.Builder
	sb.WriteString("Contexto de los manuales:\n\n")
	for i, chunk := range contextChunks {
		sb.WriteString(fmt.Sprintf("[Fragmento %d]\n%s\n\n", i+1, chunk))
	}
	sb.WriteString("Pregunta: ")
	sb.WriteString(question)
	return sb.String()
}

func classify(op string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests:
			return domain.NewGatewayError(domain.GatewayErrorRateLimited, op, err)
		case http.StatusUnauthorized, http.StatusForbidden:
			return domain.NewGatewayError(domain.GatewayErrorAuth, op, err)
		}
	}
	return domain.NewGatewayError(domain.GatewayErrorUnavailable, op, err)
}

var _ domain.GenerationClient = (*Client)(nil)
