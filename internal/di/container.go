package di

import (
	"log/slog"
	"time"

	"manuals-rag/internal/adapter/azopenai"
	"manuals-rag/internal/adapter/azsearch"
	"manuals-rag/internal/adapter/rag_http"
	"manuals-rag/internal/domain"
	"manuals-rag/internal/infra/config"
	"manuals-rag/internal/infra/httpclient"
	"manuals-rag/internal/infra/logger"
	"manuals-rag/internal/usecase"
)

// ApplicationComponents holds all wired dependencies for the application.
// It is built once at process start; the gateway clients it carries are
// long-lived, read-only handles safe for concurrent requests.
type ApplicationComponents struct {
	SearchClient  domain.SearchClient
	Generator     domain.GenerationClient
	AnswerUsecase usecase.AnswerQuestionUsecase
	Handler       *rag_http.Handler
}

// NewApplicationComponents wires all dependencies from config. The logger is
// the process logger so pipeline logs share its handler chain; nil falls back
// to a plain stdout JSON logger.
func NewApplicationComponents(cfg *config.Config, log *slog.Logger) *ApplicationComponents {
	// Shared HTTP clients with connection pooling
	searchHTTP := httpclient.NewPooledClient(time.Duration(cfg.Search.Timeout) * time.Second)
	openaiHTTP := httpclient.NewPooledClient(time.Duration(cfg.OpenAI.Timeout) * time.Second)

	// External gateways
	searchClient := azsearch.NewClient(
		cfg.Search.Endpoint, cfg.Search.APIKey, cfg.Search.IndexName, cfg.Search.APIVersion, searchHTTP)
	generator := azopenai.NewClient(
		cfg.OpenAI.Endpoint, cfg.OpenAI.APIKey, cfg.OpenAI.Deployment, cfg.OpenAI.RequestsPerSecond, openaiHTTP)

	// Pipeline
	contextLogger := logger.NewContextLoggerFrom("manuals-rag", log)
	answerUsecase := usecase.NewAnswerQuestionUsecase(
		searchClient, generator, usecase.NewContextBuilder(), contextLogger)

	handler := rag_http.NewHandler(answerUsecase)

	return &ApplicationComponents{
		SearchClient:  searchClient,
		Generator:     generator,
		AnswerUsecase: answerUsecase,
		Handler:       handler,
	}
}
