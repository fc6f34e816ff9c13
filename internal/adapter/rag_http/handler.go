package rag_http

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"manuals-rag/internal/infra/logger"
	"manuals-rag/internal/usecase"
)

type Handler struct {
	answerUsecase usecase.AnswerQuestionUsecase
}

func NewHandler(answerUsecase usecase.AnswerQuestionUsecase) *Handler {
	return &Handler{
		answerUsecase: answerUsecase,
	}
}

type answerRequest struct {
	Question    string   `json:"question"`
	TopK        *int     `json:"top_k"`
	Temperature *float64 `json:"temperature"`
}

type sourceResponse struct {
	Source     string  `json:"source"`
	PageNumber *int    `json:"page_number,omitempty"`
	Score      float64 `json:"score"`
	Path       string  `json:"path,omitempty"`
}

type answerResponse struct {
	Answer  string           `json:"answer"`
	Sources []sourceResponse `json:"sources"`
	Outcome string           `json:"outcome"`
}

// Answer a question against the manual index
// (POST /v1/chat/answer)
func (h *Handler) Answer(ctx echo.Context) error {
	var req answerRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if strings.TrimSpace(req.Question) == "" {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "question is required"})
	}

	// Negative sentinels mean "caller did not choose"; the usecase applies
	// its defaults. Explicit values outside the UI slider ranges are caller
	// bugs and get rejected here.
	input := usecase.AnswerQuestionInput{
		Question:    req.Question,
		TopK:        0,
		Temperature: -1,
	}
	if req.TopK != nil {
		if *req.TopK < 1 || *req.TopK > usecase.MaxTopK {
			return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "top_k must be between 1 and 10"})
		}
		input.TopK = *req.TopK
	}
	if req.Temperature != nil {
		if *req.Temperature < 0 || *req.Temperature > 1 {
			return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "temperature must be between 0.0 and 1.0"})
		}
		input.Temperature = *req.Temperature
	}

	reqCtx := logger.WithRequestID(ctx.Request().Context(), uuid.NewString())
	output, err := h.answerUsecase.Execute(reqCtx, input)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	sources := make([]sourceResponse, 0, len(output.Sources))
	for _, s := range output.Sources {
		sources = append(sources, sourceResponse{
			Source:     s.Source,
			PageNumber: s.PageNumber,
			Score:      s.Score,
			Path:       s.Path,
		})
	}

	return ctx.JSON(http.StatusOK, answerResponse{
		Answer:  output.Answer,
		Sources: sources,
		Outcome: string(output.Outcome),
	})
}

// Healthz reports process liveness
// (GET /healthz)
func (h *Handler) Healthz(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz reports readiness to serve questions
// (GET /readyz)
func (h *Handler) Readyz(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ready"})
}
