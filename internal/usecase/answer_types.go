package usecase

import "context"

// AnswerQuestionInput encapsulates the parameters that drive one answer request.
type AnswerQuestionInput struct {
	Question string
	// TopK is the number of passages to retrieve; values <= 0 take the default.
	TopK int
	// Temperature steers generation randomness; negative values take the default.
	Temperature float64
}

// Source identifies one retrieved manual that backed the answer.
type Source struct {
	Source     string
	PageNumber *int
	Score      float64
	Path       string
}

// Outcome classifies how the pipeline resolved, as a closed set callers can
// switch on exhaustively instead of inspecting answer text.
type Outcome string

const (
	OutcomeSuccess        Outcome = "success"
	OutcomeNoResults      Outcome = "no_results"
	OutcomeEmptyContent   Outcome = "empty_content"
	OutcomeRateLimited    Outcome = "rate_limited"
	OutcomeGatewayFailure Outcome = "gateway_failure"
)

// AnswerResult is the normalized response returned for every question. The
// pipeline never surfaces gateway failures as errors; they arrive here as
// structured outcomes with a user-facing answer.
type AnswerResult struct {
	Answer  string
	Sources []Source
	Outcome Outcome
}

// AnswerQuestionUsecase defines the contract for answering a question
// against the manual index.
type AnswerQuestionUsecase interface {
	Execute(ctx context.Context, input AnswerQuestionInput) (*AnswerResult, error)
}
