package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"manuals-rag/internal/domain"
	"manuals-rag/internal/infra/logger"
)

// systemPrompt is the fixed instruction block sent with every generation
// call. It is deliberately not configurable at runtime; the refusal sentence
// it mandates is part of the product contract.
const systemPrompt = `Eres un asistente especializado para field engineers de dispositivos biomédicos.
Tu función es ayudar a los técnicos a encontrar información en los manuales técnicos y de usuario.

INSTRUCCIONES:
- Usa ÚNICAMENTE la información proporcionada en el contexto de los manuales.
- Si el contexto no contiene información suficiente para responder la pregunta, di claramente: "No encontré información suficiente en los manuales para responder esta pregunta."
- Proporciona respuestas claras, concisas y técnicas.
- Si mencionas procedimientos, sé específico sobre los pasos.
- Si hay información sobre modelos o números de parte, inclúyela en tu respuesta.`

// Fixed user-facing answers for the non-success branches.
const (
	AnswerNoResults    = "No se encontró información relevante en los manuales para responder tu pregunta. Por favor, intenta reformularla o usar términos más específicos."
	AnswerEmptyContent = "Se encontraron documentos pero no contenían texto útil. Por favor, intenta otra pregunta."

	answerRateLimitedFormat    = "⚠️ **Límite de tasa alcanzado**\n\n%s\n\nPor favor, espera un momento antes de hacer otra pregunta."
	answerGatewayFailureFormat = "❌ **Error al procesar tu pregunta**\n\n%s\n\nPor favor, intenta de nuevo o verifica tu configuración de Azure."
)

const (
	// DefaultTopK is the passage count used when the caller does not choose one.
	DefaultTopK = 3
	// MaxTopK caps how many passages a single question may retrieve.
	MaxTopK = 10

	defaultTemperature = 1.0
)

type answerQuestionUsecase struct {
	search    domain.SearchClient
	generator domain.GenerationClient
	builder   ContextBuilder
	log       *logger.ContextLogger
}

// NewAnswerQuestionUsecase wires the gateways and the context builder into
// the RAG pipeline. The returned value carries no per-request state and is
// safe for concurrent use; the gateway handles are the only shared resources.
func NewAnswerQuestionUsecase(
	search domain.SearchClient,
	generator domain.GenerationClient,
	builder ContextBuilder,
	log *logger.ContextLogger,
) AnswerQuestionUsecase {
	return &answerQuestionUsecase{
		search:    search,
		generator: generator,
		builder:   builder,
		log:       log,
	}
}

func (u *answerQuestionUsecase) Execute(ctx context.Context, input AnswerQuestionInput) (*AnswerResult, error) {
	if strings.TrimSpace(input.Question) == "" {
		return nil, fmt.Errorf("question is required")
	}

	topK := input.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	if topK > MaxTopK {
		topK = MaxTopK
	}
	temperature := input.Temperature
	if temperature < 0 {
		temperature = defaultTemperature
	}
	if temperature > 1 {
		temperature = 1
	}

	searchCtx := logger.WithPipelineStage(ctx, "search")
	log := u.log.WithContext(searchCtx)

	results, err := u.search.Search(searchCtx, input.Question, topK)
	if err != nil {
		log.Warn("search gateway failed", slog.String("error", err.Error()))
		return u.classifyFailure(err), nil
	}
	if len(results) == 0 {
		log.Info("no passages retrieved", slog.Int("top_k", topK))
		return &AnswerResult{Answer: AnswerNoResults, Sources: []Source{}, Outcome: OutcomeNoResults}, nil
	}

	chunks, usable := u.builder.Build(results)
	if !usable {
		log.Info("retrieved passages carried no usable text", slog.Int("result_count", len(results)))
		return &AnswerResult{Answer: AnswerEmptyContent, Sources: []Source{}, Outcome: OutcomeEmptyContent}, nil
	}

	generateCtx := logger.WithPipelineStage(ctx, "generate")
	log = u.log.WithContext(generateCtx)

	answer, err := u.generator.Generate(generateCtx, systemPrompt, input.Question, chunks, temperature)
	if err != nil {
		log.Warn("generation gateway failed", slog.String("error", err.Error()))
		return u.classifyFailure(err), nil
	}

	// Sources mirror the original search results, not the possibly-truncated
	// context, so every retrieved manual is traceable from the answer.
	sources := make([]Source, 0, len(results))
	for _, r := range results {
		name := r.Source
		if name == "" {
			name = "Unknown"
		}
		sources = append(sources, Source{
			Source:     name,
			PageNumber: r.PageNumber,
			Score:      r.Score,
			Path:       r.Path,
		})
	}

	log.Info("answer generated",
		slog.Int("source_count", len(sources)),
		slog.Int("context_chunks", len(chunks)),
		slog.String("model", u.generator.Version()))

	return &AnswerResult{Answer: answer, Sources: sources, Outcome: OutcomeSuccess}, nil
}

// classifyFailure converts a gateway error into the user-facing answer for
// its kind. Nothing above this boundary needs to catch pipeline errors.
func (u *answerQuestionUsecase) classifyFailure(err error) *AnswerResult {
	if domain.IsRateLimited(err) {
		return &AnswerResult{
			Answer:  fmt.Sprintf(answerRateLimitedFormat, err.Error()),
			Sources: []Source{},
			Outcome: OutcomeRateLimited,
		}
	}
	return &AnswerResult{
		Answer:  fmt.Sprintf(answerGatewayFailureFormat, err.Error()),
		Sources: []Source{},
		Outcome: OutcomeGatewayFailure,
	}
}
