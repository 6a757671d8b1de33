package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_llm_client.go -package=mocks medquery/internal/service LLMClient
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_answer_service.go -package=mocks medquery/internal/service AnswerService

import (
	"context"
	"errors"
	"net/http"
	"time"

	"medquery/internal/contextutil"
	"medquery/internal/llm"
)

// SystemPrompt is sent as the first message of every request.
const SystemPrompt = "You are a helpful assistant with expertise in the medical field."

// DefaultModel is the chat model used when none is configured.
const DefaultModel = "llama-3.2-3b-preview"

// Outcome labels reported to the Recorder.
const (
	OutcomeSuccess       = "success"
	OutcomeInvalidInput  = "invalid_input"
	OutcomeAuthError     = "auth_error"
	OutcomeNetworkError  = "network_error"
	OutcomeEmptyResponse = "empty_response"
	OutcomeProviderError = "provider_error"
)

// LLMClient is an interface for interacting with a chat completions API.
// This interface is defined from the service layer's perspective (consumer-first).
type LLMClient interface {
	// ChatWithMessages sends messages with sampling parameters and returns the first choice's text.
	ChatWithMessages(ctx context.Context, messages []llm.Message, params llm.ChatParams) (string, error)
}

// Recorder observes the outcome and latency of each answer request.
type Recorder interface {
	ObserveAnswer(outcome string, elapsed time.Duration)
}

// CompletionResult is the text of the first completion choice.
type CompletionResult struct {
	AnswerText string
}

// AnswerService turns a QueryRequest into an answer from the chat provider.
type AnswerService interface {
	// RequestAnswer validates req, issues one provider call and returns the first choice.
	RequestAnswer(ctx context.Context, req QueryRequest) (CompletionResult, error)
}

// answerService implements AnswerService.
type answerService struct {
	llmClient LLMClient
	model     string
	recorder  Recorder
}

// NewAnswerService creates a new AnswerService. An empty model selects
// DefaultModel; recorder may be nil.
func NewAnswerService(llmClient LLMClient, model string, recorder Recorder) AnswerService {
	if model == "" {
		model = DefaultModel
	}
	return &answerService{
		llmClient: llmClient,
		model:     model,
		recorder:  recorder,
	}
}

// BuildMessages returns the system and user messages for a query.
// The user content is the literal template "response '<text>'".
func BuildMessages(text string) []llm.Message {
	return []llm.Message{
		{Role: llm.RoleSystem, Content: SystemPrompt},
		{Role: llm.RoleUser, Content: "response '" + text + "'"},
	}
}

// RequestAnswer requests an answer for req.
func (s *answerService) RequestAnswer(ctx context.Context, req QueryRequest) (CompletionResult, error) {
	logger := contextutil.LoggerFromContext(ctx)
	start := time.Now()

	if err := req.Validate(); err != nil {
		logger.WarnContext(ctx, "rejected answer request", "error", err)
		s.observe(OutcomeInvalidInput, start)
		return CompletionResult{}, err
	}

	params := llm.ChatParams{
		Model:       s.model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
	}

	answer, err := s.llmClient.ChatWithMessages(ctx, BuildMessages(req.Text), params)
	if err != nil {
		reqErr := classify(err)
		logger.ErrorContext(ctx, "failed to get LLM response", "error", err, "cause", reqErr.Cause)
		s.observe(outcomeFor(reqErr.Cause), start)
		return CompletionResult{}, WrapError(reqErr, "failed to get LLM response")
	}

	logger.InfoContext(ctx, "answer request processed successfully",
		"model", s.model,
		"query_length", len(req.Text),
		"answer_length", len(answer),
		"temperature", req.Temperature,
		"max_tokens", req.MaxTokens,
		"top_p", req.TopP,
	)
	s.observe(OutcomeSuccess, start)
	return CompletionResult{AnswerText: answer}, nil
}

func (s *answerService) observe(outcome string, start time.Time) {
	if s.recorder != nil {
		s.recorder.ObserveAnswer(outcome, time.Since(start))
	}
}

// classify maps a client error onto a RequestError cause.
func classify(err error) *RequestError {
	var apiErr *llm.APIError
	switch {
	case errors.As(err, &apiErr) && (apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden):
		return &RequestError{Cause: ErrAuth, Err: err}
	case errors.Is(err, llm.ErrNoChoices):
		return &RequestError{Cause: ErrEmptyResponse, Err: err}
	case errors.Is(err, llm.ErrTransport), errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return &RequestError{Cause: ErrNetwork, Err: err}
	default:
		return &RequestError{Cause: ErrProvider, Err: err}
	}
}

func outcomeFor(cause error) string {
	switch cause {
	case ErrAuth:
		return OutcomeAuthError
	case ErrNetwork:
		return OutcomeNetworkError
	case ErrEmptyResponse:
		return OutcomeEmptyResponse
	default:
		return OutcomeProviderError
	}
}
