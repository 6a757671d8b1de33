package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"medquery/internal/contextutil"
	"medquery/internal/service"
)

// AskHandler handles JSON API requests for medical query answers.
type AskHandler struct {
	answerService service.AnswerService
	recorder      service.Recorder
}

// NewAskHandler creates a new AskHandler. recorder counts requests rejected
// before they reach the answer service and may be nil.
func NewAskHandler(answerService service.AnswerService, recorder service.Recorder) *AskHandler {
	return &AskHandler{
		answerService: answerService,
		recorder:      recorder,
	}
}

// AskRequest represents the HTTP request payload for a query.
// Omitted sampling controls take their slider defaults.
//
// swagger:model AskRequest
type AskRequest struct {
	Query       string   `json:"query"`
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"max_tokens,omitempty"`
	TopP        *float64 `json:"top_p,omitempty"`
}

// AskResponse represents the HTTP response payload for a query.
//
// swagger:model AskResponse
type AskResponse struct {
	// The text of the first completion choice
	Answer string `json:"answer"`
}

// ErrorResponse represents an error response.
//
// swagger:model ErrorResponse
type ErrorResponse struct {
	Error string `json:"error"`
	// Type is one of invalid_input, auth_error, network_error, empty_response, provider_error, internal_error.
	Type string `json:"type,omitempty"`
}

// ServeHTTP handles HTTP requests for answers.
//
// swagger:route POST /api/v1/ask askQuestion
//
// # Ask a medical question
//
// Sends the query with its sampling controls to the chat-completion provider
// and returns the first choice's text.
//
// responses:
//
//	'200':
//	  description: Answer from the provider
//	  schema:
//	    "$ref": "#/definitions/AskResponse"
//	'400':
//	  description: Invalid query or sampling controls
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'502':
//	  description: Provider unreachable, rejected the request or returned no answer
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'504':
//	  description: Provider timed out
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)
	start := time.Now()

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeJSONError(w, http.StatusMethodNotAllowed, "Method not allowed", "")
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		rejectInput(ctx, h.recorder, start, err)
		writeJSONError(w, http.StatusBadRequest, "Invalid request body", "invalid_input")
		return
	}

	temperature := service.DefaultTemperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	maxTokens := service.DefaultMaxTokens
	if req.MaxTokens != nil {
		maxTokens = *req.MaxTokens
	}
	topP := service.DefaultTopP
	if req.TopP != nil {
		topP = *req.TopP
	}

	query, err := service.Collect(req.Query, temperature, maxTokens, topP)
	if err != nil {
		rejectInput(ctx, h.recorder, start, err)
		writeServiceError(w, err)
		return
	}

	// RequestAnswer logs and records its own failures.
	result, err := h.answerService.RequestAnswer(ctx, query)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(AskResponse{Answer: result.AnswerText}); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// rejectInput logs and counts a request refused before it reached the answer service.
func rejectInput(ctx context.Context, recorder service.Recorder, start time.Time, err error) {
	contextutil.LoggerFromContext(ctx).WarnContext(ctx, "rejected answer request", "error", err)
	if recorder != nil {
		recorder.ObserveAnswer(service.OutcomeInvalidInput, time.Since(start))
	}
}

// writeServiceError maps service errors to HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	status, message, errType := classifyError(err)
	writeJSONError(w, status, message, errType)
}

// classifyError returns the HTTP status, user-facing message and error type for err.
func classifyError(err error) (int, string, string) {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest, validationErr.Error(), "invalid_input"
	}
	if errors.Is(err, service.ErrInvalidInput) {
		return http.StatusBadRequest, "Invalid input", "invalid_input"
	}

	var reqErr *service.RequestError
	if errors.As(err, &reqErr) {
		switch reqErr.Cause {
		case service.ErrAuth:
			return http.StatusBadGateway, "The answer provider rejected the API key", "auth_error"
		case service.ErrNetwork:
			if service.IsTimeout(err) {
				return http.StatusGatewayTimeout, "The answer provider did not respond in time", "network_error"
			}
			return http.StatusBadGateway, "The answer provider could not be reached", "network_error"
		case service.ErrEmptyResponse:
			return http.StatusBadGateway, "The answer provider returned no answer", "empty_response"
		default:
			return http.StatusBadGateway, "The answer provider returned an error", "provider_error"
		}
	}

	return http.StatusInternalServerError, "Failed to process query", "internal_error"
}

// writeJSONError writes an error response.
func writeJSONError(w http.ResponseWriter, statusCode int, message, errType string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
		Type:  errType,
	})
}
