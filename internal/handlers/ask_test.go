package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"medquery/internal/contextutil"
	"medquery/internal/service"
	"medquery/internal/service/mocks"

	"go.uber.org/mock/gomock"
)

// fakeRecorder captures outcomes passed to the Recorder.
type fakeRecorder struct {
	outcomes []string
}

func (r *fakeRecorder) ObserveAnswer(outcome string, _ time.Duration) {
	r.outcomes = append(r.outcomes, outcome)
}

func TestAskHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(*mocks.MockAnswerService)
		expectedStatus int
		expectedAnswer string
		expectedType   string
		wantRejected   bool
	}{
		{
			name: "success with explicit controls",
			body: `{"query":"What is diabetes?","temperature":0.5,"max_tokens":200,"top_p":0.9}`,
			setupMock: func(m *mocks.MockAnswerService) {
				m.EXPECT().
					RequestAnswer(gomock.Any(), service.QueryRequest{
						Text:        "What is diabetes?",
						Temperature: 0.5,
						MaxTokens:   200,
						TopP:        0.9,
					}).
					Return(service.CompletionResult{AnswerText: "Diabetes is a chronic condition."}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedAnswer: "Diabetes is a chronic condition.",
		},
		{
			name: "omitted controls use defaults",
			body: `{"query":"What is asthma?"}`,
			setupMock: func(m *mocks.MockAnswerService) {
				m.EXPECT().
					RequestAnswer(gomock.Any(), service.QueryRequest{
						Text:        "What is asthma?",
						Temperature: service.DefaultTemperature,
						MaxTokens:   service.DefaultMaxTokens,
						TopP:        service.DefaultTopP,
					}).
					Return(service.CompletionResult{AnswerText: "Asthma affects the airways."}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedAnswer: "Asthma affects the airways.",
		},
		{
			name: "zero controls are kept",
			body: `{"query":"q","temperature":0,"top_p":0}`,
			setupMock: func(m *mocks.MockAnswerService) {
				m.EXPECT().
					RequestAnswer(gomock.Any(), service.QueryRequest{
						Text:        "q",
						Temperature: 0,
						MaxTokens:   service.DefaultMaxTokens,
						TopP:        0,
					}).
					Return(service.CompletionResult{AnswerText: "a"}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedAnswer: "a",
		},
		{
			name:           "empty query rejected without provider call",
			body:           `{"query":""}`,
			setupMock:      func(m *mocks.MockAnswerService) {},
			expectedStatus: http.StatusBadRequest,
			expectedType:   "invalid_input",
			wantRejected:   true,
		},
		{
			name:           "overlong query rejected",
			body:           `{"query":"` + strings.Repeat("a", service.MaxQueryLength+1) + `"}`,
			setupMock:      func(m *mocks.MockAnswerService) {},
			expectedStatus: http.StatusBadRequest,
			expectedType:   "invalid_input",
			wantRejected:   true,
		},
		{
			name:           "malformed JSON",
			body:           `{"query":`,
			setupMock:      func(m *mocks.MockAnswerService) {},
			expectedStatus: http.StatusBadRequest,
			expectedType:   "invalid_input",
			wantRejected:   true,
		},
		{
			name: "auth error",
			body: `{"query":"q"}`,
			setupMock: func(m *mocks.MockAnswerService) {
				m.EXPECT().
					RequestAnswer(gomock.Any(), gomock.Any()).
					Return(service.CompletionResult{}, &service.RequestError{Cause: service.ErrAuth, Err: errors.New("status 401")})
			},
			expectedStatus: http.StatusBadGateway,
			expectedType:   "auth_error",
		},
		{
			name: "network timeout",
			body: `{"query":"q"}`,
			setupMock: func(m *mocks.MockAnswerService) {
				m.EXPECT().
					RequestAnswer(gomock.Any(), gomock.Any()).
					Return(service.CompletionResult{}, &service.RequestError{Cause: service.ErrNetwork, Err: context.DeadlineExceeded})
			},
			expectedStatus: http.StatusGatewayTimeout,
			expectedType:   "network_error",
		},
		{
			name: "connection refused",
			body: `{"query":"q"}`,
			setupMock: func(m *mocks.MockAnswerService) {
				m.EXPECT().
					RequestAnswer(gomock.Any(), gomock.Any()).
					Return(service.CompletionResult{}, &service.RequestError{
						Cause: service.ErrNetwork,
						Err:   &url.Error{Op: "Post", URL: "https://api.groq.com", Err: errors.New("connect: connection refused")},
					})
			},
			expectedStatus: http.StatusBadGateway,
			expectedType:   "network_error",
		},
		{
			name: "empty response",
			body: `{"query":"q"}`,
			setupMock: func(m *mocks.MockAnswerService) {
				m.EXPECT().
					RequestAnswer(gomock.Any(), gomock.Any()).
					Return(service.CompletionResult{}, &service.RequestError{Cause: service.ErrEmptyResponse})
			},
			expectedStatus: http.StatusBadGateway,
			expectedType:   "empty_response",
		},
		{
			name: "provider error",
			body: `{"query":"q"}`,
			setupMock: func(m *mocks.MockAnswerService) {
				m.EXPECT().
					RequestAnswer(gomock.Any(), gomock.Any()).
					Return(service.CompletionResult{}, &service.RequestError{Cause: service.ErrProvider, Err: errors.New("status 500")})
			},
			expectedStatus: http.StatusBadGateway,
			expectedType:   "provider_error",
		},
		{
			name: "unexpected error",
			body: `{"query":"q"}`,
			setupMock: func(m *mocks.MockAnswerService) {
				m.EXPECT().
					RequestAnswer(gomock.Any(), gomock.Any()).
					Return(service.CompletionResult{}, errors.New("boom"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedType:   "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockService := mocks.NewMockAnswerService(ctrl)
			tt.setupMock(mockService)

			recorder := &fakeRecorder{}
			handler := NewAskHandler(mockService, recorder)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/ask", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Fatalf("expected status %d, got %d (body: %s)", tt.expectedStatus, w.Code, w.Body.String())
			}

			wantOutcomes := 0
			if tt.wantRejected {
				wantOutcomes = 1
			}
			if len(recorder.outcomes) != wantOutcomes {
				t.Errorf("expected %d recorded outcomes, got %v", wantOutcomes, recorder.outcomes)
			}
			if tt.wantRejected && recorder.outcomes[0] != service.OutcomeInvalidInput {
				t.Errorf("expected outcome %q, got %q", service.OutcomeInvalidInput, recorder.outcomes[0])
			}

			if tt.expectedStatus == http.StatusOK {
				var resp AskResponse
				if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
					t.Fatalf("failed to decode response: %v", err)
				}
				if resp.Answer != tt.expectedAnswer {
					t.Errorf("expected answer %q, got %q", tt.expectedAnswer, resp.Answer)
				}
				return
			}

			var errResp ErrorResponse
			if err := json.NewDecoder(w.Body).Decode(&errResp); err != nil {
				t.Fatalf("failed to decode error response: %v", err)
			}
			if errResp.Type != tt.expectedType {
				t.Errorf("expected error type %q, got %q", tt.expectedType, errResp.Type)
			}
			if errResp.Error == "" {
				t.Error("expected error message, got empty string")
			}
		})
	}
}

func TestAskHandler_MethodNotAllowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	handler := NewAskHandler(mocks.NewMockAnswerService(ctrl), nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ask", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, w.Code)
	}
}

func TestAskHandler_LogsFailureOnce(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		setupMock func(*mocks.MockAnswerService)
		wantLines int
	}{
		{
			name:      "rejected input logged by handler",
			body:      `{"query":"  "}`,
			setupMock: func(m *mocks.MockAnswerService) {},
			wantLines: 1,
		},
		{
			name: "provider failure left to the service",
			body: `{"query":"q"}`,
			setupMock: func(m *mocks.MockAnswerService) {
				m.EXPECT().
					RequestAnswer(gomock.Any(), gomock.Any()).
					Return(service.CompletionResult{}, &service.RequestError{Cause: service.ErrAuth})
			},
			wantLines: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockService := mocks.NewMockAnswerService(ctrl)
			tt.setupMock(mockService)

			var buf bytes.Buffer
			logger := slog.New(slog.NewTextHandler(&buf, nil))

			req := httptest.NewRequest(http.MethodPost, "/api/v1/ask", bytes.NewBufferString(tt.body))
			req = req.WithContext(contextutil.WithLogger(req.Context(), logger))
			w := httptest.NewRecorder()

			NewAskHandler(mockService, nil).ServeHTTP(w, req)

			lines := strings.Count(buf.String(), "\n")
			if lines != tt.wantLines {
				t.Errorf("expected %d log lines, got %d: %q", tt.wantLines, lines, buf.String())
			}
		})
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"validation", &service.ValidationError{Field: "text", Message: "must not be empty"}, http.StatusBadRequest, "invalid_input"},
		{"bare invalid input", service.WrapError(service.ErrInvalidInput, "collect"), http.StatusBadRequest, "invalid_input"},
		{"wrapped auth", service.WrapError(&service.RequestError{Cause: service.ErrAuth}, "ask"), http.StatusBadGateway, "auth_error"},
		{"network deadline", service.WrapError(&service.RequestError{Cause: service.ErrNetwork, Err: context.DeadlineExceeded}, "ask"), http.StatusGatewayTimeout, "network_error"},
		{"network refused", &service.RequestError{Cause: service.ErrNetwork, Err: errors.New("connection refused")}, http.StatusBadGateway, "network_error"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, message, errType := classifyError(tt.err)
			if status != tt.wantStatus || errType != tt.wantType {
				t.Errorf("classifyError() = (%d, %q), want (%d, %q)", status, errType, tt.wantStatus, tt.wantType)
			}
			if message == "" {
				t.Error("classifyError() returned empty message")
			}
		})
	}
}
