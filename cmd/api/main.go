package main

import (
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"time"

	"medquery/internal/config"
	"medquery/internal/http"
	"medquery/internal/llm"
	"medquery/internal/metrics"
	"medquery/internal/service"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API answers medical questions through a hosted chat-completion model.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: Medical Research Query Assistant API
//   description: |
//     Sends a medical query with its sampling controls (temperature, max_tokens, top_p)
//     to a chat-completion provider and returns the first answer.
//   version: 1.0.0
// schemes:
//   - http
//   - https
// consumes:
//   - application/json
// produces:
//   - application/json

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Create LLM client (external service layer)
	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName, cfg.LLMTimeout)

	collector := metrics.NewCollector()
	answerService := service.NewAnswerService(llmClient, cfg.LLMModelName, collector)

	// Create router with dependencies
	deps := &http.Deps{
		AnswerService: answerService,
		Model:         cfg.LLMModelName,
		Recorder:      collector,
		Metrics:       collector.Handler(),
	}
	router := http.NewRouter(deps)

	// Start API server
	addr := ":" + cfg.APIPort
	server := &nethttp.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("Starting API server", "addr", addr)
	slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName, "timeout", cfg.LLMTimeout)
	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
