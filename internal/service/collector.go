package service

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// Bounds and slider defaults for a QueryRequest.
const (
	MaxQueryLength = 1000

	MinTemperature     = 0.0
	MaxTemperature     = 2.0
	DefaultTemperature = 1.0

	MinMaxTokens     = 50
	MaxMaxTokens     = 500
	DefaultMaxTokens = 150

	MinTopP     = 0.0
	MaxTopP     = 1.0
	DefaultTopP = 1.0
)

// QueryRequest is a validated query plus its sampling controls.
type QueryRequest struct {
	Text        string
	Temperature float64
	MaxTokens   int
	TopP        float64
}

// Collect builds a QueryRequest from raw inputs. Numeric controls are clamped
// into their ranges; the text is rejected if it is blank or longer than
// MaxQueryLength characters.
func Collect(text string, temperature float64, maxTokens int, topP float64) (QueryRequest, error) {
	if err := validateText(text); err != nil {
		return QueryRequest{}, err
	}
	if math.IsNaN(temperature) {
		return QueryRequest{}, &ValidationError{Field: "temperature", Message: "must be a number"}
	}
	if math.IsNaN(topP) {
		return QueryRequest{}, &ValidationError{Field: "top_p", Message: "must be a number"}
	}

	return QueryRequest{
		Text:        text,
		Temperature: clamp(temperature, MinTemperature, MaxTemperature),
		MaxTokens:   min(max(maxTokens, MinMaxTokens), MaxMaxTokens),
		TopP:        clamp(topP, MinTopP, MaxTopP),
	}, nil
}

// Validate checks every bound without clamping.
func (q QueryRequest) Validate() error {
	if err := validateText(q.Text); err != nil {
		return err
	}
	if !(q.Temperature >= MinTemperature && q.Temperature <= MaxTemperature) {
		return &ValidationError{Field: "temperature", Message: fmt.Sprintf("must be between %.1f and %.1f", MinTemperature, MaxTemperature)}
	}
	if q.MaxTokens < MinMaxTokens || q.MaxTokens > MaxMaxTokens {
		return &ValidationError{Field: "max_tokens", Message: fmt.Sprintf("must be between %d and %d", MinMaxTokens, MaxMaxTokens)}
	}
	if !(q.TopP >= MinTopP && q.TopP <= MaxTopP) {
		return &ValidationError{Field: "top_p", Message: fmt.Sprintf("must be between %.1f and %.1f", MinTopP, MaxTopP)}
	}
	return nil
}

func validateText(text string) error {
	if strings.TrimSpace(text) == "" {
		return &ValidationError{Field: "query", Message: "cannot be empty"}
	}
	if n := utf8.RuneCountInString(text); n > MaxQueryLength {
		return &ValidationError{Field: "query", Message: fmt.Sprintf("must be at most %d characters, got %d", MaxQueryLength, n)}
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
