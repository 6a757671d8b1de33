package llm

// Message represents a single message in a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Roles accepted by the chat completions API.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatParams holds sampling parameters for chat completion requests.
// All three numeric controls are sent verbatim, including zero values.
type ChatParams struct {
	// Model specifies the model to use. If empty, the client's default model is used.
	Model string

	// MaxTokens specifies the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls the randomness of the output.
	Temperature float64

	// TopP controls nucleus sampling diversity.
	TopP float64
}
