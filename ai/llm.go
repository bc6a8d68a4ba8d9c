// Package ai provides the text-generation provider abstraction consumed by the
// coaching core: a structured request, a single-shot response, and a typed
// event stream for token-streamed responses.
package ai

import "context"

// Message represents a chat message.
type Message struct {
	Role    string // system, user, assistant
	Content string
}

// TokenUsage reports token consumption for a completed generation.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// ToolCall is a function invocation requested by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string // raw JSON arguments
}

// EventType identifies a stream event.
type EventType string

const (
	// EventText carries an incremental text delta.
	EventText EventType = "text"
	// EventToolCall carries a completed tool-call request.
	EventToolCall EventType = "tool_call"
	// EventDone terminates the stream and carries final token usage.
	EventDone EventType = "done"
	// EventError terminates the stream with a provider failure.
	EventError EventType = "error"
)

// StreamEvent is one element of a streamed model response.
type StreamEvent struct {
	Type     EventType
	Text     string
	ToolCall *ToolCall
	Usage    *TokenUsage
	Err      error
}

// Request is a structured generation request.
type Request struct {
	SystemPrompt string
	Messages     []Message
	Temperature  float32
	MaxTokens    int
	// Caller tags the request origin for logging and provider-side attribution.
	Caller string
}

// Response is a completed single-shot generation.
type Response struct {
	Text  string
	Usage TokenUsage
}

// LLMService is the text-generation provider interface.
type LLMService interface {
	// Chat performs a single-shot generation.
	Chat(ctx context.Context, req Request) (*Response, error)

	// ChatStream performs a streaming generation. The returned channel is
	// closed after a terminal EventDone or EventError.
	ChatStream(ctx context.Context, req Request) (<-chan StreamEvent, error)
}

// SystemPrompt builds a system message.
func SystemPrompt(content string) Message {
	return Message{Role: "system", Content: content}
}

// UserMessage builds a user message.
func UserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}

// AssistantMessage builds an assistant message.
func AssistantMessage(content string) Message {
	return Message{Role: "assistant", Content: content}
}

// FormatMessages assembles the full message list for a request.
func FormatMessages(systemPrompt string, userContent string, history []Message) []Message {
	messages := []Message{}
	if systemPrompt != "" {
		messages = append(messages, SystemPrompt(systemPrompt))
	}
	messages = append(messages, history...)
	messages = append(messages, UserMessage(userContent))
	return messages
}
