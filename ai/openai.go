package ai

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/stridelabs/coachcore/internal/profile"
)

// ErrEmptyResponse is returned when the provider answers with no choices.
var ErrEmptyResponse = errors.New("empty response from provider")

// openAIService implements LLMService on any OpenAI-compatible endpoint.
type openAIService struct {
	client  *openai.Client
	model   string
	limiter *rate.Limiter

	defaultMaxTokens   int
	defaultTemperature float32
}

// NewOpenAIService creates an LLMService from the profile.
func NewOpenAIService(p *profile.Profile) LLMService {
	cfg := openai.DefaultConfig(p.AIAPIKey)
	if p.AIBaseURL != "" {
		cfg.BaseURL = p.AIBaseURL
	}

	rpm := p.AIRequestsPerMinute
	if rpm <= 0 {
		rpm = 60
	}

	return &openAIService{
		client:             openai.NewClientWithConfig(cfg),
		model:              p.AIModel,
		limiter:            rate.NewLimiter(rate.Limit(float64(rpm)/60.0), rpm),
		defaultMaxTokens:   p.AIMaxTokens,
		defaultTemperature: p.AITemperature,
	}
}

func (s *openAIService) buildRequest(req Request) openai.ChatCompletionRequest {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = s.defaultMaxTokens
	}
	temperature := req.Temperature
	if temperature <= 0 {
		temperature = s.defaultTemperature
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemPrompt,
		})
	}
	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		switch m.Role {
		case "system":
			role = openai.ChatMessageRoleSystem
		case "assistant":
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	return openai.ChatCompletionRequest{
		Model:       s.model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		User:        req.Caller,
	}
}

// Chat performs a single-shot generation.
func (s *openAIService) Chat(ctx context.Context, req Request) (*Response, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := s.client.CreateChatCompletion(ctx, s.buildRequest(req))
	if err != nil {
		slog.Error("chat completion failed",
			"caller", req.Caller,
			"error", err,
			"latency_ms", time.Since(start).Milliseconds())
		return nil, err
	}

	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	slog.Debug("chat completion succeeded",
		"caller", req.Caller,
		"latency_ms", time.Since(start).Milliseconds(),
		"tokens", resp.Usage.TotalTokens)

	return &Response{
		Text: resp.Choices[0].Message.Content,
		Usage: TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

// ChatStream performs a streaming generation and translates provider chunks
// into typed StreamEvents. Tool-call argument fragments are accumulated per
// index and emitted once complete; the final event is always done or error.
func (s *openAIService) ChatStream(ctx context.Context, req Request) (<-chan StreamEvent, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	ocReq := s.buildRequest(req)
	ocReq.Stream = true
	ocReq.StreamOptions = &openai.StreamOptions{IncludeUsage: true}

	stream, err := s.client.CreateChatCompletionStream(ctx, ocReq)
	if err != nil {
		return nil, err
	}

	events := make(chan StreamEvent)

	go func() {
		defer close(events)
		defer stream.Close()

		var usage TokenUsage
		pending := map[int]*ToolCall{}
		order := []int{}

		emit := func(ev StreamEvent) bool {
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		flushToolCalls := func() bool {
			for _, idx := range order {
				tc := pending[idx]
				if tc == nil || tc.Name == "" {
					continue
				}
				if !emit(StreamEvent{Type: EventToolCall, ToolCall: tc}) {
					return false
				}
			}
			pending = map[int]*ToolCall{}
			order = order[:0]
			return true
		}

		for {
			resp, err := stream.Recv()
			if err != nil {
				if errors.Is(err, io.EOF) {
					if !flushToolCalls() {
						return
					}
					emit(StreamEvent{Type: EventDone, Usage: &usage})
					return
				}
				slog.Error("stream receive failed", "caller", req.Caller, "error", err)
				emit(StreamEvent{Type: EventError, Err: err})
				return
			}

			if resp.Usage != nil {
				usage = TokenUsage{
					PromptTokens:     resp.Usage.PromptTokens,
					CompletionTokens: resp.Usage.CompletionTokens,
					TotalTokens:      resp.Usage.TotalTokens,
				}
			}

			for _, choice := range resp.Choices {
				if choice.Delta.Content != "" {
					if !emit(StreamEvent{Type: EventText, Text: choice.Delta.Content}) {
						return
					}
				}
				for _, tc := range choice.Delta.ToolCalls {
					idx := 0
					if tc.Index != nil {
						idx = *tc.Index
					}
					acc, ok := pending[idx]
					if !ok {
						acc = &ToolCall{}
						pending[idx] = acc
						order = append(order, idx)
					}
					if tc.ID != "" {
						acc.ID = tc.ID
					}
					if tc.Function.Name != "" {
						acc.Name = tc.Function.Name
					}
					acc.Arguments += tc.Function.Arguments
				}
				if choice.FinishReason == openai.FinishReasonToolCalls {
					if !flushToolCalls() {
						return
					}
				}
			}
		}
	}()

	return events, nil
}

// Ensure openAIService implements LLMService
var _ LLMService = (*openAIService)(nil)
