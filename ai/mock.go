package ai

import "context"

// MockLLM is a scripted LLMService for testing.
type MockLLM struct {
	// ChatFunc overrides Chat when set.
	ChatFunc func(ctx context.Context, req Request) (*Response, error)
	// StreamEvents is replayed by ChatStream when ChatStreamFunc is unset.
	StreamEvents []StreamEvent
	// ChatStreamFunc overrides ChatStream when set.
	ChatStreamFunc func(ctx context.Context, req Request) (<-chan StreamEvent, error)

	// Requests records every request received, in order.
	Requests []Request
}

// Chat returns the scripted response.
func (m *MockLLM) Chat(ctx context.Context, req Request) (*Response, error) {
	m.Requests = append(m.Requests, req)
	if m.ChatFunc != nil {
		return m.ChatFunc(ctx, req)
	}
	return &Response{Text: ""}, nil
}

// ChatStream replays the scripted events.
func (m *MockLLM) ChatStream(ctx context.Context, req Request) (<-chan StreamEvent, error) {
	m.Requests = append(m.Requests, req)
	if m.ChatStreamFunc != nil {
		return m.ChatStreamFunc(ctx, req)
	}

	events := make(chan StreamEvent)
	go func() {
		defer close(events)
		for _, ev := range m.StreamEvents {
			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return events, nil
}

// Ensure MockLLM implements LLMService
var _ LLMService = (*MockLLM)(nil)
