package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatMessages(t *testing.T) {
	history := []Message{
		UserMessage("logged breakfast"),
		AssistantMessage("Got it."),
	}

	messages := FormatMessages("you are a coach", "what's next?", history)

	require.Len(t, messages, 4)
	assert.Equal(t, "system", messages[0].Role)
	assert.Equal(t, "you are a coach", messages[0].Content)
	assert.Equal(t, "user", messages[1].Role)
	assert.Equal(t, "assistant", messages[2].Role)
	assert.Equal(t, "what's next?", messages[3].Content)
}

func TestFormatMessages_NoSystemPrompt(t *testing.T) {
	messages := FormatMessages("", "hello", nil)
	require.Len(t, messages, 1)
	assert.Equal(t, "user", messages[0].Role)
}

func TestMockLLM_ReplaysStreamEvents(t *testing.T) {
	mock := &MockLLM{StreamEvents: []StreamEvent{
		{Type: EventText, Text: "a"},
		{Type: EventDone, Usage: &TokenUsage{TotalTokens: 5}},
	}}

	events, err := mock.ChatStream(context.Background(), Request{Caller: "test"})
	require.NoError(t, err)

	var got []StreamEvent
	for ev := range events {
		got = append(got, ev)
	}
	require.Len(t, got, 2)
	assert.Equal(t, EventText, got[0].Type)
	assert.Equal(t, EventDone, got[1].Type)
	require.Len(t, mock.Requests, 1)
}
