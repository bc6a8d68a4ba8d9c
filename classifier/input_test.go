package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzeInput_Shape(t *testing.T) {
	a := AnalyzeInput("log 200g chicken breast")

	assert.Equal(t, 23, a.Length)
	assert.Equal(t, 4, a.WordCount)
	assert.True(t, a.IsSimpleParsing)
	assert.False(t, a.IsComplexWorkflow)
	assert.True(t, a.ContainsNumbers)
	assert.False(t, a.ContainsQuestions)
}

func TestAnalyzeInput_Urgency(t *testing.T) {
	assert.Equal(t, UrgencyHigh, AnalyzeInput("i need a meal idea right now").Urgency)
	assert.Equal(t, UrgencyMedium, AnalyzeInput("what should i cook tonight").Urgency)
	assert.Equal(t, UrgencyLow, AnalyzeInput("thoughts on casein protein").Urgency)
}

func TestAnalyzeInput_QuestionDetection(t *testing.T) {
	assert.True(t, AnalyzeInput("how much protein do i need?").ContainsQuestions)
	assert.True(t, AnalyzeInput("should i train fasted").ContainsQuestions)
	assert.False(t, AnalyzeInput("logging breakfast").ContainsQuestions)
}

func TestAnalyzeContext_Window(t *testing.T) {
	history := make([]Message, 15)
	for i := range history {
		history[i] = Message{Role: "user", Content: "filler"}
	}
	history[13].ToolName = "log_meal"

	a := AnalyzeContext(history)
	assert.Equal(t, 10, a.ConversationDepth, "analysis is bounded to the trailing window")
	assert.Equal(t, []string{"log_meal"}, a.RecentToolCalls)
	assert.True(t, a.IsOngoingWorkflow, "tool call within the last turns keeps the workflow open")
}

func TestAnalyzeContext_ToolOutsideLookback(t *testing.T) {
	history := []Message{
		{Role: "tool", Content: "done", ToolName: "plan_builder"},
		{Role: "assistant", Content: "plan created"},
		{Role: "user", Content: "thanks"},
		{Role: "assistant", Content: "anything else?"},
	}

	a := AnalyzeContext(history)
	assert.Equal(t, []string{"plan_builder"}, a.RecentToolCalls)
	assert.False(t, a.IsOngoingWorkflow, "stale tool call no longer counts as ongoing")
}
