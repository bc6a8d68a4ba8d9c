package direct

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stridelabs/coachcore/ai"
	"github.com/stridelabs/coachcore/internal/profile"
)

func scriptedExecutor(responseText string) (*Executor, *ai.MockLLM) {
	llm := &ai.MockLLM{
		ChatFunc: func(_ context.Context, _ ai.Request) (*ai.Response, error) {
			return &ai.Response{Text: responseText, Usage: ai.TokenUsage{TotalTokens: 90}}, nil
		},
	}
	return NewExecutor(llm, profile.DefaultPolicy()), llm
}

func TestExecute_AppliesTaskTuning(t *testing.T) {
	exec, llm := scriptedExecutor("You got it.")

	_, err := exec.Execute(context.Background(), TaskConversational, "nice workout today")
	require.NoError(t, err)

	require.Len(t, llm.Requests, 1)
	req := llm.Requests[0]
	assert.Equal(t, float32(0.8), req.Temperature)
	assert.Equal(t, 300, req.MaxTokens)
	assert.Equal(t, "direct:conversational", req.Caller)
}

func TestExecute_UnknownTask(t *testing.T) {
	exec, _ := scriptedExecutor("")
	_, err := exec.Execute(context.Background(), TaskType("bogus"), "x")
	assert.Error(t, err)
}

func TestParseNutrition_AcceptsValidItems(t *testing.T) {
	exec, llm := scriptedExecutor(`Here you go:
{"items": [
  {"name": "chicken breast", "calories": 330, "protein": 62, "carbs": 0, "fat": 7, "confidence": 0.9},
  {"name": "rice", "calories": 210, "protein": 4, "carbs": 45, "fat": 1, "confidence": 0.7}
]}`)

	result, err := exec.ParseNutrition(context.Background(), "200g chicken breast with rice")
	require.NoError(t, err)

	require.Len(t, result.Items, 2)
	assert.Equal(t, "chicken breast", result.Items[0].Name)
	assert.InDelta(t, 0.8, result.Confidence, 0.001)
	assert.Equal(t, 90, result.Usage.TotalTokens)

	require.Len(t, llm.Requests, 1)
	assert.Equal(t, float32(0.1), llm.Requests[0].Temperature, "parsing runs cold")
}

func TestParseNutrition_SingleObjectFallback(t *testing.T) {
	exec, _ := scriptedExecutor(`{"name": "protein shake", "calories": 220, "protein": 40, "carbs": 8, "fat": 3, "confidence": 0.85}`)

	result, err := exec.ParseNutrition(context.Background(), "protein shake")
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "protein shake", result.Items[0].Name)
}

func TestParseNutrition_DropsZeroCalorieItem(t *testing.T) {
	exec, _ := scriptedExecutor(`{"items": [
  {"name": "water", "calories": 0, "protein": 0, "carbs": 0, "fat": 0, "confidence": 0.9},
  {"name": "banana", "calories": 105, "protein": 1, "carbs": 27, "fat": 0, "confidence": 0.9}
]}`)

	result, err := exec.ParseNutrition(context.Background(), "water and a banana")
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "banana", result.Items[0].Name)
}

func TestParseNutrition_DropsMacroMismatch(t *testing.T) {
	// 100g protein alone is 400 kcal against 50 declared.
	exec, _ := scriptedExecutor(`{"items": [
  {"name": "mystery shake", "calories": 50, "protein": 100, "carbs": 0, "fat": 0, "confidence": 0.5},
  {"name": "oatmeal", "calories": 300, "protein": 10, "carbs": 54, "fat": 5, "confidence": 0.8}
]}`)

	result, err := exec.ParseNutrition(context.Background(), "shake and oatmeal")
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "oatmeal", result.Items[0].Name)
}

func TestParseNutrition_AllRejected(t *testing.T) {
	exec, _ := scriptedExecutor(`{"items": [
  {"name": "impossible", "calories": 50, "protein": 100, "carbs": 0, "fat": 0, "confidence": 0.5}
]}`)

	_, err := exec.ParseNutrition(context.Background(), "something weird")
	assert.ErrorIs(t, err, ErrNoValidItems)
}

func TestParseNutrition_RejectsCalorieCeiling(t *testing.T) {
	exec, _ := scriptedExecutor(`{"items": [
  {"name": "the entire buffet", "calories": 12000, "protein": 300, "carbs": 1000, "fat": 500, "confidence": 0.4}
]}`)

	_, err := exec.ParseNutrition(context.Background(), "everything")
	assert.ErrorIs(t, err, ErrNoValidItems)
}

func TestParseNutrition_NoStructuredOutput(t *testing.T) {
	exec, _ := scriptedExecutor("Sorry, I can't help with that.")

	_, err := exec.ParseNutrition(context.Background(), "some food")
	assert.ErrorIs(t, err, ErrNoStructuredOutput)
}

func TestCorrectNutrition(t *testing.T) {
	exec, llm := scriptedExecutor(`{"name": "chicken breast", "calories": 495, "protein": 93, "carbs": 0, "fat": 11, "confidence": 0.85}`)

	original := NutritionItem{Name: "chicken breast", Calories: 330, ProteinG: 62, FatG: 7}
	updated, err := exec.CorrectNutrition(context.Background(), original, "it was 300g not 200g")
	require.NoError(t, err)

	assert.Equal(t, 495.0, updated.Calories)
	assert.Equal(t, 93.0, updated.ProteinG)

	require.Len(t, llm.Requests, 1)
	assert.Contains(t, llm.Requests[0].Messages[0].Content, "it was 300g not 200g")
}

func TestCorrectNutrition_RejectsInvalidResult(t *testing.T) {
	exec, _ := scriptedExecutor(`{"name": "chicken breast", "calories": -50, "protein": 62, "carbs": 0, "fat": 7}`)

	_, err := exec.CorrectNutrition(context.Background(), NutritionItem{Name: "chicken breast"}, "double it")
	assert.ErrorIs(t, err, ErrNoValidItems)
}

func TestExtractBalancedObject(t *testing.T) {
	t.Run("SkipsLeadingProse", func(t *testing.T) {
		span, ok := extractBalancedObject(`Sure! {"a": 1} trailing`)
		require.True(t, ok)
		assert.Equal(t, `{"a": 1}`, span)
	})

	t.Run("NestedObjects", func(t *testing.T) {
		span, ok := extractBalancedObject(`{"items": [{"name": "x"}]}`)
		require.True(t, ok)
		assert.Equal(t, `{"items": [{"name": "x"}]}`, span)
	})

	t.Run("BracesInsideStrings", func(t *testing.T) {
		span, ok := extractBalancedObject(`{"name": "bowl {large}", "n": 1}`)
		require.True(t, ok)
		assert.Equal(t, `{"name": "bowl {large}", "n": 1}`, span)
	})

	t.Run("EscapedQuoteInsideString", func(t *testing.T) {
		span, ok := extractBalancedObject(`{"name": "say \"hi\" {ok}", "n": 2}`)
		require.True(t, ok)
		assert.Equal(t, `{"name": "say \"hi\" {ok}", "n": 2}`, span)
	})

	t.Run("NoObject", func(t *testing.T) {
		_, ok := extractBalancedObject("plain refusal text")
		assert.False(t, ok)
	})

	t.Run("Unbalanced", func(t *testing.T) {
		_, ok := extractBalancedObject(`{"truncated": [1, 2`)
		assert.False(t, ok)
	})
}
