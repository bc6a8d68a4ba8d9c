package direct

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/stridelabs/coachcore/ai"
	"github.com/stridelabs/coachcore/internal/profile"
)

const parseSystemPrompt = `You are a nutrition parsing assistant. When given a food description, estimate the macros.

RESPOND ONLY WITH JSON in this exact format:
{
  "items": [
    {"name": "chicken breast", "calories": 280, "protein": 52, "carbs": 0, "fat": 6, "confidence": 0.9},
    {"name": "rice", "calories": 170, "protein": 3, "carbs": 37, "fat": 0, "confidence": 0.8}
  ]
}

confidence is a number between 0 and 1:
- 0.8 to 1.0: specific foods with known nutrition (e.g., "4 eggs", "chipotle bowl")
- 0.5 to 0.8: general descriptions you can estimate (e.g., "chicken stir fry")
- below 0.5: vague or unusual items (e.g., "some snacks")

Break compound meals into individual items. Be practical and realistic.
ONLY output the JSON, no other text.`

const correctSystemPrompt = `You are a nutrition correction assistant. Given original food data and a user correction, recalculate the macros.

RESPOND ONLY WITH JSON in this exact format:
{"name": "updated food name if needed", "calories": 450, "protein": 35, "carbs": 40, "fat": 15, "confidence": 0.8}

Common corrections:
- Portion size changes ("large not medium" = ~1.5x, "had two" = 2x)
- Cooking method ("grilled not fried" = less fat)
- Added/removed ingredients ("add cheese", "no rice")
- Quantity adjustments ("only had half")

ONLY output the JSON, no other text.`

const educationalSystemPrompt = `You are a knowledgeable fitness and nutrition coach. Explain the topic clearly and practically, grounded in exercise science. Prefer concrete guidance over hedging.`

const conversationalSystemPrompt = `You are a friendly, concise fitness coach. Reply in one or two short sentences.`

// taskConfigs holds the tuning per task type. Parsing runs cold for
// deterministic structure; conversation runs warm for natural phrasing.
var taskConfigs = map[TaskType]TaskConfig{
	TaskStructuredParsing: {Temperature: 0.1, MaxTokens: 500, SystemPrompt: parseSystemPrompt},
	TaskEducational:       {Temperature: 0.6, MaxTokens: 1200, SystemPrompt: educationalSystemPrompt},
	TaskConversational:    {Temperature: 0.8, MaxTokens: 300, SystemPrompt: conversationalSystemPrompt},
}

// Executor issues single tuned calls through the configured provider. It
// holds no per-conversation state.
type Executor struct {
	llm    ai.LLMService
	policy profile.Policy
	now    func() time.Time
}

// Option configures an Executor.
type Option func(*Executor)

// WithClock injects a clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) { e.now = now }
}

// NewExecutor creates a direct executor.
func NewExecutor(llm ai.LLMService, policy profile.Policy, opts ...Option) *Executor {
	e := &Executor{llm: llm, policy: policy, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var _ ExecutorService = (*Executor)(nil)

// Execute issues one direct call tuned for the given task type.
func (e *Executor) Execute(ctx context.Context, task TaskType, prompt string) (*ai.Response, error) {
	config, ok := taskConfigs[task]
	if !ok {
		return nil, errors.Errorf("unknown task type %q", task)
	}

	resp, err := e.llm.Chat(ctx, ai.Request{
		SystemPrompt: config.SystemPrompt,
		Messages:     []ai.Message{ai.UserMessage(prompt)},
		Temperature:  config.Temperature,
		MaxTokens:    config.MaxTokens,
		Caller:       "direct:" + string(task),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "direct %s call failed", task)
	}
	return resp, nil
}

type nutritionPayload struct {
	Items []NutritionItem `json:"items"`
	// Single-object responses carry the fields at top level.
	NutritionItem
}

// ParseNutrition parses a food description into validated items. Items
// failing sanity bounds are dropped; the call only fails when no items
// survive.
func (e *Executor) ParseNutrition(ctx context.Context, text string) (*NutritionResult, error) {
	start := e.now()

	resp, err := e.Execute(ctx, TaskStructuredParsing, "Parse this food: "+text)
	if err != nil {
		return nil, err
	}

	span, ok := extractBalancedObject(resp.Text)
	if !ok {
		return nil, ErrNoStructuredOutput
	}

	var payload nutritionPayload
	if err := json.Unmarshal([]byte(span), &payload); err != nil {
		return nil, errors.Wrap(ErrNoStructuredOutput, err.Error())
	}

	items := payload.Items
	if len(items) == 0 && payload.Name != "" {
		items = []NutritionItem{payload.NutritionItem}
	}

	var (
		accepted      []NutritionItem
		confidenceSum float64
	)
	for _, item := range items {
		if err := e.validateItem(item); err != nil {
			slog.Warn("dropping invalid nutrition item",
				"name", item.Name,
				"calories", item.Calories,
				"error", err)
			continue
		}
		accepted = append(accepted, item)
		confidenceSum += clampConfidence(item.Confidence)
	}

	if len(accepted) == 0 {
		return nil, ErrNoValidItems
	}

	result := &NutritionResult{
		Items:          accepted,
		Confidence:     confidenceSum / float64(len(accepted)),
		ProcessingTime: e.now().Sub(start),
		Usage:          resp.Usage,
	}

	slog.Debug("nutrition parsed",
		"items", len(result.Items),
		"dropped", len(items)-len(accepted),
		"confidence", result.Confidence,
		"elapsed_ms", result.ProcessingTime.Milliseconds())

	return result, nil
}

// CorrectNutrition recalculates one item from a user correction, for example
// "that was a large portion" or "grilled not fried".
func (e *Executor) CorrectNutrition(ctx context.Context, original NutritionItem, correction string) (*NutritionItem, error) {
	prompt := "Original entry:\n" +
		"- Name: " + original.Name + "\n" +
		formatMacros(original) +
		"\nUser correction: " + correction

	config := taskConfigs[TaskStructuredParsing]
	resp, err := e.llm.Chat(ctx, ai.Request{
		SystemPrompt: correctSystemPrompt,
		Messages:     []ai.Message{ai.UserMessage(prompt)},
		Temperature:  config.Temperature,
		MaxTokens:    config.MaxTokens,
		Caller:       "direct:nutrition_correction",
	})
	if err != nil {
		return nil, errors.Wrap(err, "nutrition correction call failed")
	}

	span, ok := extractBalancedObject(resp.Text)
	if !ok {
		return nil, ErrNoStructuredOutput
	}

	var item NutritionItem
	if err := json.Unmarshal([]byte(span), &item); err != nil {
		return nil, errors.Wrap(ErrNoStructuredOutput, err.Error())
	}
	if item.Name == "" {
		item.Name = original.Name
	}

	if err := e.validateItem(item); err != nil {
		return nil, errors.Wrap(ErrNoValidItems, err.Error())
	}
	item.Confidence = clampConfidence(item.Confidence)

	return &item, nil
}

// validateItem enforces domain sanity bounds on one parsed item.
func (e *Executor) validateItem(item NutritionItem) error {
	ceiling := float64(e.policy.CalorieCeiling)
	if item.Calories <= 0 || item.Calories >= ceiling {
		return errors.Errorf("calories %.0f outside (0, %.0f)", item.Calories, ceiling)
	}
	if item.ProteinG < 0 || item.CarbsG < 0 || item.FatG < 0 {
		return errors.New("negative macro grams")
	}

	macroCalories := item.ProteinG*4 + item.CarbsG*4 + item.FatG*9
	if macroCalories > item.Calories*(1+e.policy.MacroCalorieTolerance) {
		return errors.Errorf("macro calories %.0f exceed declared %.0f beyond tolerance", macroCalories, item.Calories)
	}
	return nil
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

func formatMacros(item NutritionItem) string {
	b, _ := json.Marshal(map[string]float64{
		"calories": item.Calories,
		"protein":  item.ProteinG,
		"carbs":    item.CarbsG,
		"fat":      item.FatG,
	})
	return "- Macros: " + string(b) + "\n"
}
