// Package direct implements the cheap execution path: a single tuned model
// call per task type, with structured-output extraction and domain validation
// for parsing tasks.
package direct

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/stridelabs/coachcore/ai"
)

// TaskType selects the tuning profile for a direct call.
type TaskType string

const (
	// TaskStructuredParsing extracts structured data from a short utterance.
	TaskStructuredParsing TaskType = "structured_parsing"
	// TaskEducational produces long-form explanatory content.
	TaskEducational TaskType = "educational"
	// TaskConversational produces a short low-latency reply.
	TaskConversational TaskType = "conversational"
)

// TaskConfig holds the per-task generation tuning.
type TaskConfig struct {
	Temperature  float32
	MaxTokens    int
	SystemPrompt string
}

var (
	// ErrNoStructuredOutput is returned when the model response contains no
	// extractable JSON object.
	ErrNoStructuredOutput = errors.New("no structured output in model response")
	// ErrNoValidItems is returned when every parsed item failed validation.
	ErrNoValidItems = errors.New("no nutrition items passed validation")
)

// NutritionItem is one validated food entry.
type NutritionItem struct {
	Name       string  `json:"name"`
	Calories   float64 `json:"calories"`
	ProteinG   float64 `json:"protein"`
	CarbsG     float64 `json:"carbs"`
	FatG       float64 `json:"fat"`
	Confidence float64 `json:"confidence"`
}

// NutritionResult is the outcome of one structured parsing call.
type NutritionResult struct {
	Items []NutritionItem
	// Confidence is the mean confidence across accepted items.
	Confidence     float64
	ProcessingTime time.Duration
	Usage          ai.TokenUsage
}

// ExecutorService is the cheap-path execution strategy.
type ExecutorService interface {
	// Execute issues one direct call tuned for the given task type.
	Execute(ctx context.Context, task TaskType, prompt string) (*ai.Response, error)

	// ParseNutrition parses a food description into validated items.
	ParseNutrition(ctx context.Context, text string) (*NutritionResult, error)

	// CorrectNutrition recalculates one item from a user correction.
	CorrectNutrition(ctx context.Context, original NutritionItem, correction string) (*NutritionItem, error)
}
