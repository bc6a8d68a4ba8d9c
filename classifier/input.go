package classifier

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Thresholds for utterance shape. The short/long bounds are rule inputs
// (spec'd behavior), not tunables.
const (
	shortUtteranceLimit   = 100
	explainUtteranceLimit = 150
	longUtteranceLimit    = 200
)

var (
	// quantityUnitPattern matches "200g", "1.5 cups", "30 min" style logging input.
	quantityUnitPattern = regexp.MustCompile(`\d+(\.\d+)?\s*(g|kg|lb|lbs|oz|ml|l|cal|kcal|cups?|tbsp|tsp|scoops?|eggs?|slices?|min|mins|minutes|km|mi|miles|reps?|sets?)\b`)

	loggingVerbs = []string{
		"log", "ate", "eat", "had", "drank", "track", "record", "add", "weigh", "weighed", "did",
	}

	explainPrefixes = []string{
		"explain", "what is", "what are", "what's", "tell me about", "define", "how many calories",
	}

	workflowKeywords = []string{
		"plan", "schedule", "program", "routine", "compare", "adjust", "optimize",
		"restructure", "redesign", "strategy", "progression", "periodization",
		"meal prep", "week", "cut", "bulk", "deload",
	}

	demonstratives = []string{
		"that", "this", "it", "those", "them", "same", "again", "last one", "the other",
	}

	subjectiveMagnitudes = []string{
		"big", "small", "huge", "tiny", "large", "little", "a lot", "lots of",
		"some", "heavy", "light", "massive", "handful",
	}

	timeRelativePhrases = []string{
		"before my", "after my", "before workout", "after workout", "before training",
		"how long before", "how soon", "how long after", "when should",
	}

	questionPrefixes = []string{
		"how", "what", "when", "why", "where", "which", "who",
		"can", "could", "should", "would", "is", "are", "do", "does", "am i",
	}
)

// AnalyzeInput derives InputAnalysis from the current utterance alone.
// An utterance tripping any edge-case detector is never simple parsing,
// whatever its shape: those inputs need tool-assisted disambiguation.
func AnalyzeInput(utterance string) InputAnalysis {
	trimmed := strings.TrimSpace(utterance)
	lower := strings.ToLower(trimmed)
	length := utf8.RuneCountInString(trimmed)

	edgeCase := hasUnresolvedReference(lower) ||
		hasUnquantifiedMagnitude(lower) ||
		isTimeRelativePlanning(lower)

	return InputAnalysis{
		Length:            length,
		WordCount:         len(strings.Fields(trimmed)),
		IsSimpleParsing:   !edgeCase && isSimpleParsing(lower, length),
		IsComplexWorkflow: isComplexWorkflow(lower, edgeCase),
		ContainsNumbers:   strings.ContainsAny(lower, "0123456789"),
		ContainsQuestions: containsQuestion(lower),
		Urgency:           deriveUrgency(lower),
	}
}

// isSimpleParsing reports whether the utterance is a cheap-path candidate:
// a short logging statement, a quantity+unit expression, or a short
// explain-style question.
func isSimpleParsing(lower string, length int) bool {
	if length < shortUtteranceLimit {
		if containsAnyWord(lower, loggingVerbs) {
			return true
		}
		if quantityUnitPattern.MatchString(lower) {
			return true
		}
	}
	if length < explainUtteranceLimit {
		for _, p := range explainPrefixes {
			if strings.HasPrefix(lower, p) {
				return true
			}
		}
	}
	return false
}

// isComplexWorkflow reports whether the utterance needs the tool-use pipeline:
// planning/adjustment language, or one of the edge cases the cheap path is
// known to mishandle.
func isComplexWorkflow(lower string, edgeCase bool) bool {
	if edgeCase {
		return true
	}
	for _, kw := range workflowKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// hasUnresolvedReference detects anaphora like "do that again" where the
// antecedent lives in earlier turns. Short utterances leaning on a
// demonstrative with no concrete quantity cannot be parsed one-shot.
func hasUnresolvedReference(lower string) bool {
	if utf8.RuneCountInString(lower) >= 50 {
		return false
	}
	if strings.ContainsAny(lower, "0123456789") {
		return false
	}
	return containsAnyWord(lower, demonstratives)
}

// hasUnquantifiedMagnitude detects subjective amounts ("a big portion")
// with no number to anchor them.
func hasUnquantifiedMagnitude(lower string) bool {
	if strings.ContainsAny(lower, "0123456789") {
		return false
	}
	for _, m := range subjectiveMagnitudes {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

// isTimeRelativePlanning detects "how long before my workout should I eat?"
// style questions that need schedule-aware disambiguation.
func isTimeRelativePlanning(lower string) bool {
	if !containsQuestion(lower) {
		return false
	}
	for _, p := range timeRelativePhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func containsQuestion(lower string) bool {
	if strings.Contains(lower, "?") {
		return true
	}
	for _, p := range questionPrefixes {
		if strings.HasPrefix(lower, p+" ") {
			return true
		}
	}
	return false
}

func deriveUrgency(lower string) Urgency {
	highMarkers := []string{"now", "asap", "immediately", "urgent", "right away"}
	for _, m := range highMarkers {
		if strings.Contains(lower, m) {
			return UrgencyHigh
		}
	}
	if strings.Contains(lower, "!") {
		return UrgencyHigh
	}
	mediumMarkers := []string{"soon", "today", "tonight", "this morning", "this afternoon"}
	for _, m := range mediumMarkers {
		if strings.Contains(lower, m) {
			return UrgencyMedium
		}
	}
	return UrgencyLow
}

// containsAnyWord checks whole-word containment for each candidate.
func containsAnyWord(lower string, words []string) bool {
	fields := strings.FieldsFunc(lower, func(r rune) bool {
		return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9') && r != '\''
	})
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	for _, w := range words {
		if strings.Contains(w, " ") {
			if strings.Contains(lower, w) {
				return true
			}
			continue
		}
		if _, ok := set[w]; ok {
			return true
		}
	}
	return false
}
