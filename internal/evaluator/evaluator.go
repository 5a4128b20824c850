// Package evaluator scores free-text answers with category keyword heuristics.
package evaluator

import (
	"strings"

	"github.com/spigell/interview-coach/internal/catalog"
)

const (
	// MaxScore is the upper bound of every score.
	MaxScore = 10

	// favorableAbove is the score a reply must exceed to get positive feedback.
	favorableAbove = 5

	// FeedbackNoAnswer is returned for blank answers.
	FeedbackNoAnswer = "You did not answer the question."
)

// Result is the outcome of evaluating one answer.
type Result struct {
	Score    int
	Feedback string
	Matched  []string
}

type rubric struct {
	keywords  []string
	favorable string
	needsMore string
}

var rubrics = map[catalog.Category]rubric{
	catalog.CategoryDefinition: {
		keywords:  []string{"object-oriented", "class", "method", "data", "learning", "program"},
		favorable: "Good attempt.",
		needsMore: "Needs more detail.",
	},
	catalog.CategoryProgramming: {
		keywords:  []string{"def", "for", "while", "return", "print"},
		favorable: "Code structure looks good.",
		needsMore: "Check your code logic.",
	},
}

// Evaluate scores the answer for the category. Categories without a rubric
// are scored as definition questions. The function is pure.
func Evaluate(answer string, category catalog.Category) Result {
	normalized := strings.ToLower(strings.TrimSpace(answer))
	if normalized == "" {
		return Result{Score: 0, Feedback: FeedbackNoAnswer}
	}

	r, ok := rubrics[category.OrDefault()]
	if !ok {
		r = rubrics[catalog.CategoryDefinition]
	}

	matched := make([]string, 0, len(r.keywords))
	for _, kw := range r.keywords {
		if strings.Contains(normalized, kw) {
			matched = append(matched, kw)
		}
	}

	score := min(MaxScore, len(matched))

	feedback := r.needsMore
	if score > favorableAbove {
		feedback = r.favorable
	}

	return Result{Score: score, Feedback: feedback, Matched: matched}
}

// Keywords returns the keyword set used for the category.
func Keywords(category catalog.Category) []string {
	r, ok := rubrics[category.OrDefault()]
	if !ok {
		r = rubrics[catalog.CategoryDefinition]
	}

	out := make([]string, len(r.keywords))
	copy(out, r.keywords)
	return out
}
