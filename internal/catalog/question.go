package catalog

import "strings"

// Category tags a question and selects the keyword set used to score answers.
type Category string

const (
	CategoryDefinition  Category = "definition"
	CategoryProgramming Category = "programming"
	CategoryProject     Category = "project"
	CategoryExperience  Category = "experience"
	CategorySkill       Category = "skill"
)

// OrDefault returns the category or CategoryDefinition when it is empty.
func (c Category) OrDefault() Category {
	normalized := Category(strings.ToLower(strings.TrimSpace(string(c))))
	if normalized == "" {
		return CategoryDefinition
	}
	return normalized
}

// Question is a single interview question. Values are comparable and are
// used directly as set keys by the selection agent.
type Question struct {
	Text     string   `json:"question"`
	Category Category `json:"type"`
}

// NewQuestion builds a question with a normalized text and category.
func NewQuestion(text string, category Category) Question {
	return Question{
		Text:     strings.TrimSpace(text),
		Category: category.OrDefault(),
	}
}

// Texts returns the question texts in order.
func Texts(questions []Question) []string {
	texts := make([]string, 0, len(questions))
	for _, q := range questions {
		texts = append(texts, q.Text)
	}
	return texts
}
