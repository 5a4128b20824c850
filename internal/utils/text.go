package utils

import (
	"regexp"
	"strings"
)

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9\s-]`)
	spaces          = regexp.MustCompile(`\s+`)
)

// CleanText lowercases the text, drops everything except ASCII letters,
// digits, hyphens and whitespace, and collapses whitespace runs.
func CleanText(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	text = nonAlphanumeric.ReplaceAllString(text, "")
	text = spaces.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// CountWords returns the number of whitespace separated words.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// KeywordReport describes which keywords were found in a text.
type KeywordReport struct {
	Found   int
	Total   int
	Missing []string
}

// CheckKeywords reports the keywords present in the cleaned answer.
func CheckKeywords(answer string, keywords []string) KeywordReport {
	cleaned := CleanText(answer)

	missing := make([]string, 0)
	for _, kw := range keywords {
		if !strings.Contains(cleaned, strings.ToLower(kw)) {
			missing = append(missing, kw)
		}
	}

	return KeywordReport{
		Found:   len(keywords) - len(missing),
		Total:   len(keywords),
		Missing: missing,
	}
}
