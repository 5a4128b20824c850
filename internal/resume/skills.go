// Package resume turns resume text into skill-specific interview questions.
package resume

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

var knownSkills = []string{
	"python", "java", "sql", "machine learning",
	"deep learning", "react", "node", "tensorflow",
	"mysql", "mongodb", "data analysis",
}

// KnownSkills returns the skills ExtractSkills looks for.
func KnownSkills() []string {
	out := make([]string, len(knownSkills))
	copy(out, knownSkills)
	return out
}

// ExtractSkills returns the known skills mentioned in text, sorted and
// without duplicates. Matching is a case-insensitive substring search, so
// "mysql" also yields "sql".
func ExtractSkills(text string) []string {
	lower := strings.ToLower(text)

	found := make([]string, 0)
	for _, skill := range knownSkills {
		if strings.Contains(lower, skill) {
			found = append(found, skill)
		}
	}

	sort.Strings(found)
	return found
}

// ReadFile loads a plain text resume.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read resume %q: %w", path, err)
	}
	return string(data), nil
}
