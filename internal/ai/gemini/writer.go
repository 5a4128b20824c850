package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/spigell/interview-coach/internal/catalog"
	"github.com/spigell/interview-coach/internal/utils"
	"go.uber.org/zap"
)

//go:embed prompt.md
var coachPrompt string

const (
	defaultMaxQuestions = 6
	defaultMaxLogLength = 200
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
}

// QuestionWriter asks the model for interview questions about a candidate's
// skills.
type QuestionWriter struct {
	generator    contentGenerator
	role         string
	maxQuestions int
	maxLogLen    int
	logger       *zap.Logger
}

// NewQuestionWriter returns a writer that asks for at most maxQuestions
// questions targeted at role.
func NewQuestionWriter(generator contentGenerator, role string, maxQuestions, maxLogLength int, logger *zap.Logger) *QuestionWriter {
	if maxQuestions <= 0 {
		maxQuestions = defaultMaxQuestions
	}
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &QuestionWriter{
		generator:    generator,
		role:         strings.TrimSpace(role),
		maxQuestions: maxQuestions,
		maxLogLen:    maxLogLength,
		logger:       logger,
	}
}

// Generate implements resume.Generator.
func (w *QuestionWriter) Generate(ctx context.Context, skills []string) ([]catalog.Question, error) {
	if w == nil || w.generator == nil {
		return nil, errors.New("question writer is not initialized")
	}

	prompt := w.buildPrompt(skills)

	w.logger.Debug("gemini question request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, w.maxLogLen)),
	)

	raw, err := w.generator.GenerateContent(ctx, coachPrompt, prompt)
	if err != nil {
		return nil, err
	}

	w.logger.Debug("gemini question response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, w.maxLogLen)),
	)

	questions, err := parseQuestions(raw)
	if err != nil {
		return nil, err
	}

	if len(questions) > w.maxQuestions {
		questions = questions[:w.maxQuestions]
	}

	return questions, nil
}

func (w *QuestionWriter) buildPrompt(skills []string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Write %d interview questions", w.maxQuestions)
	if w.role != "" {
		fmt.Fprintf(&b, " for a %s candidate", w.role)
	}
	b.WriteString(".\n")

	if len(skills) > 0 {
		fmt.Fprintf(&b, "The candidate's resume mentions: %s.\n", strings.Join(skills, ", "))
		b.WriteString("Focus each question on one of these skills.\n")
	} else {
		b.WriteString("The resume lists no specific skills; ask about projects and experience.\n")
	}

	b.WriteString(`Respond with a JSON array only, no prose. Each element: {"question": "...", "type": "definition|programming|project|experience|skill"}.`)

	return b.String()
}

type questionPayload struct {
	Question string `json:"question"`
	Type     string `json:"type"`
}

func parseQuestions(raw string) ([]catalog.Question, error) {
	cleaned := extractJSON(raw)

	var payload []questionPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	questions := make([]catalog.Question, 0, len(payload))
	for _, p := range payload {
		if strings.TrimSpace(p.Question) == "" {
			continue
		}
		questions = append(questions, catalog.NewQuestion(p.Question, catalog.Category(p.Type)))
	}

	return questions, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
