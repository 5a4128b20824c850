package resume

import (
	"context"
	"fmt"

	"github.com/spigell/interview-coach/internal/catalog"
	"go.uber.org/zap"
)

// Generator produces interview questions for a set of skills.
type Generator interface {
	Generate(ctx context.Context, skills []string) ([]catalog.Question, error)
}

// General questions asked when a resume mentions none of the known skills.
var generalQuestions = []catalog.Question{
	{Text: "Explain your final year project.", Category: catalog.CategoryProject},
	{Text: "What technologies did you use in your internship?", Category: catalog.CategoryExperience},
	{Text: "Explain your strongest skill from your resume.", Category: catalog.CategorySkill},
}

// TemplateGenerator builds two fixed questions per skill.
type TemplateGenerator struct{}

func (TemplateGenerator) Generate(_ context.Context, skills []string) ([]catalog.Question, error) {
	if len(skills) == 0 {
		out := make([]catalog.Question, len(generalQuestions))
		copy(out, generalQuestions)
		return out, nil
	}

	questions := make([]catalog.Question, 0, len(skills)*2)
	for _, skill := range skills {
		questions = append(questions,
			catalog.NewQuestion(fmt.Sprintf("Can you explain your experience working with %s?", skill), catalog.CategorySkill),
			catalog.NewQuestion(fmt.Sprintf("What challenges did you face while using %s?", skill), catalog.CategorySkill),
		)
	}

	return questions, nil
}

// FallbackGenerator asks Primary first and uses the template questions when
// it fails or returns nothing.
type FallbackGenerator struct {
	Primary  Generator
	Fallback Generator
	Logger   *zap.Logger
}

func (f *FallbackGenerator) Generate(ctx context.Context, skills []string) ([]catalog.Question, error) {
	logger := f.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var fallback Generator = TemplateGenerator{}
	if f.Fallback != nil {
		fallback = f.Fallback
	}

	if f.Primary == nil {
		return fallback.Generate(ctx, skills)
	}

	questions, err := f.Primary.Generate(ctx, skills)
	switch {
	case err != nil:
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn("question generator failed, using template questions", zap.Error(err))
	case len(questions) == 0:
		logger.Warn("question generator returned no questions, using template questions")
	default:
		logger.Debug("questions generated", zap.Int("count", len(questions)))
		return questions, nil
	}

	return fallback.Generate(ctx, skills)
}
